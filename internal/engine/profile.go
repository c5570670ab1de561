package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"
)

// Mastery levels and the thresholds that move them.
const (
	minLevel = 1
	maxLevel = 3

	levelUpSuccesses = 5  // successes required before sustained-success promotion
	promoteScore     = 80 // quiz score that raises a level
	demoteScore      = 40 // quiz scores below this lower a level
)

// TopicInterest is one short-term curiosity entry. Weight stays in [0, 1]
// and decays against the wall clock.
type TopicInterest struct {
	Weight          float64 `json:"weight"`
	LastInteraction int64   `json:"last_interaction"` // unix ms
}

// MasteryRecord is one long-term mastery entry. Level stays in [1, 3] and
// only the quiz path can lower it.
type MasteryRecord struct {
	Level         int `json:"level"`
	SuccessCount  int `json:"success_count"`
	LastQuizScore int `json:"last_quiz_score"`
}

// Profile is the per-child behavioral vector: short-term interests,
// long-term mastery records, and the set of topics already served.
type Profile struct {
	Interests map[string]*TopicInterest `json:"interests"`
	Mastery   map[string]*MasteryRecord `json:"mastery"`
	Seen      map[string]bool           `json:"seen,omitempty"`
}

// NewProfile returns an empty behavioral vector.
func NewProfile() *Profile {
	return &Profile{
		Interests: make(map[string]*TopicInterest),
		Mastery:   make(map[string]*MasteryRecord),
		Seen:      make(map[string]bool),
	}
}

// ProfileFromJSON decodes a stored behavioral vector, repairing missing maps.
func ProfileFromJSON(data []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	p.normalize()
	return &p, nil
}

// Snapshot serializes the vector for storage.
func (p *Profile) Snapshot() ([]byte, error) {
	return json.Marshal(p)
}

// normalize replaces nil maps left behind by JSON decoding of partial
// payloads.
func (p *Profile) normalize() {
	if p.Interests == nil {
		p.Interests = make(map[string]*TopicInterest)
	}
	if p.Mastery == nil {
		p.Mastery = make(map[string]*MasteryRecord)
	}
	if p.Seen == nil {
		p.Seen = make(map[string]bool)
	}
}

// Clone returns a deep copy of the vector.
func (p *Profile) Clone() *Profile {
	out := NewProfile()
	for topic, ti := range p.Interests {
		c := *ti
		out.Interests[topic] = &c
	}
	for topic, rec := range p.Mastery {
		c := *rec
		out.Mastery[topic] = &c
	}
	for topic := range p.Seen {
		out.Seen[topic] = true
	}
	return out
}

// BoostInterest strengthens the short-term entry for a topic, creating it at
// the initial weight on first sight. Weight is capped at 1.0.
func (p *Profile) BoostInterest(topic string, boost, initial float64, now time.Time) {
	if ti, ok := p.Interests[topic]; ok {
		ti.Weight = math.Min(1.0, ti.Weight+boost)
		ti.LastInteraction = now.UnixMilli()
		return
	}
	p.Interests[topic] = &TopicInterest{Weight: initial, LastInteraction: now.UnixMilli()}
}

// DecayInterests recomputes every weight against the wall clock using
// weight * 0.5^(elapsed/halfLife) and drops entries at or below floor.
// Weights only ever decrease here. Returns the counts of decayed and
// dropped entries.
func (p *Profile) DecayInterests(halfLife time.Duration, floor float64, now time.Time) (decayed, dropped int) {
	nowMS := now.UnixMilli()
	halfLifeMS := float64(halfLife.Milliseconds())
	for topic, ti := range p.Interests {
		elapsed := float64(nowMS - ti.LastInteraction)
		if elapsed <= 0 || halfLifeMS <= 0 {
			continue
		}
		ti.Weight *= math.Pow(0.5, elapsed/halfLifeMS)
		decayed++
		if ti.Weight <= floor {
			delete(p.Interests, topic)
			dropped++
		}
	}
	return decayed, dropped
}

// RecordSuccess applies one gate-accepted successful interaction to the
// long-term record for a topic. Sustained success past the threshold
// promotes the level.
func (p *Profile) RecordSuccess(topic string) {
	rec, ok := p.Mastery[topic]
	if !ok {
		p.Mastery[topic] = &MasteryRecord{Level: minLevel, SuccessCount: 1}
		return
	}
	rec.SuccessCount++
	if rec.SuccessCount > levelUpSuccesses {
		rec.Level = min(maxLevel, rec.Level+1)
	}
}

// RecordQuiz applies a quiz result to a topic's record. Scores are clamped
// to [0, 100]. High scores promote, low scores demote, everything between
// leaves the level alone.
func (p *Profile) RecordQuiz(topic string, score int) {
	score = min(100, max(0, score))
	rec, ok := p.Mastery[topic]
	if !ok {
		level := minLevel
		if score >= promoteScore {
			level = 2
		}
		p.Mastery[topic] = &MasteryRecord{Level: level, SuccessCount: 1, LastQuizScore: score}
		return
	}
	switch {
	case score >= promoteScore:
		rec.Level = min(maxLevel, rec.Level+1)
	case score < demoteScore:
		rec.Level = max(minLevel, rec.Level-1)
	}
	rec.LastQuizScore = score
	rec.SuccessCount++
}

// MasteryLevel returns the level for a topic, defaulting to 1 for unknown
// topics.
func (p *Profile) MasteryLevel(topic string) int {
	if rec, ok := p.Mastery[topic]; ok {
		return rec.Level
	}
	return minLevel
}

// MarkSeen records that a topic has been served.
func (p *Profile) MarkSeen(topic string) {
	p.Seen[topic] = true
}

// TopInterests returns up to n topics ordered by descending weight.
// Ties break alphabetically so the ordering is stable.
func (p *Profile) TopInterests(n int) []string {
	topics := make([]string, 0, len(p.Interests))
	for topic := range p.Interests {
		topics = append(topics, topic)
	}
	sort.Slice(topics, func(i, j int) bool {
		wi, wj := p.Interests[topics[i]].Weight, p.Interests[topics[j]].Weight
		if wi != wj {
			return wi > wj
		}
		return topics[i] < topics[j]
	})
	if n > 0 && len(topics) > n {
		topics = topics[:n]
	}
	return topics
}
