package engine

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/ambelin/attune/internal/config"
	"github.com/ambelin/attune/internal/content"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakePersister struct {
	stored  *Profile
	saves   int
	loadErr error
	saveErr error
}

func (p *fakePersister) Load(childID string) (*Profile, error) {
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	if p.stored == nil {
		return nil, nil
	}
	return p.stored.Clone(), nil
}

func (p *fakePersister) Save(childID string, prof *Profile) error {
	p.saves++
	if p.saveErr != nil {
		return p.saveErr
	}
	p.stored = prof.Clone()
	return nil
}

func TestSessionFlow(t *testing.T) {
	clock := newFakeClock()
	e := New(config.EngineConfig{}, WithClock(clock.Now))

	e.StartInteraction("item-1", "video")
	clock.Advance(4000 * time.Millisecond)
	res := e.EndInteraction(true, "Space", "item-1")

	if !res.Accepted {
		t.Fatalf("interaction rejected: %s", res.Reason)
	}
	if res.DurationMS != 4000 {
		t.Errorf("duration = %d, want 4000", res.DurationMS)
	}
	if res.Kind != "video" {
		t.Errorf("kind = %q, want video", res.Kind)
	}

	m := e.Metrics()
	if m.AttentionSpanMS != 4500 {
		t.Errorf("attention = %d, want 4500", m.AttentionSpanMS)
	}
	if m.FrustrationLevel != 0 {
		t.Errorf("frustration = %d, want 0", m.FrustrationLevel)
	}
	if m.MasteryScore != 11 {
		t.Errorf("mastery score = %d, want 11", m.MasteryScore)
	}

	p := e.Profile()
	if w := p.Interests["Space"].Weight; w != 0.3 {
		t.Errorf("interest weight = %v, want 0.3", w)
	}
	if rec := p.Mastery["Space"]; rec.Level != 1 || rec.SuccessCount != 1 {
		t.Errorf("mastery = %+v, want level 1, one success", rec)
	}

	r := e.Recommend("Space")
	if r.IsChallenge {
		t.Error("first recommendation should not be a challenge")
	}
	if r.Difficulty != DifficultyBasic {
		t.Errorf("difficulty = %s, want Basic", r.Difficulty)
	}
}

func TestShortInteractionChangesNothing(t *testing.T) {
	clock := newFakeClock()
	e := New(config.EngineConfig{}, WithClock(clock.Now))

	e.StartInteraction("item-1", "video")
	clock.Advance(2999 * time.Millisecond)
	res := e.EndInteraction(true, "Space", "item-1")

	if res.Accepted {
		t.Fatal("2999ms interaction should be rejected")
	}
	if res.Reason != RejectTooShort {
		t.Errorf("reason = %q, want %q", res.Reason, RejectTooShort)
	}

	m := e.Metrics()
	if m.AttentionSpanMS != 5000 || m.MasteryScore != 10 || m.FrustrationLevel != 0 {
		t.Errorf("metrics changed on rejection: %+v", m)
	}
	if p := e.Profile(); len(p.Interests) != 0 || len(p.Mastery) != 0 {
		t.Error("profile changed on rejection")
	}
}

func TestExactMinimumAccepted(t *testing.T) {
	clock := newFakeClock()
	e := New(config.EngineConfig{}, WithClock(clock.Now))

	e.StartInteraction("item-1", "video")
	clock.Advance(3000 * time.Millisecond)
	if res := e.EndInteraction(true, "Space", "item-1"); !res.Accepted {
		t.Errorf("exactly 3000ms should be accepted, got %q", res.Reason)
	}
}

func TestDormantInteractionRejected(t *testing.T) {
	clock := newFakeClock()
	e := New(config.EngineConfig{}, WithClock(clock.Now))

	e.StartInteraction("item-1", "video")
	clock.Advance(61 * time.Second)
	e.Pulse()
	if e.Dormancy() != DormancyDormant {
		t.Fatalf("state = %s, want DORMANT", e.Dormancy())
	}

	res := e.EndInteraction(true, "Space", "item-1")
	if res.Accepted {
		t.Fatal("interaction ending while dormant should be rejected")
	}
	if res.Reason != RejectDormant {
		t.Errorf("reason = %q, want %q", res.Reason, RejectDormant)
	}
	if p := e.Profile(); len(p.Interests) != 0 {
		t.Error("profile changed on dormant rejection")
	}
}

func TestIdleWarnGatesInteractions(t *testing.T) {
	clock := newFakeClock()
	e := New(config.EngineConfig{}, WithClock(clock.Now))

	e.StartInteraction("item-1", "video")
	clock.Advance(45 * time.Second)
	e.Pulse()
	if e.Dormancy() != DormancyIdleWarn {
		t.Fatalf("state = %s, want IDLE_WARN", e.Dormancy())
	}

	if res := e.EndInteraction(true, "Space", "item-1"); res.Accepted || res.Reason != RejectDormant {
		t.Errorf("result = %+v, want rejection as dormant", res)
	}
}

func TestEndWithoutStart(t *testing.T) {
	e := New(config.EngineConfig{}, WithClock(newFakeClock().Now))

	res := e.EndInteraction(true, "Space", "item-1")
	if res.Accepted {
		t.Error("end without a start should be rejected")
	}
	if res.DurationMS != 0 {
		t.Errorf("duration = %d, want 0", res.DurationMS)
	}
}

func TestRecordInputReactivates(t *testing.T) {
	clock := newFakeClock()
	e := New(config.EngineConfig{}, WithClock(clock.Now))

	clock.Advance(61 * time.Second)
	e.Pulse()
	if e.Dormancy() != DormancyDormant {
		t.Fatalf("state = %s, want DORMANT", e.Dormancy())
	}

	e.RecordInput()
	if e.Dormancy() != DormancyActive {
		t.Errorf("state after input = %s, want ACTIVE", e.Dormancy())
	}

	e.StartInteraction("item-1", "video")
	clock.Advance(4 * time.Second)
	if res := e.EndInteraction(true, "Space", "item-1"); !res.Accepted {
		t.Errorf("interaction after re-activation rejected: %s", res.Reason)
	}
}

func TestDormancyFlushesPrefetchOnce(t *testing.T) {
	clock := newFakeClock()
	e := New(config.EngineConfig{}, WithClock(clock.Now))

	e.buffer.tryStart()
	e.buffer.put(content.Item{Topic: "Space", Script: "s"})
	if e.PrefetchedCount() != 1 {
		t.Fatal("seed item missing")
	}

	clock.Advance(61 * time.Second)
	e.Pulse()
	if e.PrefetchedCount() != 0 {
		t.Error("crossing into dormant should flush the prefetch buffer")
	}

	// Refill; staying dormant must not flush again.
	e.buffer.tryStart()
	e.buffer.put(content.Item{Topic: "Space", Script: "s"})
	clock.Advance(5 * time.Second)
	e.Pulse()
	if e.PrefetchedCount() != 1 {
		t.Error("a repeated check while dormant flushed the buffer again")
	}
}

func TestWriteThroughPersistence(t *testing.T) {
	clock := newFakeClock()
	p := &fakePersister{}
	e := New(config.EngineConfig{}, WithClock(clock.Now), WithPersister(p, "child-1"))

	e.StartInteraction("item-1", "video")
	clock.Advance(4 * time.Second)
	e.EndInteraction(true, "Space", "item-1")

	if p.saves != 1 {
		t.Errorf("saves = %d, want 1 after an accepted interaction", p.saves)
	}
	if p.stored == nil || p.stored.Interests["Space"] == nil {
		t.Fatal("persisted profile missing the boosted interest")
	}

	e.UpdateMastery("Math", 85)
	if p.saves != 2 {
		t.Errorf("saves = %d, want 2 after a quiz", p.saves)
	}
	if p.stored.Mastery["Math"].Level != 2 {
		t.Errorf("persisted quiz level = %d, want 2", p.stored.Mastery["Math"].Level)
	}
}

func TestRejectionDoesNotPersist(t *testing.T) {
	clock := newFakeClock()
	p := &fakePersister{}
	e := New(config.EngineConfig{}, WithClock(clock.Now), WithPersister(p, "child-1"))

	e.StartInteraction("item-1", "video")
	clock.Advance(time.Second)
	e.EndInteraction(true, "Space", "item-1")

	if p.saves != 0 {
		t.Errorf("saves = %d, want 0 for a rejected interaction", p.saves)
	}
}

func TestSaveErrorSwallowed(t *testing.T) {
	clock := newFakeClock()
	p := &fakePersister{saveErr: errors.New("disk full")}
	e := New(config.EngineConfig{}, WithClock(clock.Now), WithPersister(p, "child-1"))

	e.StartInteraction("item-1", "video")
	clock.Advance(4 * time.Second)
	res := e.EndInteraction(true, "Space", "item-1")

	if !res.Accepted {
		t.Error("a failing save must not reject the interaction")
	}
	if w := e.Profile().Interests["Space"].Weight; w != 0.3 {
		t.Errorf("in-memory profile = %v, want 0.3 despite save failure", w)
	}
}

func TestLoadErrorStartsFresh(t *testing.T) {
	p := &fakePersister{loadErr: errors.New("corrupt row")}
	e := New(config.EngineConfig{}, WithPersister(p, "child-1"))

	if prof := e.Profile(); len(prof.Interests) != 0 || len(prof.Mastery) != 0 {
		t.Error("engine should start with a fresh profile when loading fails")
	}
}

func TestLoadAppliesDecay(t *testing.T) {
	clock := newFakeClock()
	stored := NewProfile()
	stored.Interests["Space"] = &TopicInterest{
		Weight:          1.0,
		LastInteraction: clock.Now().Add(-24 * time.Hour).UnixMilli(),
	}
	p := &fakePersister{stored: stored}

	e := New(config.EngineConfig{}, WithClock(clock.Now), WithPersister(p, "child-1"))

	w := e.Profile().Interests["Space"].Weight
	if math.Abs(w-0.5) > 0.001 {
		t.Errorf("weight after a day away = %v, want ~0.5", w)
	}
}

func TestResetMetrics(t *testing.T) {
	clock := newFakeClock()
	e := New(config.EngineConfig{}, WithClock(clock.Now))

	e.ReportFrustration(4)
	for i := 0; i < 3; i++ {
		e.Recommend("Space")
	}
	e.StartInteraction("item-1", "video")
	clock.Advance(61 * time.Second)
	e.Pulse()

	e.ResetMetrics()

	m := e.Metrics()
	if m.FrustrationLevel != 0 || m.AttentionSpanMS != 5000 || m.MasteryScore != 10 {
		t.Errorf("metrics after reset = %+v, want defaults", m)
	}
	if m.SessionDurationMS != 0 {
		t.Errorf("session duration = %d, want 0 right after reset", m.SessionDurationMS)
	}
	if e.Dormancy() != DormancyActive {
		t.Errorf("dormancy = %s, want ACTIVE after reset", e.Dormancy())
	}

	// The challenge cadence restarts from zero.
	for i := 1; i <= 4; i++ {
		rec := e.Recommend("Space")
		if want := i == 4; rec.IsChallenge != want {
			t.Errorf("serve %d after reset: isChallenge = %v, want %v", i, rec.IsChallenge, want)
		}
	}

	// The pending interaction was discarded.
	clock.Advance(4 * time.Second)
	if res := e.EndInteraction(true, "Space", "item-1"); res.Accepted {
		t.Error("interaction pending across a reset should not complete")
	}
}

func TestResetMetricsKeepsProfile(t *testing.T) {
	clock := newFakeClock()
	e := New(config.EngineConfig{}, WithClock(clock.Now))

	e.StartInteraction("item-1", "video")
	clock.Advance(4 * time.Second)
	e.EndInteraction(true, "Space", "item-1")

	e.ResetMetrics()
	if w := e.Profile().Interests["Space"].Weight; w != 0.3 {
		t.Errorf("interest weight = %v, reset must not touch the profile", w)
	}
}

func TestStopIdempotent(t *testing.T) {
	e := New(config.EngineConfig{})
	e.Start()
	e.Stop()
	e.Stop()
}

func TestQuizFlow(t *testing.T) {
	e := New(config.EngineConfig{})

	e.UpdateMastery("Math", 85)
	if lvl := e.Profile().Mastery["Math"].Level; lvl != 2 {
		t.Errorf("level after fresh high score = %d, want 2", lvl)
	}

	e.UpdateMastery("Math", 30)
	rec := e.Profile().Mastery["Math"]
	if rec.Level != 1 {
		t.Errorf("level after low score = %d, want 1", rec.Level)
	}
	if rec.LastQuizScore != 30 {
		t.Errorf("lastQuizScore = %d, want 30", rec.LastQuizScore)
	}

	e.UpdateMastery("", 90)
	if len(e.Profile().Mastery) != 1 {
		t.Error("empty topic should be a no-op")
	}
}
