package engine

import (
	"math"
	"time"
)

// EnergyLevel summarizes how the current session is going, derived from
// the live metrics rather than stored directly.
type EnergyLevel string

const (
	EnergyCalm       EnergyLevel = "CALM"
	EnergyEngaged    EnergyLevel = "ENGAGED"
	EnergyFrustrated EnergyLevel = "FRUSTRATED"
	EnergyTired      EnergyLevel = "TIRED"
)

// CuriosityType is a coarse learning-style hint reported by the client.
type CuriosityType string

const (
	CuriosityVisual  CuriosityType = "VISUAL"
	CuriosityLogical CuriosityType = "LOGICAL"
)

// Metrics is the rolling per-session aggregate the classifier and
// recommender read from. AttentionSpanMS is a moving average, not a sum:
// each accepted interaction folds its duration in at half weight.
type Metrics struct {
	AttentionSpanMS   int64         `json:"attention_span_ms"`
	FrustrationLevel  int           `json:"frustration_level"`
	CuriosityType     CuriosityType `json:"curiosity_type"`
	EnergyLevel       EnergyLevel   `json:"energy_level"`
	SessionDurationMS int64         `json:"session_duration_ms"`
	MasteryScore      int           `json:"mastery_score"`
}

func defaultMetrics() Metrics {
	return Metrics{
		AttentionSpanMS:  5000,
		FrustrationLevel: 0,
		CuriosityType:    CuriosityVisual,
		EnergyLevel:      EnergyCalm,
		MasteryScore:     10,
	}
}

// absorb folds one accepted interaction into the aggregate.
func (m *Metrics) absorb(success bool, duration time.Duration) {
	m.AttentionSpanMS = int64(math.Round(float64(m.AttentionSpanMS+duration.Milliseconds()) / 2))
	if success {
		m.FrustrationLevel = max(0, m.FrustrationLevel-1)
		m.MasteryScore++
	} else {
		m.FrustrationLevel = min(10, m.FrustrationLevel+1)
	}
}

func (m *Metrics) bumpFrustration(delta int) {
	m.FrustrationLevel = min(10, max(0, m.FrustrationLevel+delta))
}

// tick refreshes the time-derived fields. Called on the periodic refresh
// and before every read so callers never see a stale energy level.
func (m *Metrics) tick(sessionStart, now time.Time) {
	m.SessionDurationMS = now.Sub(sessionStart).Milliseconds()
	m.EnergyLevel = m.energy()
}

func (m *Metrics) energy() EnergyLevel {
	switch {
	case m.FrustrationLevel >= 6:
		return EnergyFrustrated
	case m.AttentionSpanMS > 0 && m.AttentionSpanMS < 2000:
		return EnergyTired
	case m.AttentionSpanMS > 6000:
		return EnergyEngaged
	default:
		return EnergyCalm
	}
}
