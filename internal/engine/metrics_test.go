package engine

import (
	"testing"
	"time"
)

func TestAbsorbSuccess(t *testing.T) {
	m := defaultMetrics()
	m.absorb(true, 4000*time.Millisecond)

	if m.AttentionSpanMS != 4500 {
		t.Errorf("attention = %d, want 4500", m.AttentionSpanMS)
	}
	if m.FrustrationLevel != 0 {
		t.Errorf("frustration = %d, want 0", m.FrustrationLevel)
	}
	if m.MasteryScore != 11 {
		t.Errorf("mastery score = %d, want 11", m.MasteryScore)
	}
}

func TestAbsorbFailure(t *testing.T) {
	m := defaultMetrics()
	m.absorb(false, 4000*time.Millisecond)

	if m.FrustrationLevel != 1 {
		t.Errorf("frustration = %d, want 1", m.FrustrationLevel)
	}
	if m.MasteryScore != 10 {
		t.Errorf("mastery score = %d, want unchanged 10", m.MasteryScore)
	}
}

func TestAbsorbRounds(t *testing.T) {
	m := defaultMetrics()
	m.absorb(true, 4001*time.Millisecond)
	// (5000+4001)/2 = 4500.5 rounds up.
	if m.AttentionSpanMS != 4501 {
		t.Errorf("attention = %d, want 4501", m.AttentionSpanMS)
	}
}

func TestFrustrationClamps(t *testing.T) {
	m := defaultMetrics()
	m.FrustrationLevel = 10
	m.absorb(false, 4000*time.Millisecond)
	if m.FrustrationLevel != 10 {
		t.Errorf("frustration = %d, want capped 10", m.FrustrationLevel)
	}

	m.FrustrationLevel = 0
	m.absorb(true, 4000*time.Millisecond)
	if m.FrustrationLevel != 0 {
		t.Errorf("frustration = %d, want floored 0", m.FrustrationLevel)
	}

	m.bumpFrustration(25)
	if m.FrustrationLevel != 10 {
		t.Errorf("bump up = %d, want 10", m.FrustrationLevel)
	}
	m.bumpFrustration(-25)
	if m.FrustrationLevel != 0 {
		t.Errorf("bump down = %d, want 0", m.FrustrationLevel)
	}
}

func TestEnergy(t *testing.T) {
	tests := []struct {
		name        string
		attention   int64
		frustration int
		want        EnergyLevel
	}{
		{"defaults calm", 5000, 0, EnergyCalm},
		{"frustrated", 5000, 6, EnergyFrustrated},
		{"frustration beats engagement", 9000, 8, EnergyFrustrated},
		{"tired", 1999, 0, EnergyTired},
		{"zero attention is not tired", 0, 0, EnergyCalm},
		{"lower boundary calm", 2000, 0, EnergyCalm},
		{"upper boundary calm", 6000, 0, EnergyCalm},
		{"engaged", 6001, 0, EnergyEngaged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Metrics{AttentionSpanMS: tt.attention, FrustrationLevel: tt.frustration}
			if got := m.energy(); got != tt.want {
				t.Errorf("energy() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTick(t *testing.T) {
	start := time.Unix(1700000000, 0)
	m := defaultMetrics()
	m.tick(start, start.Add(90*time.Second))

	if m.SessionDurationMS != 90000 {
		t.Errorf("session duration = %d, want 90000", m.SessionDurationMS)
	}
	if m.EnergyLevel != EnergyCalm {
		t.Errorf("energy = %s, want CALM", m.EnergyLevel)
	}
}
