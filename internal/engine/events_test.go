package engine

import (
	"testing"
	"time"

	"github.com/ambelin/attune/internal/config"
)

func TestApplyDispatch(t *testing.T) {
	clock := newFakeClock()
	e := New(config.EngineConfig{}, WithClock(clock.Now))

	if res := e.Apply(Event{Kind: EventInput}); !res.Accepted {
		t.Error("input event should be accepted")
	}

	e.Apply(Event{Kind: EventInteractionStart, ItemID: "item-1", ItemKind: "video"})
	clock.Advance(4 * time.Second)
	res := e.Apply(Event{Kind: EventInteractionEnd, ItemID: "item-1", Topic: "Space", Success: true})
	if !res.Accepted || res.DurationMS != 4000 {
		t.Errorf("end result = %+v, want accepted with 4000ms", res)
	}

	e.Apply(Event{Kind: EventQuizResult, Topic: "Math", Score: 90})
	if lvl := e.Profile().Mastery["Math"].Level; lvl != 2 {
		t.Errorf("level after quiz = %d, want 2", lvl)
	}

	e.Apply(Event{Kind: EventFrustration, Delta: 3})
	if f := e.Metrics().FrustrationLevel; f != 3 {
		t.Errorf("frustration = %d, want 3", f)
	}

	e.Apply(Event{Kind: EventCuriosity, Curiosity: "LOGICAL"})
	if c := e.Metrics().CuriosityType; c != CuriosityLogical {
		t.Errorf("curiosity = %s, want LOGICAL", c)
	}

	e.Apply(Event{Kind: EventLowAttention})
	if a := e.Metrics().AttentionSpanMS; a != 2000 {
		t.Errorf("attention = %d, want 2000", a)
	}

	e.Apply(Event{Kind: EventResetMetrics})
	if m := e.Metrics(); m.FrustrationLevel != 0 || m.AttentionSpanMS != 5000 {
		t.Errorf("metrics after reset = %+v, want defaults", m)
	}
}

func TestApplyUnknownKind(t *testing.T) {
	e := New(config.EngineConfig{})

	res := e.Apply(Event{Kind: "bogus"})
	if res.Accepted {
		t.Error("unknown event kind should be rejected")
	}
	if res.Reason != RejectUnknownEvent {
		t.Errorf("reason = %q, want %q", res.Reason, RejectUnknownEvent)
	}
}

func TestApplyInvalidCuriosityIgnored(t *testing.T) {
	e := New(config.EngineConfig{})

	e.Apply(Event{Kind: EventCuriosity, Curiosity: "PSYCHIC"})
	if c := e.Metrics().CuriosityType; c != CuriosityVisual {
		t.Errorf("curiosity = %s, want unchanged VISUAL", c)
	}
}
