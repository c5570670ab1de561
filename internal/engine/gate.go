package engine

import "time"

// DormancyState tracks whether the child is still at the device. Input
// of any kind snaps the state back to ACTIVE; the periodic check walks
// it toward DORMANT as idle time grows.
type DormancyState string

const (
	DormancyActive   DormancyState = "ACTIVE"
	DormancyIdleWarn DormancyState = "IDLE_WARN"
	DormancyDormant  DormancyState = "DORMANT"
)

// Gate rejection reasons.
const (
	RejectDormant      = "dormant"
	RejectTooShort     = "too_short"
	RejectUnknownEvent = "unknown_event"
)

type dormancy struct {
	state     DormancyState
	lastInput time.Time
}

func newDormancy(now time.Time) dormancy {
	return dormancy{state: DormancyActive, lastInput: now}
}

func (d *dormancy) Touch(now time.Time) {
	d.state = DormancyActive
	d.lastInput = now
}

// Check advances the state based on idle time. It reports true exactly
// once per dormancy episode, on the transition into DORMANT, so the
// caller can release held resources a single time.
func (d *dormancy) Check(now time.Time, idleWarn, dormant time.Duration) bool {
	idle := now.Sub(d.lastInput)
	switch {
	case idle > dormant:
		crossed := d.state != DormancyDormant
		d.state = DormancyDormant
		return crossed
	case idle >= idleWarn:
		d.state = DormancyIdleWarn
	default:
		d.state = DormancyActive
	}
	return false
}

// Dormant reports whether interactions should be gated out. IDLE_WARN
// already counts: a child drifting away should not score interactions.
func (d *dormancy) Dormant() bool {
	return d.state != DormancyActive
}

type gateEvent struct {
	startedAt time.Time
	endedAt   time.Time
	dormant   bool
}

// evaluateGate decides whether one finished interaction is signal or
// noise. A non-empty reason means rejected.
func evaluateGate(ev gateEvent, minDuration time.Duration) (time.Duration, string) {
	duration := ev.endedAt.Sub(ev.startedAt)
	if duration < 0 {
		duration = 0
	}
	if ev.dormant {
		return duration, RejectDormant
	}
	if duration < minDuration {
		return duration, RejectTooShort
	}
	return duration, ""
}
