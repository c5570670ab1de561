package engine

// Event kinds accepted by Apply.
const (
	EventInput            = "input"
	EventInteractionStart = "interaction_start"
	EventInteractionEnd   = "interaction_end"
	EventQuizResult       = "quiz_result"
	EventFrustration      = "frustration"
	EventCuriosity        = "curiosity"
	EventLowAttention     = "low_attention"
	EventResetMetrics     = "reset_metrics"
)

// Event is one telemetry event from the client. Fields beyond Kind are
// read only by the kinds that use them.
type Event struct {
	Kind      string `json:"kind"`
	ItemID    string `json:"item_id,omitempty"`
	ItemKind  string `json:"item_kind,omitempty"`
	Topic     string `json:"topic,omitempty"`
	Success   bool   `json:"success,omitempty"`
	Score     int    `json:"score,omitempty"`
	Delta     int    `json:"delta,omitempty"`
	Curiosity string `json:"curiosity,omitempty"`
}

// Apply dispatches one event to the matching engine operation. Only
// interaction ends pass through the signal gate; every other known kind
// is accepted unconditionally.
func (e *Engine) Apply(ev Event) GateResult {
	switch ev.Kind {
	case EventInput:
		e.RecordInput()
	case EventInteractionStart:
		e.StartInteraction(ev.ItemID, ev.ItemKind)
	case EventInteractionEnd:
		return e.EndInteraction(ev.Success, ev.Topic, ev.ItemID)
	case EventQuizResult:
		e.UpdateMastery(ev.Topic, ev.Score)
	case EventFrustration:
		e.ReportFrustration(ev.Delta)
	case EventCuriosity:
		e.ReportCuriosity(CuriosityType(ev.Curiosity))
	case EventLowAttention:
		e.SimulateLowAttention()
	case EventResetMetrics:
		e.ResetMetrics()
	default:
		return GateResult{Reason: RejectUnknownEvent}
	}
	return GateResult{Accepted: true}
}
