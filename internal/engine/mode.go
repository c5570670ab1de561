package engine

// ContentMode steers how the client should present the next piece of
// content. Frustration takes priority over a shrinking attention span.
type ContentMode string

const (
	ModeNormal        ContentMode = "NORMAL"
	ModeCalmingEscape ContentMode = "CALMING_ESCAPE"
	ModeShortBurst    ContentMode = "SHORT_BURST"
)

// ClassifyMode maps the current metrics onto a content mode.
func ClassifyMode(m Metrics) ContentMode {
	if m.FrustrationLevel >= 6 {
		return ModeCalmingEscape
	}
	if m.AttentionSpanMS > 0 && m.AttentionSpanMS < 3500 {
		return ModeShortBurst
	}
	return ModeNormal
}
