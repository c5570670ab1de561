package engine

// Difficulty labels for the three mastery levels.
const (
	DifficultyBasic        = "Basic"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
)

const (
	reasonChallenge = "Growth constraint: introducing a structured challenge"
	reasonCalming   = "Calming mode: easing off with familiar content"
	reasonCuriosity = "Curiosity driven: building on current interests"
)

// Recommendation is the engine's answer to "what should this child see
// next". Topic selection happens upstream; the engine decides how hard
// and in what spirit the content is served.
type Recommendation struct {
	Topic           string      `json:"topic"`
	Reason          string      `json:"reason"`
	Difficulty      string      `json:"difficulty"`
	DifficultyLevel int         `json:"difficulty_level"`
	TopicCategory   string      `json:"topic_category"`
	ContentMode     ContentMode `json:"content_mode"`
	IsChallenge     bool        `json:"is_challenge"`
}

func difficultyName(level int) string {
	switch level {
	case 2:
		return DifficultyIntermediate
	case 3:
		return DifficultyAdvanced
	default:
		return DifficultyBasic
	}
}

// decideLocked shapes one recommendation for the given topic. Every 4th
// serve (configurable) is a forced challenge one level above current
// mastery, keeping the child stretched even when they coast. Callers
// hold e.mu.
func (e *Engine) decideLocked(topic string) Recommendation {
	e.served++
	every := e.cfg.ChallengeEvery
	if every <= 0 {
		every = 4
	}
	isChallenge := e.served%every == 0

	e.metrics.tick(e.sessionStart, e.clock())
	mode := ClassifyMode(e.metrics)
	if isChallenge && e.cfg.SuppressChallengeWhenCalming && mode == ModeCalmingEscape {
		isChallenge = false
	}

	level := e.profile.MasteryLevel(topic)
	if isChallenge {
		level = min(maxLevel, level+1)
	}

	category := "Logical"
	if e.metrics.CuriosityType == CuriosityVisual {
		category = "General"
	}

	reason := reasonCuriosity
	switch {
	case isChallenge:
		reason = reasonChallenge
	case mode == ModeCalmingEscape:
		reason = reasonCalming
	}

	return Recommendation{
		Topic:           topic,
		Reason:          reason,
		Difficulty:      difficultyName(level),
		DifficultyLevel: level,
		TopicCategory:   category,
		ContentMode:     mode,
		IsChallenge:     isChallenge,
	}
}
