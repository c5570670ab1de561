// Package engine implements the behavioral adaptation core: a signal
// gate that separates deliberate interactions from noise, a per-child
// behavior profile of decaying interests and mastery levels, rolling
// session metrics, and the recommendation policy built on top of them.
package engine

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ambelin/attune/internal/config"
	"github.com/ambelin/attune/internal/content"
)

// GateResult reports what the signal gate decided about one finished
// interaction. Reason is empty when the interaction was accepted. Kind
// echoes the item kind captured when the interaction started.
type GateResult struct {
	Accepted   bool   `json:"accepted"`
	Reason     string `json:"reason,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Kind       string `json:"kind,omitempty"`
}

// Persister stores behavior profiles between sessions. Save is called
// synchronously with the engine lock held and must not retain p.
type Persister interface {
	Load(childID string) (*Profile, error)
	Save(childID string, p *Profile) error
}

type pendingInteraction struct {
	itemID    string
	kind      string
	startedAt time.Time
}

// Engine drives one child's session. All exported methods are safe for
// concurrent use.
type Engine struct {
	cfg     config.EngineConfig
	log     *zap.Logger
	clock   func() time.Time
	persist Persister
	childID string
	fetch   content.Fetcher

	mu           sync.Mutex
	profile      *Profile
	metrics      Metrics
	sessionStart time.Time
	served       int
	dorm         dormancy
	pending      *pendingInteraction
	buffer       *prefetchBuffer

	stopCh   chan struct{}
	stopOnce sync.Once
}

// Option configures an Engine at construction time.
type Option func(*Engine)

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock substitutes the time source. Tests and offline replay use
// this to run a session at any speed.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

func WithPersister(p Persister, childID string) Option {
	return func(e *Engine) {
		e.persist = p
		e.childID = childID
	}
}

// WithProfile seeds the engine with an already-loaded profile, skipping
// the persister lookup.
func WithProfile(p *Profile) Option {
	return func(e *Engine) { e.profile = p }
}

func WithFetcher(f content.Fetcher) Option {
	return func(e *Engine) { e.fetch = f }
}

// New builds an engine with fresh session state. The persisted profile,
// if any, is loaded and decayed so interests reflect time away.
func New(cfg config.EngineConfig, opts ...Option) *Engine {
	e := &Engine{
		cfg:    withDefaults(cfg),
		log:    zap.NewNop(),
		clock:  time.Now,
		buffer: newPrefetchBuffer(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	now := e.clock()
	if e.profile == nil && e.persist != nil {
		p, err := e.persist.Load(e.childID)
		if err != nil {
			e.log.Warn("behavior profile load failed, starting fresh",
				zap.String("child", e.childID), zap.Error(err))
		} else {
			e.profile = p
		}
	}
	if e.profile == nil {
		e.profile = NewProfile()
	}
	e.profile.normalize()

	decayed, dropped := e.profile.DecayInterests(e.decayHalfLife(), e.cfg.DecayDropThreshold, now)
	if decayed > 0 || dropped > 0 {
		e.log.Debug("interests decayed at load",
			zap.Int("decayed", decayed), zap.Int("dropped", dropped))
	}

	e.metrics = defaultMetrics()
	e.sessionStart = now
	e.dorm = newDormancy(now)
	return e
}

func withDefaults(cfg config.EngineConfig) config.EngineConfig {
	def := config.Default().Engine
	if cfg.MinInteractionMS <= 0 {
		cfg.MinInteractionMS = def.MinInteractionMS
	}
	if cfg.IdleWarnSec <= 0 {
		cfg.IdleWarnSec = def.IdleWarnSec
	}
	if cfg.DormantSec <= 0 {
		cfg.DormantSec = def.DormantSec
	}
	if cfg.DormancyCheckSec <= 0 {
		cfg.DormancyCheckSec = def.DormancyCheckSec
	}
	if cfg.MetricsTickSec <= 0 {
		cfg.MetricsTickSec = def.MetricsTickSec
	}
	if cfg.DecayHalfLifeHours <= 0 {
		cfg.DecayHalfLifeHours = def.DecayHalfLifeHours
	}
	if cfg.DecayDropThreshold <= 0 {
		cfg.DecayDropThreshold = def.DecayDropThreshold
	}
	if cfg.InterestBoost <= 0 {
		cfg.InterestBoost = def.InterestBoost
	}
	if cfg.NewInterestWeight <= 0 {
		cfg.NewInterestWeight = def.NewInterestWeight
	}
	if cfg.ChallengeEvery <= 0 {
		cfg.ChallengeEvery = def.ChallengeEvery
	}
	return cfg
}

func (e *Engine) minDuration() time.Duration {
	return time.Duration(e.cfg.MinInteractionMS) * time.Millisecond
}

func (e *Engine) decayHalfLife() time.Duration {
	return time.Duration(e.cfg.DecayHalfLifeHours * float64(time.Hour))
}

func (e *Engine) idleWarn() time.Duration {
	return time.Duration(e.cfg.IdleWarnSec) * time.Second
}

func (e *Engine) dormantAfter() time.Duration {
	return time.Duration(e.cfg.DormantSec) * time.Second
}

// Start launches the dormancy checker and the metrics refresh tickers.
// Callers must pair it with Stop.
func (e *Engine) Start() {
	go e.runTicker(time.Duration(e.cfg.DormancyCheckSec)*time.Second, e.checkDormancy)
	go e.runTicker(time.Duration(e.cfg.MetricsTickSec)*time.Second, e.tickMetrics)
}

// Stop halts the background tickers. Safe to call more than once.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() { close(e.stopCh) })
}

func (e *Engine) runTicker(every time.Duration, fn func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			fn()
		case <-e.stopCh:
			return
		}
	}
}

// Pulse runs one dormancy check and one metrics refresh immediately.
// Offline replay drives the engine with Pulse instead of the tickers.
func (e *Engine) Pulse() {
	e.checkDormancy()
	e.tickMetrics()
}

func (e *Engine) checkDormancy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dorm.Check(e.clock(), e.idleWarn(), e.dormantAfter()) {
		n := e.buffer.Flush()
		e.log.Debug("went dormant, prefetch buffer flushed",
			zap.String("child", e.childID), zap.Int("items", n))
	}
}

func (e *Engine) tickMetrics() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.tick(e.sessionStart, e.clock())
}

// RecordInput notes a raw input event (tap, scroll, keypress). Inputs
// only reset the idle clock; they carry no behavioral weight.
func (e *Engine) RecordInput() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dorm.Touch(e.clock())
}

// StartInteraction marks the beginning of a content interaction. A
// second start before the matching end replaces the pending one.
func (e *Engine) StartInteraction(itemID, kind string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock()
	e.dorm.Touch(now)
	e.pending = &pendingInteraction{itemID: itemID, kind: kind, startedAt: now}
}

// EndInteraction closes the pending interaction and runs it through the
// signal gate. Accepted interactions update the metrics and, when a
// topic is attached, the behavior profile. Rejected ones change nothing.
func (e *Engine) EndInteraction(success bool, topic, itemID string) GateResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock()

	started := now
	kind := ""
	if e.pending != nil {
		started = e.pending.startedAt
		kind = e.pending.kind
		e.pending = nil
	}

	duration, reject := evaluateGate(gateEvent{
		startedAt: started,
		endedAt:   now,
		dormant:   e.dorm.Dormant(),
	}, e.minDuration())

	res := GateResult{
		Accepted:   reject == "",
		Reason:     reject,
		DurationMS: duration.Milliseconds(),
		Kind:       kind,
	}
	if !res.Accepted {
		e.log.Debug("interaction gated out",
			zap.String("item", itemID),
			zap.String("reason", reject),
			zap.Int64("duration_ms", res.DurationMS))
		return res
	}

	e.metrics.absorb(success, duration)
	if topic != "" {
		e.profile.BoostInterest(topic, e.cfg.InterestBoost, e.cfg.NewInterestWeight, now)
		e.profile.MarkSeen(topic)
		if success {
			e.profile.RecordSuccess(topic)
		}
		e.persistProfile()
	}
	return res
}

// UpdateMastery applies a quiz score to the topic's mastery record and
// persists the result.
func (e *Engine) UpdateMastery(topic string, score int) {
	if topic == "" {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profile.RecordQuiz(topic, score)
	e.persistProfile()
}

// ReportFrustration nudges the frustration level by delta, clamped to
// the 0..10 range.
func (e *Engine) ReportFrustration(delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.bumpFrustration(delta)
}

// ReportCuriosity records the client's learning-style hint. Unknown
// values are ignored.
func (e *Engine) ReportCuriosity(c CuriosityType) {
	if c != CuriosityVisual && c != CuriosityLogical {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.CuriosityType = c
}

// SimulateLowAttention forces the attention span low enough to trigger
// short-burst mode. Used by demos and the replay harness.
func (e *Engine) SimulateLowAttention() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.AttentionSpanMS = 2000
}

// ResetMetrics restores the session aggregates to their defaults and
// restarts the session clock, the serve counter, and the dormancy
// tracker. The behavior profile is left untouched.
func (e *Engine) ResetMetrics() {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.clock()
	e.metrics = defaultMetrics()
	e.sessionStart = now
	e.served = 0
	e.pending = nil
	e.dorm = newDormancy(now)
}

// Recommend shapes a recommendation for the given topic.
func (e *Engine) Recommend(topic string) Recommendation {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.decideLocked(topic)
}

// Metrics returns a freshly ticked copy of the session metrics.
func (e *Engine) Metrics() Metrics {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.tick(e.sessionStart, e.clock())
	return e.metrics
}

// Mode classifies the current metrics into a content mode.
func (e *Engine) Mode() ContentMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.tick(e.sessionStart, e.clock())
	return ClassifyMode(e.metrics)
}

// Profile returns a deep copy of the behavior profile.
func (e *Engine) Profile() *Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile.Clone()
}

// Dormancy returns the current dormancy state.
func (e *Engine) Dormancy() DormancyState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dorm.state
}

// persistProfile writes the profile through to the persister. Failures
// are logged and swallowed so a storage hiccup never loses a session.
func (e *Engine) persistProfile() {
	if e.persist == nil {
		return
	}
	if err := e.persist.Save(e.childID, e.profile); err != nil {
		e.log.Warn("behavior profile save failed",
			zap.String("child", e.childID), zap.Error(err))
	}
}
