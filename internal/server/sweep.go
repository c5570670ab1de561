package server

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ambelin/attune/internal/config"
	"github.com/ambelin/attune/internal/store"
)

// Sweeper applies interest decay across every stored behavior profile on
// a schedule, so children who stay away come back to a faded slate even
// if they never open another session.
type Sweeper struct {
	db   *store.DB
	cfg  config.Config
	log  *zap.Logger
	cron *cron.Cron
}

func NewSweeper(db *store.DB, cfg config.Config, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{db: db, cfg: cfg, log: log, cron: cron.New()}
}

// Start runs one sweep immediately and schedules the recurring one.
func (s *Sweeper) Start() error {
	s.RunOnce()
	if _, err := s.cron.AddFunc(s.cfg.Sweep.Schedule, s.RunOnce); err != nil {
		return fmt.Errorf("schedule decay sweep %q: %w", s.cfg.Sweep.Schedule, err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule. A sweep already in flight finishes.
func (s *Sweeper) Stop() {
	s.cron.Stop()
}

// RunOnce decays every stored profile once.
func (s *Sweeper) RunOnce() {
	halfLife := time.Duration(s.cfg.Engine.DecayHalfLifeHours * float64(time.Hour))
	updated, err := s.db.DecayVectors(halfLife, s.cfg.Engine.DecayDropThreshold, time.Now())
	if err != nil {
		s.log.Warn("decay sweep failed", zap.Error(err))
		return
	}
	if updated > 0 {
		s.log.Info("decay sweep", zap.Int("profiles_updated", updated))
	}
}
