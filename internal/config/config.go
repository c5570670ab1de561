package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config holds all attune configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
	Engine   EngineConfig   `toml:"engine"`
	Content  ContentConfig  `toml:"content"`
	Sweep    SweepConfig    `toml:"sweep"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Mode string `toml:"mode"` // "development" or "production"
}

// EngineConfig carries the per-session adaptation tunables.
type EngineConfig struct {
	MinInteractionMS   int     `toml:"min_interaction_ms"`    // accidental tap filter
	IdleWarnSec        int     `toml:"idle_warn_sec"`         // idle time before IDLE_WARN
	DormantSec         int     `toml:"dormant_sec"`           // idle time before DORMANT
	DormancyCheckSec   int     `toml:"dormancy_check_sec"`    // dormancy checker interval
	MetricsTickSec     int     `toml:"metrics_tick_sec"`      // metrics ticker interval
	DecayHalfLifeHours float64 `toml:"decay_half_life_hours"` // interest half-life
	DecayDropThreshold float64 `toml:"decay_drop_threshold"`  // interests at or below are dropped
	InterestBoost      float64 `toml:"interest_boost"`        // weight added per repeat interaction
	NewInterestWeight  float64 `toml:"new_interest_weight"`   // weight of a first interaction
	ChallengeEvery     int     `toml:"challenge_every"`       // every Nth serve is a forced challenge

	// SuppressChallengeWhenCalming skips the forced-challenge slot while the
	// session is in calming mode. Off by default: growth is served even to a
	// frustrated child unless a deployment opts out.
	SuppressChallengeWhenCalming bool `toml:"suppress_challenge_when_calming"`
}

type ContentConfig struct {
	URL     string `toml:"url"`     // content-generation service base URL
	Timeout int    `toml:"timeout"` // seconds
}

type SweepConfig struct {
	Schedule string `toml:"schedule"` // cron expression for the decay sweep
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 38800,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Logging: LoggingConfig{
			Mode: "development",
		},
		Engine: EngineConfig{
			MinInteractionMS:   3000,
			IdleWarnSec:        30,
			DormantSec:         60,
			DormancyCheckSec:   5,
			MetricsTickSec:     10,
			DecayHalfLifeHours: 24,
			DecayDropThreshold: 0.05,
			InterestBoost:      0.1,
			NewInterestWeight:  0.3,
			ChallengeEvery:     4,
		},
		Content: ContentConfig{
			URL:     "",
			Timeout: 30,
		},
		Sweep: SweepConfig{
			Schedule: "0 3 * * *", // daily, 03:00 local
		},
	}
}

// Load reads a TOML config file layered over Default(): keys absent from the
// file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
