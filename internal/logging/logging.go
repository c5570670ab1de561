package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process logger for the given mode. "production" gets JSON
// output at info level; anything else gets the console development encoder.
func New(mode string) (*zap.Logger, error) {
	var cfg zap.Config
	switch mode {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}
