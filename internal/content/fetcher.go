package content

import (
	"context"

	"github.com/ambelin/attune/internal/config"
)

// Item is one pre-hydrated piece of content for a topic.
type Item struct {
	Topic        string `json:"topic"`
	ThumbnailURL string `json:"thumbnail_url"`
	Script       string `json:"script"`
}

// Fetcher is the interface to the external content-generation service.
type Fetcher interface {
	Thumbnail(ctx context.Context, topic string) (string, error)
	Script(ctx context.Context, topic string, difficulty int) (string, error)
}

// NewFetcher creates a fetcher from config, or nil when no service is
// configured. Callers treat a nil fetcher as "pre-hydration disabled".
func NewFetcher(cfg config.ContentConfig) Fetcher {
	if cfg.URL == "" {
		return nil
	}
	return NewHTTPFetcher(cfg.URL, cfg.Timeout)
}
