package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ambelin/attune/internal/content"
)

// prefetchBuffer holds content fetched ahead of time for the session's
// likely next topics. Going dormant flushes it so a child who wandered
// off does not pin stale content in memory.
type prefetchBuffer struct {
	mu    sync.Mutex
	ran   bool
	items map[string]content.Item
}

func newPrefetchBuffer() *prefetchBuffer {
	return &prefetchBuffer{items: make(map[string]content.Item)}
}

// tryStart claims the buffer for a fetch run. It returns false while a
// previous run's results are still live.
func (b *prefetchBuffer) tryStart() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.ran {
		return false
	}
	b.ran = true
	return true
}

// put stores a fetched item unless the buffer was flushed mid-run.
func (b *prefetchBuffer) put(item content.Item) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.ran {
		return
	}
	b.items[item.Topic] = item
}

func (b *prefetchBuffer) Get(topic string) (content.Item, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	item, ok := b.items[topic]
	return item, ok
}

func (b *prefetchBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Flush discards everything and reopens the buffer for a future run.
// Returns how many items were dropped.
func (b *prefetchBuffer) Flush() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.items)
	b.items = make(map[string]content.Item)
	b.ran = false
	return n
}

// Prefetch fetches thumbnails and scripts for the given topics in the
// background. Difficulty follows current mastery, except in calming
// mode where everything is served at the basic level. No-op without a
// configured fetcher.
func (e *Engine) Prefetch(ctx context.Context, topics []string) {
	if e.fetch == nil || len(topics) == 0 {
		return
	}
	if !e.buffer.tryStart() {
		return
	}
	go e.runPrefetch(ctx, e.prefetchLevels(topics))
}

// prefetchLevels picks the difficulty to fetch per topic.
func (e *Engine) prefetchLevels(topics []string) map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.metrics.tick(e.sessionStart, e.clock())
	calming := ClassifyMode(e.metrics) == ModeCalmingEscape

	levels := make(map[string]int, len(topics))
	for _, topic := range topics {
		if topic == "" {
			continue
		}
		if calming {
			levels[topic] = minLevel
		} else {
			levels[topic] = e.profile.MasteryLevel(topic)
		}
	}
	return levels
}

// runPrefetch does the actual fetching, a few topics at a time. Fetch
// failures skip the topic; prefetch is best effort.
func (e *Engine) runPrefetch(ctx context.Context, levels map[string]int) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(3)
	for topic, level := range levels {
		topic, level := topic, level
		g.Go(func() error {
			thumb, err := e.fetch.Thumbnail(ctx, topic)
			if err != nil {
				e.log.Debug("prefetch thumbnail failed",
					zap.String("topic", topic), zap.Error(err))
				return nil
			}
			script, err := e.fetch.Script(ctx, topic, level)
			if err != nil {
				e.log.Debug("prefetch script failed",
					zap.String("topic", topic), zap.Error(err))
				return nil
			}
			e.buffer.put(content.Item{Topic: topic, ThumbnailURL: thumb, Script: script})
			return nil
		})
	}
	g.Wait()
	e.log.Debug("prefetch complete", zap.Int("items", e.buffer.Len()))
}

// Prefetched returns the buffered item for a topic, if one was fetched.
func (e *Engine) Prefetched(topic string) (content.Item, bool) {
	return e.buffer.Get(topic)
}

// PrefetchedCount returns how many items the buffer currently holds.
func (e *Engine) PrefetchedCount() int {
	return e.buffer.Len()
}
