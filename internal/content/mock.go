package content

import (
	"context"
	"fmt"
	"sync"
)

// MockFetcher is a test double for the Fetcher interface.
type MockFetcher struct {
	Err error // returned by every call when set

	mu    sync.Mutex
	Calls []string // records "thumbnail:topic" / "script:topic:difficulty"
}

// Thumbnail records the call and returns a canned URL.
func (m *MockFetcher) Thumbnail(ctx context.Context, topic string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, "thumbnail:"+topic)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return "mock://thumb/" + topic, nil
}

// Script records the call and returns a canned script.
func (m *MockFetcher) Script(ctx context.Context, topic string, difficulty int) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, fmt.Sprintf("script:%s:%d", topic, difficulty))
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return fmt.Sprintf("A level %d story about %s.", difficulty, topic), nil
}

// CallCount returns how many fetches have been recorded.
func (m *MockFetcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
