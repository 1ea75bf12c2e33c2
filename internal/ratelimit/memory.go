package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/dtroode/golekaab-server/internal/model"
)

var _ model.RateLimiter = (*Memory)(nil)

// Memory is a sliding-window limiter kept in process memory.
type Memory struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	max      int
	window   time.Duration
	now      func() time.Time
}

// NewMemory allows max attempts per key within any window.
func NewMemory(max int, window time.Duration) *Memory {
	return &Memory{
		attempts: make(map[string][]time.Time),
		max:      max,
		window:   window,
		now:      time.Now,
	}
}

// WithClock replaces the time source.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

// Allow records an attempt for key and reports whether it is within the limit.
// Rejected attempts are not recorded.
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	if m.max <= 0 {
		return true, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	recent := m.recent(key, now)

	if len(recent) >= m.max {
		m.attempts[key] = recent
		return false, nil
	}

	m.attempts[key] = append(recent, now)
	return true, nil
}

// Cleanup drops keys with no attempts inside the window.
func (m *Memory) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key := range m.attempts {
		if recent := m.recent(key, now); len(recent) == 0 {
			delete(m.attempts, key)
		} else {
			m.attempts[key] = recent
		}
	}
}

// Run calls Cleanup every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Cleanup()
		}
	}
}

func (m *Memory) recent(key string, now time.Time) []time.Time {
	attempts := m.attempts[key]
	recent := attempts[:0]
	for _, t := range attempts {
		if now.Sub(t) < m.window {
			recent = append(recent, t)
		}
	}
	return recent
}
