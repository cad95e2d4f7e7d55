package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	start time.Time
	count int
}

// MemoryOption configures a Memory limiter.
type MemoryOption func(*Memory)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// WithCleanupInterval sets how often expired windows are dropped. Zero disables cleanup.
func WithCleanupInterval(d time.Duration) MemoryOption {
	return func(m *Memory) {
		m.cleanupInterval = d
	}
}

// Memory is an in-process fixed-window limiter.
type Memory struct {
	windows         map[string]*window
	now             func() time.Time
	done            chan struct{}
	limit           int
	period          time.Duration
	cleanupInterval time.Duration
	mu              sync.Mutex
	closeOnce       sync.Once
}

// NewMemory allows limit attempts per id in every period. Non-positive limit or
// period are raised to 1 and one minute.
func NewMemory(limit int, period time.Duration, opts ...MemoryOption) *Memory {
	if limit <= 0 {
		limit = 1
	}
	if period <= 0 {
		period = time.Minute
	}

	m := &Memory{
		windows:         make(map[string]*window),
		now:             time.Now,
		done:            make(chan struct{}),
		limit:           limit,
		period:          period,
		cleanupInterval: period,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.cleanupInterval > 0 {
		go m.janitor()
	}
	return m
}

func (m *Memory) Allow(_ context.Context, id string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.windows[id]
	if !ok || !now.Before(w.start.Add(m.period)) {
		w = &window{start: now}
		m.windows[id] = w
	}

	res := Result{Limit: m.limit, ResetAt: w.start.Add(m.period)}
	if w.count >= m.limit {
		return res, nil
	}

	w.count++
	res.Allowed = true
	res.Remaining = m.limit - w.count
	return res, nil
}

// Reset forgets id's window.
func (m *Memory) Reset(id string) {
	m.mu.Lock()
	delete(m.windows, id)
	m.mu.Unlock()
}

// Len returns the number of tracked identifiers.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// Prune drops windows that have ended.
func (m *Memory) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, w := range m.windows {
		if !now.Before(w.start.Add(m.period)) {
			delete(m.windows, id)
		}
	}
}

// Close stops the cleanup goroutine. Close is idempotent.
func (m *Memory) Close() error {
	m.closeOnce.Do(func() { close(m.done) })
	return nil
}

func (m *Memory) janitor() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.Prune()
		}
	}
}

var _ Limiter = (*Memory)(nil)
