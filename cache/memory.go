// Package cache provides the catalog cache: an in-memory TTL cache with an
// explicit lifecycle, and a Store abstraction over it and Redis.
package cache

import (
	"strings"
	"sync"
	"time"
)

// Clock returns the current time. Tests inject a fake.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a TTL cache guarded by an RWMutex. Expired entries are never
// returned; they are removed lazily on read and eagerly by the sweeper
// started with Start.
type Memory struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	clock      Clock
	sweepEvery time.Duration

	lifecycle sync.Mutex
	stop      chan struct{}
	done      chan struct{}
}

// Option configures a Memory cache.
type Option func(*Memory)

// WithTTL sets the default TTL used by Set when ttl <= 0.
func WithTTL(ttl time.Duration) Option {
	return func(m *Memory) { m.ttl = ttl }
}

// WithClock injects the clock used for expiry.
func WithClock(c Clock) Option {
	return func(m *Memory) { m.clock = c }
}

// WithSweepInterval sets how often the background sweeper runs.
func WithSweepInterval(d time.Duration) Option {
	return func(m *Memory) { m.sweepEvery = d }
}

// NewMemory builds a cache. It does not start the sweeper; call Start.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		items:      make(map[string]entry),
		ttl:        5 * time.Minute,
		clock:      SystemClock,
		sweepEvery: time.Minute,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns a copy-free view of the stored bytes. Callers must not mutate it.
func (m *Memory) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !m.clock.Now().Before(e.expiresAt) {
		m.mu.Lock()
		if cur, still := m.items[key]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(m.items, key)
		}
		m.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key. A ttl <= 0 uses the cache default.
func (m *Memory) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = m.ttl
	}
	m.mu.Lock()
	m.items[key] = entry{value: value, expiresAt: m.clock.Now().Add(ttl)}
	m.mu.Unlock()
}

func (m *Memory) Delete(keys ...string) {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
}

// DeletePrefix removes every key starting with prefix and returns how many went.
func (m *Memory) DeletePrefix(prefix string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
			n++
		}
	}
	return n
}

// Len counts stored entries, including expired ones not yet swept.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Sweep removes expired entries and returns how many were removed.
func (m *Memory) Sweep() int {
	now := m.clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.items {
		if !now.Before(e.expiresAt) {
			delete(m.items, k)
			n++
		}
	}
	return n
}

// Start launches the background sweeper. Calling Start on a running cache is a no-op.
func (m *Memory) Start() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	if m.stop != nil {
		return
	}
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.run(m.stop, m.done)
}

// Stop halts the sweeper and waits for it to exit. Safe to call repeatedly.
func (m *Memory) Stop() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	if m.stop == nil {
		return
	}
	close(m.stop)
	<-m.done
	m.stop, m.done = nil, nil
}

// Running reports whether the sweeper goroutine is active.
func (m *Memory) Running() bool {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()
	return m.stop != nil
}

func (m *Memory) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-stop:
			return
		}
	}
}
