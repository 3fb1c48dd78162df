package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Manager hands out one token bucket per client key. Buckets that have
// not been touched for idleTTL are dropped on the next sweep so the map
// does not grow without bound under churning client IPs.
type Manager struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	rps     float64
	burst   int
	idleTTL time.Duration

	lastSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const defaultIdleTTL = 10 * time.Minute

// NewManager creates a per-client rate limiter registry
func NewManager(rps float64, burst int) *Manager {
	return &Manager{
		buckets:   make(map[string]*bucket),
		rps:       rps,
		burst:     burst,
		idleTTL:   defaultIdleTTL,
		lastSweep: time.Now(),
	}
}

// Allow reports whether the client identified by key may proceed
func (m *Manager) Allow(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.sweepLocked(now)

	b, ok := m.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rate.Limit(m.rps), m.burst)}
		m.buckets[key] = b
	}
	b.lastSeen = now

	return b.limiter.Allow()
}

// Len returns the number of tracked clients
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buckets)
}

// sweepLocked evicts idle buckets at most once per idleTTL
func (m *Manager) sweepLocked(now time.Time) {
	if now.Sub(m.lastSweep) < m.idleTTL {
		return
	}
	m.lastSweep = now
	for key, b := range m.buckets {
		if now.Sub(b.lastSeen) > m.idleTTL {
			delete(m.buckets, key)
		}
	}
}
