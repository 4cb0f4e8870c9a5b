package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"postpulse/pkg/contracts/domain"
)

// Default lifecycle settings. Sessions are browser-scoped working state, not
// durable storage, so idle ones age out aggressively.
const (
	DefaultTTL           = 2 * time.Hour
	DefaultLimit         = 64
	DefaultSweepInterval = time.Minute
)

// Options configures a Store.
type Options struct {
	// TTL is how long a session survives without being read or replaced.
	TTL time.Duration
	// Limit caps concurrent sessions; exceeding it evicts the stalest.
	Limit int
	// SweepInterval is how often Run scans for expired sessions.
	SweepInterval time.Duration
	// OnEvict, when set, is called outside the store lock for every session
	// removed by TTL or capacity eviction (not by explicit Delete).
	OnEvict func(sessionID string, dataset *domain.Dataset)
}

type entry struct {
	dataset  *domain.Dataset
	lastSeen time.Time
}

// Store owns dataset lifetime, keyed by session ID. Every upload replaces the
// session's dataset atomically: readers that already hold the previous
// snapshot keep a consistent view while new readers get the fresh one.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry

	opts   Options
	logger *slog.Logger
}

// NewStore creates a session store. Zero option fields take defaults; a nil
// logger falls back to slog.Default.
func NewStore(logger *slog.Logger, opts Options) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	return &Store{
		entries: make(map[string]*entry),
		opts:    opts,
		logger:  logger.With(slog.String("component", "session_store")),
	}
}

// Put stores or replaces the dataset for sessionID. When the store is at
// capacity the stalest other session is evicted first.
func (s *Store) Put(sessionID string, dataset *domain.Dataset) {
	var evicted []eviction

	s.mu.Lock()
	if _, exists := s.entries[sessionID]; !exists && len(s.entries) >= s.opts.Limit {
		evicted = s.evictStalestLocked(1)
	}
	s.entries[sessionID] = &entry{dataset: dataset, lastSeen: time.Now()}
	s.mu.Unlock()

	s.notifyEvicted(evicted)
	s.logger.Debug("dataset stored",
		slog.String("session_id", sessionID),
		slog.String("dataset_id", dataset.ID),
		slog.Int("posts", len(dataset.Posts)))
}

// Get returns the current dataset for sessionID and refreshes its idle timer.
func (s *Store) Get(sessionID string) (*domain.Dataset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.dataset, true
}

// Delete drops a session. Deleting an absent session is a no-op.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep removes sessions idle past the TTL relative to now and returns how
// many were dropped.
func (s *Store) Sweep(now time.Time) int {
	var evicted []eviction

	s.mu.Lock()
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.opts.TTL {
			evicted = append(evicted, eviction{id: id, dataset: e.dataset})
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()

	s.notifyEvicted(evicted)
	if len(evicted) > 0 {
		s.logger.Info("expired sessions swept", slog.Int("count", len(evicted)))
	}
	return len(evicted)
}

// Run sweeps expired sessions until ctx is cancelled. Start it with go
// store.Run(ctx) alongside the server.
func (s *Store) Run(ctx context.Context) {
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()

	s.logger.Debug("session janitor started",
		slog.Duration("ttl", s.opts.TTL),
		slog.Duration("interval", s.opts.SweepInterval))

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("session janitor stopped")
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}

type eviction struct {
	id      string
	dataset *domain.Dataset
}

// evictStalestLocked removes up to n least-recently-seen sessions. Caller
// holds the write lock.
func (s *Store) evictStalestLocked(n int) []eviction {
	evicted := make([]eviction, 0, n)
	for i := 0; i < n; i++ {
		var stalest string
		var oldest time.Time
		for id, e := range s.entries {
			if stalest == "" || e.lastSeen.Before(oldest) {
				stalest = id
				oldest = e.lastSeen
			}
		}
		if stalest == "" {
			break
		}
		evicted = append(evicted, eviction{id: stalest, dataset: s.entries[stalest].dataset})
		delete(s.entries, stalest)
	}
	return evicted
}

func (s *Store) notifyEvicted(evicted []eviction) {
	if s.opts.OnEvict == nil {
		return
	}
	for _, ev := range evicted {
		s.opts.OnEvict(ev.id, ev.dataset)
	}
}
