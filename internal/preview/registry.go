package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an unattached session survives without activity.
const DefaultSessionTTL = 30 * time.Minute

// SessionFactory builds a session for a freshly minted ID.
type SessionFactory func(id string, sel ViewSelection) *Session

// Registry tracks the live sessions of the web console, one per open page.
type Registry struct {
	factory SessionFactory
	ttl     time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewRegistry creates a Registry. ttl defaults to DefaultSessionTTL.
func NewRegistry(factory SessionFactory, ttl time.Duration, logger *slog.Logger) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		factory:  factory,
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with a random ID. It returns nil once the
// registry is closed.
func (r *Registry) Create(sel ViewSelection) *Session {
	id := uuid.NewString()
	s := r.factory(id, sel)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		s.Close()
		return nil
	}
	r.sessions[id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	s.Start()
	r.logger.Debug("preview session created", "session", id, "sessions", n)
	return s
}

// Get returns the session with id and records activity on it.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if ok {
		s.Touch()
	}
	return s, ok
}

// Remove closes and forgets the session with id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many it closed.
func (r *Registry) Sweep(now time.Time) int {
	var expired []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.IdleSince(now) > r.ttl {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
		r.logger.Debug("preview session expired", "session", s.ID)
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then closes every session.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case now := <-ticker.C:
			r.Sweep(now)
		}
	}
}

// Close closes every session. Create returns nil afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
