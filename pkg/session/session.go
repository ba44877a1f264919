// Package session keeps the live visualization panels of the HTTP server.
//
// Each session owns one running [panel.Panel] identified by a random UUID.
// Sessions expire after a period without use; every successful [Registry.Get]
// pushes the expiry forward. Expired sessions are torn down lazily on access
// and eagerly by [Registry.Cleanup], which [Registry.RunJanitor] calls on an
// interval.
//
// Sessions live in memory only. Restarting the server drops every view.
//
// # Usage
//
//	reg := session.NewRegistry(session.DefaultTTL)
//	go reg.RunJanitor(ctx, time.Minute)
//
//	sess, err := reg.Create(ctx, func() *panel.Panel {
//	    return panel.New(prov, panel.WithLogger(logger))
//	})
//	...
//	sess, err = reg.Get(sess.ID)
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/blockscape/pkg/errors"
	"github.com/matzehuels/blockscape/pkg/panel"
)

// Default durations.
const (
	// DefaultTTL is how long an unused session survives.
	DefaultTTL = 30 * time.Minute

	// MaxSessions bounds the number of concurrently live panels.
	MaxSessions = 256
)

// Session is one live panel.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	Panel *panel.Panel `json:"-"`

	cancel context.CancelFunc
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// stop deactivates the panel and waits for its teardown.
func (s *Session) stop() {
	s.cancel()
	<-s.Panel.Done()
}

// Registry is a concurrency-safe set of sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
	now      func() time.Time
}

// NewRegistry returns an empty registry. A non-positive ttl selects
// [DefaultTTL].
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		max:      MaxSessions,
		now:      time.Now,
	}
}

// Create starts a new panel from newPanel and registers it. The panel runs
// until the session is deleted, expires, or ctx is cancelled.
func (r *Registry) Create(ctx context.Context, newPanel func() *panel.Panel) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.max {
		r.cleanupLocked()
		if len(r.sessions) >= r.max {
			return nil, errors.New(errors.ErrCodeInvalidInput, "too many sessions (max %d)", r.max)
		}
	}

	pctx, cancel := context.WithCancel(ctx)
	now := r.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
		Panel:     newPanel(),
		cancel:    cancel,
	}
	go sess.Panel.Run(pctx)

	r.sessions[sess.ID] = sess
	return sess, nil
}

// Get returns a live session and extends its expiry. It fails with
// SESSION_NOT_FOUND for unknown or expired ids.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	now := r.now()
	if sess.IsExpired(now) {
		delete(r.sessions, id)
		r.mu.Unlock()
		sess.stop()
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q expired", id)
	}
	sess.ExpiresAt = now.Add(r.ttl)
	r.mu.Unlock()
	return sess, nil
}

// Delete tears a session down. Deleting an unknown id is not an error.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		sess.stop()
	}
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Cleanup tears down expired sessions and returns how many were removed.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cleanupLocked()
}

func (r *Registry) cleanupLocked() int {
	now := r.now()
	n := 0
	for id, sess := range r.sessions {
		if sess.IsExpired(now) {
			delete(r.sessions, id)
			// Teardown only waits on the panel goroutine, never on r.mu.
			sess.stop()
			n++
		}
	}
	return n
}

// RunJanitor calls Cleanup every interval until ctx is cancelled.
func (r *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Cleanup()
		}
	}
}

// Close tears down every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()
	for _, sess := range all {
		sess.stop()
	}
}
