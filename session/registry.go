// Package session keeps one resume store per signed-in user.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"resume-builder/core"
	"resume-builder/persist"
	"resume-builder/resume"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Observer receives every snapshot published by any session.
type Observer func(userID string, doc *core.Document)

// Session is the single owner of one user's store. Do serializes writers
// coming from concurrent requests; Snapshot needs no lock.
type Session struct {
	UserID string

	mu    sync.Mutex
	store *resume.Store
}

// Do runs fn with exclusive write access to the store.
func (s *Session) Do(fn func(store *resume.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.store)
}

func (s *Session) Snapshot() *core.Document {
	return s.store.Snapshot()
}

// ErrClosed is returned by Get once the registry has been closed.
var ErrClosed = errors.New("session registry closed")

type Registry struct {
	blobs core.BlobStore
	delay time.Duration
	loads singleflight.Group

	mu        sync.Mutex
	observers []Observer
	sessions  map[string]*Session
	closed    bool
}

func NewRegistry(blobs core.BlobStore, delay time.Duration, observers ...Observer) *Registry {
	return &Registry{
		blobs:     blobs,
		delay:     delay,
		observers: observers,
		sessions:  make(map[string]*Session),
	}
}

// Get returns the user's session, loading the stored document on first use.
// Concurrent first calls for one user share a single load, and loads for
// different users run in parallel. A failed load is not cached.
func (r *Registry) Get(ctx context.Context, userID string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[userID]
	closed := r.closed
	r.mu.Unlock()
	if ok {
		return s, nil
	}
	if closed {
		return nil, ErrClosed
	}

	v, err, _ := r.loads.Do(userID, func() (any, error) {
		return r.open(context.WithoutCancel(ctx), userID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (r *Registry) open(ctx context.Context, userID string) (*Session, error) {
	r.mu.Lock()
	if s, ok := r.sessions[userID]; ok {
		r.mu.Unlock()
		return s, nil
	}
	observers := append([]Observer(nil), r.observers...)
	r.mu.Unlock()

	log := logrus.WithField("user_id", userID)
	store, err := resume.New(ctx, resume.Options{
		Persistence: persist.NewAdapter(r.blobs, persist.KeyFor(userID), r.delay),
		Logger:      log,
	})
	if err != nil {
		log.WithError(err).Error("Failed to open session")
		return nil, fmt.Errorf("failed to load resume of user %s: %w", userID, err)
	}
	for _, obs := range observers {
		store.Subscribe(func(doc *core.Document) { obs(userID, doc) })
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		store.Close()
		return nil, ErrClosed
	}
	s := &Session{UserID: userID, store: store}
	r.sessions[userID] = s
	log.Info("Session opened")
	return s, nil
}

// Observe adds obs to sessions opened from now on.
func (r *Registry) Observe(obs Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, obs)
}

// Len reports the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close ends every session. Saves still inside their debounce window are
// abandoned.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	for id, s := range r.sessions {
		s.mu.Lock()
		s.store.Close()
		s.mu.Unlock()
		delete(r.sessions, id)
	}
}
