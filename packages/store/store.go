// Package store keeps the last response of every executed named request,
// keyed by document identity and request name. The resolver reads a
// snapshot; the controller that actually sends requests writes entries
// after each run. Last write wins, no versioning, session lifetime.
package store

import (
	"sync"
	"time"

	"github.com/devraw/restfile/packages/core/parser"
	"github.com/devraw/restfile/packages/http"
)

type Key struct {
	Document string
	Request  string
}

// Entry pairs the descriptor that was sent with the response it produced,
// so both name.request.* and name.response.* references resolve.
type Entry struct {
	Request  *parser.Descriptor
	Response *http.Response
	StoredAt time.Time
}

// Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries map[Key]*Entry
}

func New() *Store {
	return &Store{entries: make(map[Key]*Entry)}
}

func (s *Store) Put(document, request string, e *Entry) {
	if e.StoredAt.IsZero() {
		e.StoredAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[Key{Document: document, Request: request}] = e
}

func (s *Store) Get(document, request string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[Key{Document: document, Request: request}]
	return e, ok
}

func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Key]*Entry)
}

// Snapshot copies the current entry set. A resolution pass works against
// one snapshot so a concurrent write never changes what it observes.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make(map[Key]*Entry, len(s.entries))
	for k, v := range s.entries {
		entries[k] = v
	}
	return &Snapshot{entries: entries}
}

// Snapshot is an immutable view of the store.
type Snapshot struct {
	entries map[Key]*Entry
}

// Get reports an explicit not-found for requests that have not produced a
// response yet; it never blocks waiting for one.
func (s *Snapshot) Get(document, request string) (*Entry, bool) {
	if s == nil {
		return nil, false
	}
	e, ok := s.entries[Key{Document: document, Request: request}]
	return e, ok
}

func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}
