// Package session keeps live builder sessions: one composition per session
// behind a mutex, a version for optimistic concurrency and an autosaver
// that persists the latest state as a draft.
package session

import (
	"reflect"
	"sync"

	"github.com/meur/dtwiki/internal/clock"
	"github.com/meur/dtwiki/internal/drafts"
	"github.com/meur/dtwiki/internal/errors"
)

// codec is what a session needs to know about its composition type
type codec[C any] struct {
	marshal func(C) ([]byte, error)
	stamp   func(C, int64) C
}

// Session is one open builder
type Session[C any] struct {
	ID string

	mu      sync.Mutex
	state   C
	version int64

	codec codec[C]
	saver *drafts.Autosaver
	clock clock.Clock
}

// Snapshot returns the current state and version
func (s *Session[C]) Snapshot() (C, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.version
}

// Update applies fn to the current state. A non-zero expected version must
// match the session's version or the update is aborted. A rejected update
// keeps the state and version; a no-op keeps the version and writes nothing.
func (s *Session[C]) Update(expected int64, fn func(C) (C, error)) (C, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expected != 0 && expected != s.version {
		return s.state, s.version, errors.Abortedf("session %s is at version %d, not %d", s.ID, s.version, expected).
			WithMeta("version", s.version)
	}

	next, err := fn(s.state)
	if err != nil {
		return s.state, s.version, err
	}
	if reflect.DeepEqual(next, s.state) {
		return s.state, s.version, nil
	}

	s.state = s.codec.stamp(next, s.clock.Now().UnixMilli())
	s.version++
	s.persist()
	return s.state, s.version, nil
}

func (s *Session[C]) persist() {
	data, err := s.codec.marshal(s.state)
	if err != nil {
		return
	}
	s.saver.Schedule(data)
}

// Flush writes any pending draft now
func (s *Session[C]) Flush() {
	s.saver.Flush()
}

func (s *Session[C]) close() {
	s.saver.Close()
}
