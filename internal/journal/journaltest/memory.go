// Package journaltest provides an in-memory journal.Repository for tests and local runs.
package journaltest

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/paperbridge/internal/journal"
)

type Store struct {
	mu      sync.Mutex
	entries []*journal.Entry
}

var _ journal.Repository = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) Create(_ context.Context, e *journal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.New()

	c := *e
	s.entries = append(s.entries, &c)

	return nil
}

// List returns matching entries newest first.
func (s *Store) List(_ context.Context, filter journal.Filter) ([]*journal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*journal.Entry

	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]

		if filter.Level != nil && e.Level != *filter.Level {
			continue
		}

		if filter.SourceID != nil && (e.SourceID == nil || *e.SourceID != *filter.SourceID) {
			continue
		}

		c := *e
		out = append(out, &c)
	}

	if filter.Offset >= len(out) {
		return nil, nil
	}

	out = out[filter.Offset:]

	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}

	return out, nil
}
