// Package processingtest provides an in-memory processing.Repository for tests and local runs.
package processingtest

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
)

type Store struct {
	mu      sync.Mutex
	docs    map[int64]*processing.ProcessedDocument
	errs    []*processing.ProcessingError
	failErr error
}

var _ processing.Repository = (*Store)(nil)

func New() *Store {
	return &Store{docs: make(map[int64]*processing.ProcessedDocument)}
}

// Seed stores documents as they are, without touching timestamps.
func (s *Store) Seed(docs ...*processing.ProcessedDocument) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range docs {
		s.docs[d.SourceID] = copyDoc(d)
	}
}

// FailWith makes every call return err until it is called again with nil.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failErr = err
}

func copyDoc(d *processing.ProcessedDocument) *processing.ProcessedDocument {
	c := *d
	c.Metadata = maps.Clone(d.Metadata)

	return &c
}

func copyErr(e *processing.ProcessingError) *processing.ProcessingError {
	c := *e
	return &c
}

func (s *Store) GetDocument(_ context.Context, sourceID int64) (*processing.ProcessedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return nil, s.failErr
	}

	d, ok := s.docs[sourceID]
	if !ok {
		return nil, processing.ErrNotFound
	}

	return copyDoc(d), nil
}

func (s *Store) CreateDocument(_ context.Context, doc *processing.ProcessedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}

	if existing, ok := s.docs[doc.SourceID]; ok {
		*doc = *copyDoc(existing)
		return nil
	}

	doc.CreatedAt = time.Now().UTC()
	s.docs[doc.SourceID] = copyDoc(doc)

	return nil
}

func (s *Store) UpdateDocument(_ context.Context, doc *processing.ProcessedDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}

	if _, ok := s.docs[doc.SourceID]; !ok {
		return processing.ErrNotFound
	}

	now := time.Now().UTC()
	doc.UpdatedAt = &now
	s.docs[doc.SourceID] = copyDoc(doc)

	return nil
}

func (s *Store) ListDocuments(_ context.Context, filter processing.ListFilter) ([]*processing.ProcessedDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return nil, s.failErr
	}

	var out []*processing.ProcessedDocument

	for _, id := range slices.Sorted(maps.Keys(s.docs)) {
		d := s.docs[id]

		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}

		if filter.Search != "" && !strings.Contains(strings.ToLower(d.Title()), strings.ToLower(filter.Search)) {
			continue
		}

		out = append(out, copyDoc(d))
	}

	return paginate(out, filter.Limit, filter.Offset), nil
}

func (s *Store) ClaimDocument(_ context.Context, doc *processing.ProcessedDocument, from processing.Status, staleBefore time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return false, s.failErr
	}

	stored, ok := s.docs[doc.SourceID]
	if !ok {
		return false, nil
	}

	switch {
	case stored.Status == processing.StatusProcessing:
		touched := stored.CreatedAt
		if stored.UpdatedAt != nil {
			touched = *stored.UpdatedAt
		}

		if !touched.Before(staleBefore) {
			return false, nil
		}
	case stored.Status != from:
		return false, nil
	}

	now := time.Now().UTC()
	stored.Status = processing.StatusProcessing
	stored.RetryCount = doc.RetryCount
	stored.UpdatedAt = &now

	doc.Status = processing.StatusProcessing
	doc.UpdatedAt = &now

	return true, nil
}

func (s *Store) DocumentStates(_ context.Context, sourceIDs []int64) (map[int64]processing.DocumentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return nil, s.failErr
	}

	states := make(map[int64]processing.DocumentState, len(sourceIDs))

	for _, id := range sourceIDs {
		if d, ok := s.docs[id]; ok {
			states[id] = processing.DocumentState{Status: d.Status, RetryCount: d.RetryCount}
		}
	}

	return states, nil
}

func (s *Store) CountByStatus(_ context.Context) (map[processing.Status]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return nil, s.failErr
	}

	counts := make(map[processing.Status]int)
	for _, d := range s.docs {
		counts[d.Status]++
	}

	return counts, nil
}

func (s *Store) GetError(_ context.Context, id uuid.UUID) (*processing.ProcessingError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return nil, s.failErr
	}

	for _, e := range s.errs {
		if e.ID == id {
			return copyErr(e), nil
		}
	}

	return nil, processing.ErrNotFound
}

func (s *Store) FindUnresolvedError(_ context.Context, sourceID int64) (*processing.ProcessingError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return nil, s.failErr
	}

	for i := len(s.errs) - 1; i >= 0; i-- {
		if e := s.errs[i]; e.SourceID == sourceID && !e.Resolved {
			return copyErr(e), nil
		}
	}

	return nil, processing.ErrNotFound
}

func (s *Store) CreateError(_ context.Context, e *processing.ProcessingError) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}

	e.ID = uuid.New()
	s.errs = append(s.errs, copyErr(e))

	return nil
}

func (s *Store) UpdateError(_ context.Context, e *processing.ProcessingError) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}

	for i, existing := range s.errs {
		if existing.ID == e.ID {
			s.errs[i] = copyErr(e)
			return nil
		}
	}

	return processing.ErrNotFound
}

func (s *Store) ResolveErrors(_ context.Context, sourceID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return s.failErr
	}

	for _, e := range s.errs {
		if e.SourceID == sourceID && !e.Resolved {
			e.Resolved = true
			e.ResolvedAt = &at
		}
	}

	return nil
}

func (s *Store) ListErrors(_ context.Context, filter processing.ErrorFilter) ([]*processing.ProcessingError, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return nil, s.failErr
	}

	var out []*processing.ProcessingError

	for i := len(s.errs) - 1; i >= 0; i-- {
		e := s.errs[i]

		if filter.SourceID != nil && e.SourceID != *filter.SourceID {
			continue
		}

		if filter.Resolved != nil && e.Resolved != *filter.Resolved {
			continue
		}

		out = append(out, copyErr(e))
	}

	return paginate(out, filter.Limit, filter.Offset), nil
}

func (s *Store) CountUnresolvedErrors(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failErr != nil {
		return 0, s.failErr
	}

	n := 0

	for _, e := range s.errs {
		if !e.Resolved {
			n++
		}
	}

	return n, nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.failErr
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}

		items = items[offset:]
	}

	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}

	return items
}
