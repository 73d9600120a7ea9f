package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=journal
type Repository interface {
	Create(ctx context.Context, e *Entry) error
	List(ctx context.Context, filter Filter) ([]*Entry, error)
}

const DefaultLimit = 100

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Record persists an entry. A store failure is logged and otherwise ignored so it never fails the caller's work.
func (s *Service) Record(ctx context.Context, e Entry) {
	if e.Level == "" {
		e.Level = LevelInfo
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}

	if err := s.repo.Create(ctx, &e); err != nil {
		slog.Warn("writing processing log", "component", e.Component, "message", e.Message, "error", err)
	}
}

func (s *Service) List(ctx context.Context, filter Filter) ([]*Entry, error) {
	if filter.Level != nil && !filter.Level.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLevel, *filter.Level)
	}

	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}

	filter.Offset = max(filter.Offset, 0)

	return s.repo.List(ctx, filter)
}
