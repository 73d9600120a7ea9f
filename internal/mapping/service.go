package mapping

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=mapping
type Repository interface {
	FindActive(ctx context.Context, sourceType string) (*Mapping, error)
	Get(ctx context.Context, id uuid.UUID) (*Mapping, error)
	List(ctx context.Context) ([]*Mapping, error)
	Create(ctx context.Context, mp *Mapping) error
	Upsert(ctx context.Context, mp *Mapping) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	SourceType string
	TargetType string
	FieldMap   map[string]string
	Active     bool
}

func (p CreateParams) validate() error {
	if strings.TrimSpace(p.SourceType) == "" {
		return fmt.Errorf("%w: source type is required", ErrInvalid)
	}

	if strings.TrimSpace(p.TargetType) == "" {
		return fmt.Errorf("%w: target type is required", ErrInvalid)
	}

	return checkFieldMap(p.FieldMap)
}

// Active returns the active mapping for a source document type, or nil when none is configured.
func (s *Service) Active(ctx context.Context, sourceType string) (*Mapping, error) {
	if sourceType == "" {
		return nil, nil
	}

	m, err := s.repo.FindActive(ctx, sourceType)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return m, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Mapping, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Mapping, error) {
	return s.repo.List(ctx)
}

// Create stores a new mapping. An active mapping replaces the previously active one for its source type.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Mapping, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	m := &Mapping{
		SourceType: strings.TrimSpace(params.SourceType),
		TargetType: strings.TrimSpace(params.TargetType),
		FieldMap:   params.FieldMap,
		Active:     params.Active,
	}
	if m.FieldMap == nil {
		m.FieldMap = map[string]string{}
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

// SetActive toggles a mapping. Activating deactivates any other mapping for the same source type.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// Import reads mappings from a CSV export and upserts them by (source type, target type).
func (s *Service) Import(ctx context.Context, r io.Reader) ([]*Mapping, error) {
	params, err := ParseCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	imported := make([]*Mapping, 0, len(params))

	for i, p := range params {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("mapping %d: %w", i+1, err)
		}

		m := &Mapping{
			SourceType: p.SourceType,
			TargetType: p.TargetType,
			FieldMap:   p.FieldMap,
			Active:     p.Active,
		}

		if err := s.repo.Upsert(ctx, m); err != nil {
			return nil, fmt.Errorf("upsert mapping %s -> %s: %w", p.SourceType, p.TargetType, err)
		}

		imported = append(imported, m)
	}

	return imported, nil
}
