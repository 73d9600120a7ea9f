package processing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/MrJamesThe3rd/paperbridge/internal/document"
	"github.com/MrJamesThe3rd/paperbridge/internal/expense"
	"github.com/MrJamesThe3rd/paperbridge/internal/journal"
	"github.com/MrJamesThe3rd/paperbridge/internal/mapping"
	"github.com/MrJamesThe3rd/paperbridge/internal/retry"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=processing
type Repository interface {
	GetDocument(ctx context.Context, sourceID int64) (*ProcessedDocument, error)
	CreateDocument(ctx context.Context, doc *ProcessedDocument) error
	UpdateDocument(ctx context.Context, doc *ProcessedDocument) error
	// ClaimDocument moves doc to processing only if its stored status is still from,
	// or it has sat in processing since before staleBefore. It reports whether the claim took.
	ClaimDocument(ctx context.Context, doc *ProcessedDocument, from Status, staleBefore time.Time) (bool, error)
	ListDocuments(ctx context.Context, filter ListFilter) ([]*ProcessedDocument, error)
	DocumentStates(ctx context.Context, sourceIDs []int64) (map[int64]DocumentState, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)

	GetError(ctx context.Context, id uuid.UUID) (*ProcessingError, error)
	FindUnresolvedError(ctx context.Context, sourceID int64) (*ProcessingError, error)
	CreateError(ctx context.Context, e *ProcessingError) error
	UpdateError(ctx context.Context, e *ProcessingError) error
	ResolveErrors(ctx context.Context, sourceID int64, at time.Time) error
	ListErrors(ctx context.Context, filter ErrorFilter) ([]*ProcessingError, error)
	CountUnresolvedErrors(ctx context.Context) (int, error)

	Ping(ctx context.Context) error
}

// SourceClient reads documents from the document-management system.
type SourceClient interface {
	GetDocument(ctx context.Context, id int64) (*document.Document, error)
	ListDocuments(ctx context.Context, page, pageSize int) ([]int64, bool, error)
	HealthCheck(ctx context.Context) error
}

// TargetClient creates expenses in the accounting system.
type TargetClient interface {
	CreateExpense(ctx context.Context, payload expense.Payload) (*expense.Submission, error)
	HealthCheck(ctx context.Context) error
}

type MappingLookup interface {
	Active(ctx context.Context, sourceType string) (*mapping.Mapping, error)
}

// Journal persists processing log entries.
type Journal interface {
	Record(ctx context.Context, e journal.Entry)
}

type Observer interface {
	ObserveOutcome(status Status, elapsed time.Duration)
}

type Options struct {
	Retry     retry.Executor
	BatchSize int
	Workers   int
	// MaxDocumentRetries bounds how often ProcessPending picks a failed document up again.
	MaxDocumentRetries int
	Journal            Journal
	Observer           Observer
}

const (
	DefaultBatchSize          = 10
	DefaultMaxDocumentRetries = 5

	// claimTTL is how long a processing claim holds before another run may take the document over.
	claimTTL = 15 * time.Minute

	msgInProgress = "document is already being processed"
)

type Service struct {
	repo       Repository
	source     SourceClient
	target     TargetClient
	mappings   MappingLookup
	journal    Journal
	observer   Observer
	retry      retry.Executor
	batchSize  int
	workers    int
	maxRetries int
	now        func() time.Time

	flight singleflight.Group
}

// NewService wires the orchestrator. mappings may be nil, in which case no document type mapping is applied.
func NewService(repo Repository, source SourceClient, target TargetClient, mappings MappingLookup, opts Options) *Service {
	s := &Service{
		repo:       repo,
		source:     source,
		target:     target,
		mappings:   mappings,
		journal:    opts.Journal,
		observer:   opts.Observer,
		retry:      opts.Retry,
		batchSize:  opts.BatchSize,
		workers:    opts.Workers,
		maxRetries: opts.MaxDocumentRetries,
		now:        func() time.Time { return time.Now().UTC() },
	}

	if s.batchSize <= 0 {
		s.batchSize = DefaultBatchSize
	}

	if s.workers <= 0 {
		s.workers = 1
	}

	if s.maxRetries <= 0 {
		s.maxRetries = DefaultMaxDocumentRetries
	}

	return s
}

// ProcessDocument drives one source document from fetch to submission and records the result.
// Pipeline failures end up as a failed Outcome and a persisted ProcessingError; only store
// failures are returned as errors.
// Once started, the run is detached from ctx so a dropped caller cannot strand the record
// between submission and bookkeeping. Concurrent calls for the same id share one run.
func (s *Service) ProcessDocument(ctx context.Context, id int64, force bool) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	ctx = context.WithoutCancel(ctx)

	v, err, _ := s.flight.Do(strconv.FormatInt(id, 10), func() (any, error) {
		start := time.Now()

		outcome, err := s.process(ctx, id, force)

		status := outcome.Status
		if err != nil {
			status = StatusFailed
		}

		if s.observer != nil {
			s.observer.ObserveOutcome(status, time.Since(start))
		}

		return outcome, err
	})
	if err != nil {
		return Outcome{}, err
	}

	return v.(Outcome), nil
}

func (s *Service) process(ctx context.Context, id int64, force bool) (Outcome, error) {
	rec, err := s.repo.GetDocument(ctx, id)

	switch {
	case errors.Is(err, ErrNotFound):
		rec = &ProcessedDocument{SourceID: id, Status: StatusPending, Metadata: Metadata{}}
		if err := s.repo.CreateDocument(ctx, rec); err != nil {
			return Outcome{}, fmt.Errorf("creating processed document: %w", err)
		}
	case err != nil:
		return Outcome{}, fmt.Errorf("getting processed document: %w", err)
	}

	if rec.Status.Done() && !force {
		return Outcome{
			Status:   StatusSkipped,
			SourceID: id,
			TargetID: rec.TargetID,
			Message:  fmt.Sprintf("document already %s", rec.Status),
		}, nil
	}

	from := rec.Status
	if from == StatusFailed {
		rec.RetryCount++
	}

	rec.Status = StatusProcessing

	claimed, err := s.repo.ClaimDocument(ctx, rec, from, s.now().Add(-claimTTL))
	if err != nil {
		return Outcome{}, fmt.Errorf("claiming document: %w", err)
	}

	if !claimed {
		slog.Info("document claimed elsewhere", "document_id", id)
		s.record(ctx, id, journal.LevelWarning, journal.ComponentOrchestrator, msgInProgress, nil)

		return Outcome{Status: StatusSkipped, SourceID: id, Message: msgInProgress}, nil
	}

	s.record(ctx, id, journal.LevelInfo, journal.ComponentOrchestrator, "processing started",
		map[string]any{"retry_count": rec.RetryCount, "force": force})

	doc, err := retry.Do(ctx, s.retry, func(ctx context.Context) (*document.Document, error) {
		return s.source.GetDocument(ctx, id)
	})
	if err != nil {
		return s.fail(ctx, rec, KindFetch, err)
	}

	if err := expense.Validate(doc); err != nil {
		return s.fail(ctx, rec, KindValidation, err)
	}

	m, err := s.activeMapping(ctx, doc.DocumentType)
	if err != nil {
		return Outcome{}, fmt.Errorf("looking up mapping: %w", err)
	}

	payload := expense.Transform(doc, m)
	rec.Metadata = snapshot(doc, payload)

	if err := payload.RequireAmount(); err != nil {
		return s.fail(ctx, rec, KindValidation, err)
	}

	sub, err := retry.Do(ctx, s.retry, func(ctx context.Context) (*expense.Submission, error) {
		return s.target.CreateExpense(ctx, payload)
	})
	if err != nil {
		return s.fail(ctx, rec, KindAPI, err)
	}

	now := s.now()

	rec.Status = StatusCompleted
	rec.TargetID = &sub.TargetID
	rec.ProcessedAt = &now
	rec.ErrorMessage = nil

	if err := s.repo.UpdateDocument(ctx, rec); err != nil {
		return Outcome{}, fmt.Errorf("completing document: %w", err)
	}

	if err := s.repo.ResolveErrors(ctx, id, now); err != nil {
		return Outcome{}, fmt.Errorf("resolving errors: %w", err)
	}

	slog.Info("document processed", "document_id", id, "target_id", sub.TargetID, "status", sub.Status)
	s.record(ctx, id, journal.LevelInfo, journal.ComponentBigCapital, fmt.Sprintf("%s created", payload.Kind),
		map[string]any{"target_id": sub.TargetID, "target_status": sub.Status})

	return Outcome{
		Status:   StatusCompleted,
		SourceID: id,
		TargetID: rec.TargetID,
		Message:  fmt.Sprintf("%s created", payload.Kind),
	}, nil
}

func (s *Service) record(ctx context.Context, id int64, level journal.Level, component, msg string, details map[string]any) {
	if s.journal == nil {
		return
	}

	s.journal.Record(ctx, journal.Entry{
		SourceID:  &id,
		Level:     level,
		Component: component,
		Message:   msg,
		Details:   details,
	})
}

// component names the part of the pipeline a failure kind belongs to.
func (k Kind) component() string {
	switch k {
	case KindFetch:
		return journal.ComponentPaperless
	case KindValidation:
		return journal.ComponentValidator
	case KindAPI:
		return journal.ComponentBigCapital
	}

	return journal.ComponentOrchestrator
}

// fail records a failed attempt and turns it into an Outcome.
func (s *Service) fail(ctx context.Context, rec *ProcessedDocument, kind Kind, cause error) (Outcome, error) {
	f := &Failure{Kind: kind, SourceID: rec.SourceID, Err: cause}
	msg := cause.Error()
	now := s.now()

	rec.Status = StatusFailed
	rec.ErrorMessage = &msg

	if err := s.repo.UpdateDocument(ctx, rec); err != nil {
		return Outcome{}, fmt.Errorf("marking document failed: %w", err)
	}

	existing, err := s.repo.FindUnresolvedError(ctx, rec.SourceID)

	switch {
	case err == nil:
		existing.Kind = kind
		existing.Message = msg
		existing.OccurredAt = now
		existing.RetryCount++

		if err := s.repo.UpdateError(ctx, existing); err != nil {
			return Outcome{}, fmt.Errorf("updating processing error: %w", err)
		}
	case errors.Is(err, ErrNotFound):
		pe := &ProcessingError{
			SourceID:   rec.SourceID,
			Kind:       kind,
			Message:    msg,
			OccurredAt: now,
		}

		if err := s.repo.CreateError(ctx, pe); err != nil {
			return Outcome{}, fmt.Errorf("creating processing error: %w", err)
		}
	default:
		return Outcome{}, fmt.Errorf("finding processing error: %w", err)
	}

	slog.Warn("document processing failed", "document_id", rec.SourceID, "kind", kind, "error", f)
	s.record(ctx, rec.SourceID, journal.LevelError, kind.component(), msg,
		map[string]any{"kind": string(kind), "retry_count": rec.RetryCount})

	return Outcome{Status: StatusFailed, SourceID: rec.SourceID, Message: msg}, nil
}

func (s *Service) activeMapping(ctx context.Context, documentType string) (*mapping.Mapping, error) {
	if s.mappings == nil || documentType == "" {
		return nil, nil
	}

	return s.mappings.Active(ctx, documentType)
}

func snapshot(doc *document.Document, p expense.Payload) Metadata {
	meta := Metadata{
		MetaTitle:      doc.Title,
		MetaReference:  p.Reference,
		MetaCurrency:   p.Currency,
		MetaCategory:   p.Category,
		MetaTargetKind: p.Kind,
	}

	if p.Amount != nil {
		meta[MetaAmount] = p.Amount.StringFixed(2)
	}

	if p.Vendor != nil {
		meta[MetaVendor] = *p.Vendor
	}

	if doc.DocumentType != "" {
		meta[MetaDocumentType] = doc.DocumentType
	}

	if len(doc.Tags) > 0 {
		meta[MetaTags] = doc.Tags
	}

	return meta
}

// RetryError reprocesses the document behind an unresolved processing error.
func (s *Service) RetryError(ctx context.Context, errorID uuid.UUID) (Outcome, error) {
	pe, err := s.repo.GetError(ctx, errorID)
	if err != nil {
		return Outcome{}, err
	}

	if pe.Resolved {
		return Outcome{}, ErrAlreadyResolved
	}

	return s.ProcessDocument(ctx, pe.SourceID, false)
}

// Skip marks a document so the pipeline leaves it alone until forced.
func (s *Service) Skip(ctx context.Context, id int64, reason string) (*ProcessedDocument, error) {
	rec, err := s.repo.GetDocument(ctx, id)

	switch {
	case errors.Is(err, ErrNotFound):
		rec = &ProcessedDocument{SourceID: id, Status: StatusPending, Metadata: Metadata{}}
		if err := s.repo.CreateDocument(ctx, rec); err != nil {
			return nil, fmt.Errorf("creating processed document: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("getting processed document: %w", err)
	}

	if rec.Status == StatusCompleted {
		return nil, ErrCompleted
	}

	if rec.Metadata == nil {
		rec.Metadata = Metadata{}
	}

	if reason != "" {
		rec.Metadata[MetaSkipReason] = reason
	}

	rec.Status = StatusSkipped

	if err := s.repo.UpdateDocument(ctx, rec); err != nil {
		return nil, fmt.Errorf("skipping document: %w", err)
	}

	slog.Info("document skipped", "document_id", id, "reason", reason)
	s.record(ctx, id, journal.LevelInfo, journal.ComponentOrchestrator, "document skipped", map[string]any{"reason": reason})

	return rec, nil
}

func (s *Service) GetDocument(ctx context.Context, id int64) (*ProcessedDocument, error) {
	return s.repo.GetDocument(ctx, id)
}

func (s *Service) ListDocuments(ctx context.Context, filter ListFilter) ([]*ProcessedDocument, error) {
	return s.repo.ListDocuments(ctx, filter)
}

func (s *Service) ListErrors(ctx context.Context, filter ErrorFilter) ([]*ProcessingError, error) {
	return s.repo.ListErrors(ctx, filter)
}
