package processing

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyResolved = errors.New("processing error already resolved")
	ErrCompleted       = errors.New("document already completed")
)

// Status is the lifecycle state of a processed document.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusSkipped    Status = "skipped"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusSkipped:
		return true
	}

	return false
}

// Done reports whether documents in this state are left alone unless forced.
func (s Status) Done() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// Metadata is the snapshot of extracted facts stored with a processed document.
type Metadata map[string]any

// ProcessedDocument tracks one source document through the pipeline. SourceID is unique.
type ProcessedDocument struct {
	SourceID     int64
	TargetID     *string
	Status       Status
	Metadata     Metadata
	ErrorMessage *string
	ProcessedAt  *time.Time
	RetryCount   int
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// DocumentState is the part of a tracked document the poller needs to pick candidates.
type DocumentState struct {
	Status     Status
	RetryCount int
}

// Title returns the document title recorded in the metadata snapshot, if any.
func (d *ProcessedDocument) Title() string {
	if title, ok := d.Metadata[MetaTitle].(string); ok {
		return title
	}

	return ""
}

// Kind tags the pipeline stage a failure came from.
type Kind string

const (
	KindFetch      Kind = "fetch_error"
	KindValidation Kind = "validation_error"
	KindAPI        Kind = "api_error"
)

// ProcessingError is a persisted record of a failed attempt.
// Repeated failures of the same document bump RetryCount on the unresolved row.
type ProcessingError struct {
	ID         uuid.UUID
	SourceID   int64
	Kind       Kind
	Message    string
	OccurredAt time.Time
	RetryCount int
	Resolved   bool
	ResolvedAt *time.Time
}

// Failure is a pipeline failure for a single document.
type Failure struct {
	Kind     Kind
	SourceID int64
	Err      error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("document %d: %s: %v", f.SourceID, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Outcome is the result of one processing attempt.
type Outcome struct {
	Status   Status
	SourceID int64
	TargetID *string
	Message  string
}

type Statistics struct {
	Total            int
	Pending          int
	Processing       int
	Completed        int
	Failed           int
	Skipped          int
	UnresolvedErrors int
	SuccessRate      float64
	// Error is set when the store could not be read; counts are zero then.
	Error string
}

type ComponentHealth struct {
	Healthy bool
	Error   string
}

type Health struct {
	Healthy    bool
	Components map[string]ComponentHealth
}

type ListFilter struct {
	Status *Status
	Search string
	Limit  int
	Offset int
}

type ErrorFilter struct {
	SourceID *int64
	Resolved *bool
	Limit    int
	Offset   int
}

// Keys of the metadata snapshot.
const (
	MetaTitle        = "title"
	MetaReference    = "reference"
	MetaAmount       = "amount"
	MetaCurrency     = "currency"
	MetaVendor       = "vendor"
	MetaCategory     = "category"
	MetaDocumentType = "document_type"
	MetaTags         = "tags"
	MetaTargetKind   = "target_kind"
	MetaSkipReason   = "skip_reason"
)
