package processing

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/paperbridge/internal/journal"
	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
	"github.com/MrJamesThe3rd/paperbridge/internal/scheduler"
)

type documentResponse struct {
	SourceID     int64               `json:"source_id"`
	Title        string              `json:"title,omitempty"`
	Status       processing.Status   `json:"status"`
	TargetID     *string             `json:"target_id,omitempty"`
	Metadata     processing.Metadata `json:"metadata,omitempty"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	RetryCount   int                 `json:"retry_count"`
	ProcessedAt  *time.Time          `json:"processed_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    *time.Time          `json:"updated_at,omitempty"`
}

type documentDetailResponse struct {
	documentResponse
	Errors []errorResponse `json:"errors"`
	Logs   []logResponse   `json:"logs,omitempty"`
}

type documentListResponse struct {
	Documents []documentResponse `json:"documents"`
	Page      int                `json:"page"`
	PerPage   int                `json:"per_page"`
	HasNext   bool               `json:"has_next"`
	HasPrev   bool               `json:"has_prev"`
}

type errorResponse struct {
	ID         uuid.UUID       `json:"id"`
	SourceID   int64           `json:"source_id"`
	Kind       processing.Kind `json:"kind"`
	Message    string          `json:"message"`
	OccurredAt time.Time       `json:"occurred_at"`
	RetryCount int             `json:"retry_count"`
	Resolved   bool            `json:"resolved"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
}

type errorListResponse struct {
	Errors  []errorResponse `json:"errors"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	HasNext bool            `json:"has_next"`
	HasPrev bool            `json:"has_prev"`
}

type logResponse struct {
	ID         uuid.UUID      `json:"id"`
	DocumentID *int64         `json:"document_id,omitempty"`
	Level      journal.Level  `json:"level"`
	Component  string         `json:"component"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

type logFilters struct {
	Level      *journal.Level `json:"level"`
	DocumentID *int64         `json:"document_id"`
}

type logListResponse struct {
	Logs    []logResponse `json:"logs"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	HasNext bool          `json:"has_next"`
	HasPrev bool          `json:"has_prev"`
	Filters logFilters    `json:"filters"`
}

type outcomeResponse struct {
	SourceID int64             `json:"source_id"`
	Status   processing.Status `json:"status"`
	TargetID *string           `json:"target_id,omitempty"`
	Message  string            `json:"message"`
}

type batchResponse struct {
	Processed int               `json:"processed"`
	Completed int               `json:"completed"`
	Failed    int               `json:"failed"`
	Skipped   int               `json:"skipped"`
	Outcomes  []outcomeResponse `json:"outcomes"`
}

type statsResponse struct {
	Total            int         `json:"total"`
	Pending          int         `json:"pending"`
	Processing       int         `json:"processing"`
	Completed        int         `json:"completed"`
	Failed           int         `json:"failed"`
	Skipped          int         `json:"skipped"`
	UnresolvedErrors int         `json:"unresolved_errors"`
	SuccessRate      float64     `json:"success_rate"`
	Status           string      `json:"status"`
	Error            string      `json:"error,omitempty"`
	LastRun          *runSummary `json:"last_run,omitempty"`
}

type runSummary struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Completed  int       `json:"completed"`
	Failed     int       `json:"failed"`
	Skipped    int       `json:"skipped"`
	Error      string    `json:"error,omitempty"`
}

type componentResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type healthResponse struct {
	Status     string                       `json:"status"`
	Timestamp  time.Time                    `json:"timestamp"`
	Components map[string]componentResponse `json:"components"`
}

const (
	statusHealthy     = "healthy"
	statusUnhealthy   = "unhealthy"
	statusDegraded    = "degraded"
	statusOperational = "operational"
	statusError       = "error"
)

func toDocumentResponse(d *processing.ProcessedDocument) documentResponse {
	return documentResponse{
		SourceID:     d.SourceID,
		Title:        d.Title(),
		Status:       d.Status,
		TargetID:     d.TargetID,
		Metadata:     d.Metadata,
		ErrorMessage: d.ErrorMessage,
		RetryCount:   d.RetryCount,
		ProcessedAt:  d.ProcessedAt,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func toErrorResponse(e *processing.ProcessingError) errorResponse {
	return errorResponse{
		ID:         e.ID,
		SourceID:   e.SourceID,
		Kind:       e.Kind,
		Message:    e.Message,
		OccurredAt: e.OccurredAt,
		RetryCount: e.RetryCount,
		Resolved:   e.Resolved,
		ResolvedAt: e.ResolvedAt,
	}
}

func toErrorResponseList(errs []*processing.ProcessingError) []errorResponse {
	resp := make([]errorResponse, len(errs))
	for i, e := range errs {
		resp[i] = toErrorResponse(e)
	}

	return resp
}

func toLogResponseList(entries []*journal.Entry) []logResponse {
	resp := make([]logResponse, len(entries))
	for i, e := range entries {
		resp[i] = logResponse{
			ID:         e.ID,
			DocumentID: e.SourceID,
			Level:      e.Level,
			Component:  e.Component,
			Message:    e.Message,
			Details:    e.Details,
			CreatedAt:  e.CreatedAt,
		}
	}

	return resp
}

func toOutcomeResponse(o processing.Outcome) outcomeResponse {
	return outcomeResponse{
		SourceID: o.SourceID,
		Status:   o.Status,
		TargetID: o.TargetID,
		Message:  o.Message,
	}
}

func toBatchResponse(outcomes []processing.Outcome) batchResponse {
	resp := batchResponse{
		Processed: len(outcomes),
		Outcomes:  make([]outcomeResponse, len(outcomes)),
	}

	for i, o := range outcomes {
		resp.Outcomes[i] = toOutcomeResponse(o)

		switch o.Status {
		case processing.StatusCompleted:
			resp.Completed++
		case processing.StatusFailed:
			resp.Failed++
		case processing.StatusSkipped:
			resp.Skipped++
		}
	}

	return resp
}

func toStatsResponse(s processing.Statistics, last *scheduler.Run) statsResponse {
	resp := statsResponse{
		Total:            s.Total,
		Pending:          s.Pending,
		Processing:       s.Processing,
		Completed:        s.Completed,
		Failed:           s.Failed,
		Skipped:          s.Skipped,
		UnresolvedErrors: s.UnresolvedErrors,
		SuccessRate:      s.SuccessRate,
		Status:           statusOperational,
		Error:            s.Error,
	}

	if s.Error != "" {
		resp.Status = statusError
	}

	if last != nil {
		resp.LastRun = &runSummary{
			StartedAt:  last.StartedAt,
			FinishedAt: last.FinishedAt,
			Completed:  last.Completed,
			Failed:     last.Failed,
			Skipped:    last.Skipped,
			Error:      last.Error,
		}
	}

	return resp
}

func toHealthResponse(h processing.Health, at time.Time) healthResponse {
	resp := healthResponse{
		Status:     statusHealthy,
		Timestamp:  at,
		Components: make(map[string]componentResponse, len(h.Components)),
	}

	if !h.Healthy {
		resp.Status = statusDegraded
	}

	for name, c := range h.Components {
		status := statusHealthy
		if !c.Healthy {
			status = statusUnhealthy
		}

		resp.Components[name] = componentResponse{Status: status, Error: c.Error}
	}

	return resp
}
