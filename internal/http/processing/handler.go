package processing

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/paperbridge/internal/journal"
	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
	"github.com/MrJamesThe3rd/paperbridge/internal/scheduler"
)

const (
	defaultPerPage = 50
	maxPerPage     = 100
	defaultLimit   = 50
	documentLogs   = 50
)

type Handler struct {
	svc    *processing.Service
	poller *scheduler.Poller
	logs   *journal.Service
	now    func() time.Time
}

// NewHandler builds the processing API. poller may be nil when polling is disabled
// and logs may be nil when no processing log is kept.
func NewHandler(svc *processing.Service, poller *scheduler.Poller, logs *journal.Service) *Handler {
	return &Handler{svc: svc, poller: poller, logs: logs, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/health", h.health)
	r.Get("/stats", h.stats)
	r.Post("/process", h.process)

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", h.listDocuments)
		r.Get("/{id}", h.getDocument)
		r.Post("/{id}/process", h.processDocument)
		r.Post("/{id}/skip", h.skipDocument)
	})

	r.Route("/errors", func(r chi.Router) {
		r.Get("/", h.listErrors)
		r.Post("/{id}/retry", h.retryError)
	})

	if h.logs != nil {
		r.Get("/logs", h.listLogs)
	}
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	health := h.svc.Health(r.Context())

	code := http.StatusOK
	if !health.Healthy {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, toHealthResponse(health, h.now().UTC()))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	var last *scheduler.Run
	if h.poller != nil {
		last = h.poller.Last()
	}

	writeJSON(w, http.StatusOK, toStatsResponse(h.svc.Statistics(r.Context()), last))
}

type processRequest struct {
	DocumentID  *int64  `json:"document_id,omitempty"`
	DocumentIDs []int64 `json:"document_ids,omitempty"`
	Force       bool    `json:"force"`
	BatchSize   int     `json:"batch_size"`
	Limit       int     `json:"limit"`
}

// process runs one document, an explicit list, or the next pending documents from the source.
func (h *Handler) process(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := decodeOptional(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.BatchSize < 0 || req.Limit < 0 {
		http.Error(w, "batch_size and limit must not be negative", http.StatusBadRequest)
		return
	}

	switch {
	case req.DocumentID != nil:
		h.runOne(w, r, *req.DocumentID, req.Force)
	case len(req.DocumentIDs) > 0:
		writeJSON(w, http.StatusOK, toBatchResponse(h.svc.BatchProcess(r.Context(), req.DocumentIDs, req.BatchSize)))
	default:
		limit := req.Limit
		if limit == 0 {
			limit = defaultLimit
		}

		outcomes, err := h.svc.ProcessPending(r.Context(), limit, req.BatchSize)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, toBatchResponse(outcomes))
	}
}

func (h *Handler) runOne(w http.ResponseWriter, r *http.Request, id int64, force bool) {
	outcome, err := h.svc.ProcessDocument(r.Context(), id, force)
	if err != nil {
		slog.Error("processing document", "document_id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toOutcomeResponse(outcome))
}

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := pagination(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filter := processing.ListFilter{
		Search: strings.TrimSpace(r.URL.Query().Get("search")),
		Limit:  perPage + 1,
		Offset: (page - 1) * perPage,
	}

	if s := r.URL.Query().Get("status"); s != "" {
		status := processing.Status(s)
		if !status.Valid() {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}

		filter.Status = &status
	}

	docs, err := h.svc.ListDocuments(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	hasNext := len(docs) > perPage
	if hasNext {
		docs = docs[:perPage]
	}

	resp := documentListResponse{
		Documents: make([]documentResponse, len(docs)),
		Page:      page,
		PerPage:   perPage,
		HasNext:   hasNext,
		HasPrev:   page > 1,
	}

	for i, d := range docs {
		resp.Documents[i] = toDocumentResponse(d)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	doc, err := h.svc.GetDocument(r.Context(), id)
	if err != nil {
		if errors.Is(err, processing.ErrNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	errs, err := h.svc.ListErrors(r.Context(), processing.ErrorFilter{SourceID: &id})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := documentDetailResponse{
		documentResponse: toDocumentResponse(doc),
		Errors:           toErrorResponseList(errs),
	}

	if h.logs != nil {
		entries, err := h.logs.List(r.Context(), journal.Filter{SourceID: &id, Limit: documentLogs})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		resp.Logs = toLogResponseList(entries)
	}

	writeJSON(w, http.StatusOK, resp)
}

type processDocumentRequest struct {
	Force bool `json:"force"`
}

func (h *Handler) processDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	var req processDocumentRequest
	if err := decodeOptional(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.runOne(w, r, id, req.Force)
}

type skipRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) skipDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	var req skipRequest
	if err := decodeOptional(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, err := h.svc.Skip(r.Context(), id, strings.TrimSpace(req.Reason))
	if err != nil {
		if errors.Is(err, processing.ErrCompleted) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponse(doc))
}

func (h *Handler) listErrors(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := pagination(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filter := processing.ErrorFilter{
		Limit:  perPage + 1,
		Offset: (page - 1) * perPage,
	}

	q := r.URL.Query()

	if s := q.Get("document_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			http.Error(w, "invalid document_id", http.StatusBadRequest)
			return
		}

		filter.SourceID = &id
	}

	if s := q.Get("resolved"); s != "" {
		resolved, err := strconv.ParseBool(s)
		if err != nil {
			http.Error(w, "invalid resolved", http.StatusBadRequest)
			return
		}

		filter.Resolved = &resolved
	}

	errs, err := h.svc.ListErrors(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	hasNext := len(errs) > perPage
	if hasNext {
		errs = errs[:perPage]
	}

	writeJSON(w, http.StatusOK, errorListResponse{
		Errors:  toErrorResponseList(errs),
		Page:    page,
		PerPage: perPage,
		HasNext: hasNext,
		HasPrev: page > 1,
	})
}

func (h *Handler) listLogs(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := pagination(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filter := journal.Filter{
		Limit:  perPage + 1,
		Offset: (page - 1) * perPage,
	}

	q := r.URL.Query()

	if s := q.Get("level"); s != "" {
		level := journal.Level(strings.ToLower(s))
		filter.Level = &level
	}

	if s := q.Get("document_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			http.Error(w, "invalid document_id", http.StatusBadRequest)
			return
		}

		filter.SourceID = &id
	}

	entries, err := h.logs.List(r.Context(), filter)
	if err != nil {
		if errors.Is(err, journal.ErrInvalidLevel) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	hasNext := len(entries) > perPage
	if hasNext {
		entries = entries[:perPage]
	}

	writeJSON(w, http.StatusOK, logListResponse{
		Logs:    toLogResponseList(entries),
		Page:    page,
		PerPage: perPage,
		HasNext: hasNext,
		HasPrev: page > 1,
		Filters: logFilters{Level: filter.Level, DocumentID: filter.SourceID},
	})
}

func (h *Handler) retryError(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	outcome, err := h.svc.RetryError(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, processing.ErrNotFound):
			http.Error(w, "processing error not found", http.StatusNotFound)
		case errors.Is(err, processing.ErrAlreadyResolved):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}

		return
	}

	writeJSON(w, http.StatusOK, toOutcomeResponse(outcome))
}

func documentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}

	return id, true
}

func pagination(r *http.Request) (page, perPage int, err error) {
	page, perPage = 1, defaultPerPage
	q := r.URL.Query()

	if s := q.Get("page"); s != "" {
		if page, err = strconv.Atoi(s); err != nil || page < 1 {
			return 0, 0, errors.New("invalid page")
		}
	}

	if s := q.Get("per_page"); s != "" {
		if perPage, err = strconv.Atoi(s); err != nil || perPage < 1 {
			return 0, 0, errors.New("invalid per_page")
		}
	}

	return page, min(perPage, maxPerPage), nil
}

// decodeOptional decodes a JSON body when one is present.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
