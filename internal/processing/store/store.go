package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/paperbridge/internal/processing"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectDocumentColumns = `
	source_document_id, target_id, status, metadata, error_message,
	processed_at, retry_count, created_at, updated_at
`

func scanDocument(s scanner) (*processing.ProcessedDocument, error) {
	var (
		d         processing.ProcessedDocument
		statusStr string
		metadata  []byte
		targetID  sql.NullString
		errMsg    sql.NullString
	)

	if err := s.Scan(
		&d.SourceID, &targetID, &statusStr, &metadata, &errMsg,
		&d.ProcessedAt, &d.RetryCount, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}

	d.Status = processing.Status(statusStr)

	if targetID.Valid {
		d.TargetID = &targetID.String
	}

	if errMsg.Valid {
		d.ErrorMessage = &errMsg.String
	}

	d.Metadata = processing.Metadata{}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &d.Metadata); err != nil {
			return nil, fmt.Errorf("decoding metadata: %w", err)
		}
	}

	return &d, nil
}

func encodeMetadata(m processing.Metadata) ([]byte, error) {
	if m == nil {
		m = processing.Metadata{}
	}

	return json.Marshal(m)
}

func (s *Store) GetDocument(ctx context.Context, sourceID int64) (*processing.ProcessedDocument, error) {
	query := `SELECT ` + selectDocumentColumns + ` FROM processed_documents WHERE source_document_id = $1`

	d, err := scanDocument(s.db.QueryRowContext(ctx, query, sourceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, processing.ErrNotFound
		}

		return nil, fmt.Errorf("getting processed document: %w", err)
	}

	return d, nil
}

// CreateDocument inserts the record, or loads the existing one when the source id is already known.
func (s *Store) CreateDocument(ctx context.Context, doc *processing.ProcessedDocument) error {
	metadata, err := encodeMetadata(doc.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	query := `
		INSERT INTO processed_documents (source_document_id, target_id, status, metadata, error_message, processed_at, retry_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (source_document_id) DO UPDATE SET source_document_id = EXCLUDED.source_document_id
		RETURNING ` + selectDocumentColumns

	stored, err := scanDocument(s.db.QueryRowContext(ctx, query,
		doc.SourceID,
		doc.TargetID,
		doc.Status,
		metadata,
		doc.ErrorMessage,
		doc.ProcessedAt,
		doc.RetryCount,
	))
	if err != nil {
		return fmt.Errorf("creating processed document: %w", err)
	}

	*doc = *stored

	return nil
}

func (s *Store) UpdateDocument(ctx context.Context, doc *processing.ProcessedDocument) error {
	metadata, err := encodeMetadata(doc.Metadata)
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}

	query := `
		UPDATE processed_documents
		SET target_id = $1, status = $2, metadata = $3, error_message = $4,
			processed_at = $5, retry_count = $6, updated_at = NOW()
		WHERE source_document_id = $7
		RETURNING updated_at
	`

	err = s.db.QueryRowContext(ctx, query,
		doc.TargetID,
		doc.Status,
		metadata,
		doc.ErrorMessage,
		doc.ProcessedAt,
		doc.RetryCount,
		doc.SourceID,
	).Scan(&doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return processing.ErrNotFound
		}

		return fmt.Errorf("updating processed document: %w", err)
	}

	return nil
}

func (s *Store) ListDocuments(ctx context.Context, filter processing.ListFilter) ([]*processing.ProcessedDocument, error) {
	query := `SELECT ` + selectDocumentColumns + ` FROM processed_documents WHERE 1 = 1`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(` AND metadata->>'title' ILIKE $%d ESCAPE '\'`, argIdx)

		args = append(args, containsPattern(filter.Search))
		argIdx++
	}

	query += " ORDER BY created_at DESC, source_document_id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)

		args = append(args, filter.Limit)
		argIdx++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)

		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing processed documents: %w", err)
	}
	defer rows.Close()

	var docs []*processing.ProcessedDocument

	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning processed document: %w", err)
		}

		docs = append(docs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating processed documents: %w", err)
	}

	return docs, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s literally anywhere in the value.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// ClaimDocument moves doc to processing when no other run holds it. The stored status must still
// be from, or the document must have been stuck in processing since before staleBefore.
func (s *Store) ClaimDocument(ctx context.Context, doc *processing.ProcessedDocument, from processing.Status, staleBefore time.Time) (bool, error) {
	query := `
		UPDATE processed_documents
		SET status = 'processing', retry_count = $2, updated_at = NOW()
		WHERE source_document_id = $1
			AND ((status = $3 AND status <> 'processing')
				OR (status = 'processing' AND COALESCE(updated_at, created_at) < $4))
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query, doc.SourceID, doc.RetryCount, from, staleBefore).Scan(&doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("claiming processed document: %w", err)
	}

	doc.Status = processing.StatusProcessing

	return true, nil
}

func (s *Store) DocumentStates(ctx context.Context, sourceIDs []int64) (map[int64]processing.DocumentState, error) {
	states := make(map[int64]processing.DocumentState, len(sourceIDs))
	if len(sourceIDs) == 0 {
		return states, nil
	}

	query := `SELECT source_document_id, status, retry_count FROM processed_documents WHERE source_document_id = ANY($1)`

	rows, err := s.db.QueryContext(ctx, query, sourceIDs)
	if err != nil {
		return nil, fmt.Errorf("loading document states: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id     int64
			status string
			st     processing.DocumentState
		)

		if err := rows.Scan(&id, &status, &st.RetryCount); err != nil {
			return nil, fmt.Errorf("scanning document state: %w", err)
		}

		st.Status = processing.Status(status)
		states[id] = st
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document states: %w", err)
	}

	return states, nil
}

func (s *Store) CountByStatus(ctx context.Context) (map[processing.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM processed_documents GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	defer rows.Close()

	counts := make(map[processing.Status]int)

	for rows.Next() {
		var (
			status string
			n      int
		)

		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}

		counts[processing.Status(status)] = n
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating counts: %w", err)
	}

	return counts, nil
}

const selectErrorColumns = `
	id, source_document_id, error_type, message, occurred_at, retry_count, resolved, resolved_at
`

func scanError(s scanner) (*processing.ProcessingError, error) {
	var (
		e    processing.ProcessingError
		kind string
	)

	if err := s.Scan(&e.ID, &e.SourceID, &kind, &e.Message, &e.OccurredAt, &e.RetryCount, &e.Resolved, &e.ResolvedAt); err != nil {
		return nil, err
	}

	e.Kind = processing.Kind(kind)

	return &e, nil
}

func (s *Store) GetError(ctx context.Context, id uuid.UUID) (*processing.ProcessingError, error) {
	query := `SELECT ` + selectErrorColumns + ` FROM processing_errors WHERE id = $1`

	e, err := scanError(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, processing.ErrNotFound
		}

		return nil, fmt.Errorf("getting processing error: %w", err)
	}

	return e, nil
}

func (s *Store) FindUnresolvedError(ctx context.Context, sourceID int64) (*processing.ProcessingError, error) {
	query := `SELECT ` + selectErrorColumns + `
		FROM processing_errors
		WHERE source_document_id = $1 AND NOT resolved
		ORDER BY occurred_at DESC
		LIMIT 1`

	e, err := scanError(s.db.QueryRowContext(ctx, query, sourceID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, processing.ErrNotFound
		}

		return nil, fmt.Errorf("finding unresolved error: %w", err)
	}

	return e, nil
}

func (s *Store) CreateError(ctx context.Context, e *processing.ProcessingError) error {
	query := `
		INSERT INTO processing_errors (source_document_id, error_type, message, occurred_at, retry_count, resolved)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		e.SourceID,
		e.Kind,
		e.Message,
		e.OccurredAt,
		e.RetryCount,
		e.Resolved,
	).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("creating processing error: %w", err)
	}

	return nil
}

func (s *Store) UpdateError(ctx context.Context, e *processing.ProcessingError) error {
	query := `
		UPDATE processing_errors
		SET error_type = $1, message = $2, occurred_at = $3, retry_count = $4, resolved = $5, resolved_at = $6
		WHERE id = $7
	`

	res, err := s.db.ExecContext(ctx, query, e.Kind, e.Message, e.OccurredAt, e.RetryCount, e.Resolved, e.ResolvedAt, e.ID)
	if err != nil {
		return fmt.Errorf("updating processing error: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return processing.ErrNotFound
	}

	return nil
}

func (s *Store) ResolveErrors(ctx context.Context, sourceID int64, at time.Time) error {
	query := `
		UPDATE processing_errors
		SET resolved = true, resolved_at = $1
		WHERE source_document_id = $2 AND NOT resolved
	`

	if _, err := s.db.ExecContext(ctx, query, at, sourceID); err != nil {
		return fmt.Errorf("resolving processing errors: %w", err)
	}

	return nil
}

func (s *Store) ListErrors(ctx context.Context, filter processing.ErrorFilter) ([]*processing.ProcessingError, error) {
	query := `SELECT ` + selectErrorColumns + ` FROM processing_errors WHERE 1 = 1`

	var args []any

	argIdx := 1

	if filter.SourceID != nil {
		query += fmt.Sprintf(" AND source_document_id = $%d", argIdx)

		args = append(args, *filter.SourceID)
		argIdx++
	}

	if filter.Resolved != nil {
		query += fmt.Sprintf(" AND resolved = $%d", argIdx)

		args = append(args, *filter.Resolved)
		argIdx++
	}

	query += " ORDER BY occurred_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)

		args = append(args, filter.Limit)
		argIdx++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)

		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing processing errors: %w", err)
	}
	defer rows.Close()

	var errs []*processing.ProcessingError

	for rows.Next() {
		e, err := scanError(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning processing error: %w", err)
		}

		errs = append(errs, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating processing errors: %w", err)
	}

	return errs, nil
}

func (s *Store) CountUnresolvedErrors(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM processing_errors WHERE NOT resolved`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting unresolved errors: %w", err)
	}

	return n, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
