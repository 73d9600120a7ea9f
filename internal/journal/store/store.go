package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/MrJamesThe3rd/paperbridge/internal/journal"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, e *journal.Entry) error {
	details := e.Details
	if details == nil {
		details = map[string]any{}
	}

	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("encoding log details: %w", err)
	}

	query := `
		INSERT INTO processing_logs (source_document_id, level, component, message, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err = s.db.QueryRowContext(ctx, query, e.SourceID, e.Level, e.Component, e.Message, raw, e.CreatedAt).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("creating processing log: %w", err)
	}

	return nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, filter journal.Filter) ([]*journal.Entry, error) {
	query := `SELECT id, source_document_id, level, component, message, details, created_at FROM processing_logs WHERE 1 = 1`

	var args []any

	argIdx := 1

	if filter.Level != nil {
		query += fmt.Sprintf(" AND level = $%d", argIdx)
		args = append(args, *filter.Level)
		argIdx++
	}

	if filter.SourceID != nil {
		query += fmt.Sprintf(" AND source_document_id = $%d", argIdx)
		args = append(args, *filter.SourceID)
		argIdx++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing processing logs: %w", err)
	}
	defer rows.Close()

	var entries []*journal.Entry

	for rows.Next() {
		var (
			e       journal.Entry
			details []byte
		)

		if err := rows.Scan(&e.ID, &e.SourceID, &e.Level, &e.Component, &e.Message, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning processing log: %w", err)
		}

		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("decoding log details: %w", err)
			}
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating processing logs: %w", err)
	}

	return entries, nil
}
