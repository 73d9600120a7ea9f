package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/paperbridge/internal/mapping"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectColumns = `id, source_type, target_type, field_map, active, created_at, updated_at`

func scanMapping(s scanner) (*mapping.Mapping, error) {
	var (
		m        mapping.Mapping
		fieldMap []byte
	)

	if err := s.Scan(&m.ID, &m.SourceType, &m.TargetType, &fieldMap, &m.Active, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}

	m.FieldMap = map[string]string{}
	if len(fieldMap) > 0 {
		if err := json.Unmarshal(fieldMap, &m.FieldMap); err != nil {
			return nil, fmt.Errorf("decoding field map: %w", err)
		}
	}

	return &m, nil
}

func encodeFieldMap(fieldMap map[string]string) ([]byte, error) {
	if fieldMap == nil {
		fieldMap = map[string]string{}
	}

	return json.Marshal(fieldMap)
}

func (s *Store) FindActive(ctx context.Context, sourceType string) (*mapping.Mapping, error) {
	query := `SELECT ` + selectColumns + `
		FROM document_type_mappings
		WHERE LOWER(source_type) = LOWER($1) AND active
		ORDER BY COALESCE(updated_at, created_at) DESC
		LIMIT 1`

	m, err := scanMapping(s.db.QueryRowContext(ctx, query, sourceType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, mapping.ErrNotFound
		}

		return nil, fmt.Errorf("finding active mapping: %w", err)
	}

	return m, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*mapping.Mapping, error) {
	query := `SELECT ` + selectColumns + ` FROM document_type_mappings WHERE id = $1`

	m, err := scanMapping(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, mapping.ErrNotFound
		}

		return nil, fmt.Errorf("getting mapping: %w", err)
	}

	return m, nil
}

func (s *Store) List(ctx context.Context) ([]*mapping.Mapping, error) {
	query := `SELECT ` + selectColumns + `
		FROM document_type_mappings
		ORDER BY source_type ASC, target_type ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*mapping.Mapping

	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}

		mappings = append(mappings, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mappings: %w", err)
	}

	return mappings, nil
}

// Create inserts a mapping. When it is active, other mappings for the source type are deactivated in the same transaction.
func (s *Store) Create(ctx context.Context, m *mapping.Mapping) error {
	fieldMap, err := encodeFieldMap(m.FieldMap)
	if err != nil {
		return fmt.Errorf("encoding field map: %w", err)
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if m.Active {
		if err := deactivateSourceType(ctx, dbTx, m.SourceType, uuid.Nil); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO document_type_mappings (source_type, target_type, field_map, active, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at
	`

	err = dbTx.QueryRowContext(ctx, query, m.SourceType, m.TargetType, fieldMap, m.Active).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return mapping.ErrDuplicate
		}

		return fmt.Errorf("creating mapping: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// Upsert inserts or updates a mapping keyed by (source type, target type).
func (s *Store) Upsert(ctx context.Context, m *mapping.Mapping) error {
	fieldMap, err := encodeFieldMap(m.FieldMap)
	if err != nil {
		return fmt.Errorf("encoding field map: %w", err)
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO document_type_mappings (source_type, target_type, field_map, active, created_at)
		VALUES ($1, $2, $3, false, NOW())
		ON CONFLICT (source_type, target_type)
		DO UPDATE SET field_map = EXCLUDED.field_map, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err = dbTx.QueryRowContext(ctx, query, m.SourceType, m.TargetType, fieldMap).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting mapping: %w", err)
	}

	if err := setActive(ctx, dbTx, m.ID, m.Active); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := setActive(ctx, dbTx, id, active); err != nil {
		return err
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func setActive(ctx context.Context, dbTx *sql.Tx, id uuid.UUID, active bool) error {
	var sourceType string

	err := dbTx.QueryRowContext(ctx, `SELECT source_type FROM document_type_mappings WHERE id = $1 FOR UPDATE`, id).Scan(&sourceType)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return mapping.ErrNotFound
		}

		return fmt.Errorf("locking mapping: %w", err)
	}

	if active {
		if err := deactivateSourceType(ctx, dbTx, sourceType, id); err != nil {
			return err
		}
	}

	query := `UPDATE document_type_mappings SET active = $1, updated_at = NOW() WHERE id = $2`
	if _, err := dbTx.ExecContext(ctx, query, active, id); err != nil {
		return fmt.Errorf("updating mapping: %w", err)
	}

	return nil
}

func deactivateSourceType(ctx context.Context, dbTx *sql.Tx, sourceType string, keep uuid.UUID) error {
	query := `
		UPDATE document_type_mappings
		SET active = false, updated_at = NOW()
		WHERE LOWER(source_type) = LOWER($1) AND active AND id <> $2
	`

	if _, err := dbTx.ExecContext(ctx, query, sourceType, keep); err != nil {
		return fmt.Errorf("deactivating mappings: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM document_type_mappings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting mapping: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return mapping.ErrNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
