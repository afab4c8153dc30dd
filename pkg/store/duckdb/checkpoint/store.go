// Package checkpoint tracks how far each resource has been archived, so
// interrupted runs resume instead of re-pulling history.
package checkpoint

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/energy-tools/glow-atlas/pkg/models/store"
	"github.com/energy-tools/glow-atlas/pkg/store/duckdb"
)

type Store interface {
	Get(ctx context.Context, resourceID string) (*store.FetchCheckpoint, error)
	List(ctx context.Context) ([]*store.FetchCheckpoint, error)
	// Advance moves the checkpoint forward. A bound older than the stored
	// one is ignored, so re-fetching history never regresses the resume
	// point.
	Advance(ctx context.Context, resourceID string, fetchedTo time.Time) error
	// RecordError notes why the last run stopped without moving the bound.
	RecordError(ctx context.Context, resourceID, message string) error
}

type checkpointStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &checkpointStore{db: db}, nil
}

func (s *checkpointStore) Get(ctx context.Context, resourceID string) (*store.FetchCheckpoint, error) {
	query := `
		SELECT resource_id, last_fetched_to, updated_at, last_error
		FROM fetch_checkpoints
		WHERE resource_id = ?`

	row := s.queryRow(ctx, query, resourceID)

	var cp store.FetchCheckpoint
	var lastError sql.NullString
	err := row.Scan(&cp.ResourceID, &cp.LastFetchedTo, &cp.UpdatedAt, &lastError)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query checkpoint: %w", err)
	}

	cp.LastFetchedTo = cp.LastFetchedTo.UTC()
	cp.UpdatedAt = cp.UpdatedAt.UTC()
	if lastError.Valid {
		cp.LastError = &lastError.String
	}
	return &cp, nil
}

func (s *checkpointStore) List(ctx context.Context) ([]*store.FetchCheckpoint, error) {
	query := `
		SELECT resource_id, last_fetched_to, updated_at, last_error
		FROM fetch_checkpoints
		ORDER BY resource_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	checkpoints := make([]*store.FetchCheckpoint, 0)
	for rows.Next() {
		var cp store.FetchCheckpoint
		var lastError sql.NullString
		if err := rows.Scan(&cp.ResourceID, &cp.LastFetchedTo, &cp.UpdatedAt, &lastError); err != nil {
			return nil, err
		}
		cp.LastFetchedTo = cp.LastFetchedTo.UTC()
		cp.UpdatedAt = cp.UpdatedAt.UTC()
		if lastError.Valid {
			cp.LastError = &lastError.String
		}
		checkpoints = append(checkpoints, &cp)
	}
	return checkpoints, rows.Err()
}

func (s *checkpointStore) Advance(ctx context.Context, resourceID string, fetchedTo time.Time) error {
	existing, err := s.Get(ctx, resourceID)
	if err != nil {
		return err
	}
	if existing != nil && existing.LastFetchedTo.After(fetchedTo) {
		fetchedTo = existing.LastFetchedTo
	}

	query := `
		INSERT OR REPLACE INTO fetch_checkpoints (resource_id, last_fetched_to, updated_at, last_error)
		VALUES (?, ?, CURRENT_TIMESTAMP, NULL)`

	if err := s.exec(ctx, query, resourceID, fetchedTo.UTC()); err != nil {
		return fmt.Errorf("advance checkpoint: %w", err)
	}
	return nil
}

func (s *checkpointStore) RecordError(ctx context.Context, resourceID, message string) error {
	existing, err := s.Get(ctx, resourceID)
	if err != nil {
		return err
	}

	base := time.Unix(0, 0).UTC()
	if existing != nil {
		base = existing.LastFetchedTo
	}

	query := `
		INSERT OR REPLACE INTO fetch_checkpoints (resource_id, last_fetched_to, updated_at, last_error)
		VALUES (?, ?, CURRENT_TIMESTAMP, ?)`

	if err := s.exec(ctx, query, resourceID, base, message); err != nil {
		return fmt.Errorf("record checkpoint error: %w", err)
	}
	return nil
}

func (s *checkpointStore) exec(ctx context.Context, query string, args ...interface{}) error {
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	}
	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *checkpointStore) queryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	if tx := duckdb.GetTransaction(ctx); tx != nil {
		return tx.QueryRowContext(ctx, query, args...)
	}
	return s.db.QueryRowContext(ctx, query, args...)
}
