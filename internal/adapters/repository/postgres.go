package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drivefit/riskd/internal/domain/model"
)

// PostgresStore persists records in a single table with a JSONB health
// document, indexed for newest-first per-user reads.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects a pool and verifies the connection.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create db pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema creates the records table and index if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS risk_records (
			record_id     TEXT        NOT NULL PRIMARY KEY,
			short_user_id TEXT        NOT NULL,
			ts            TEXT        NOT NULL,
			driver_id     TEXT        NOT NULL DEFAULT 'unknown',
			risk          TEXT        NOT NULL,
			health_data   JSONB       NOT NULL DEFAULT '{}'::jsonb,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),

			CONSTRAINT chk_risk CHECK (
				risk IN ('normal', 'moderate', 'high', 'unknown', 'error')
			)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_risk_records_user_ts
			ON risk_records (short_user_id, ts DESC);`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema setup failed: %w", err)
		}
	}
	return nil
}

// Put inserts one record row.
func (s *PostgresStore) Put(ctx context.Context, rec model.Record) error {
	doc := encodeRecord(rec)
	health, err := json.Marshal(doc.Health)
	if err != nil {
		return fmt.Errorf("failed to marshal health document: %w", err)
	}

	query := `
		INSERT INTO risk_records
			(record_id, short_user_id, ts, driver_id, risk, health_data)
		VALUES
			($1, $2, $3, $4, $5, $6)
	`
	_, err = s.pool.Exec(ctx, query,
		doc.RecordID,
		doc.UserID,
		doc.Timestamp,
		doc.DriverID,
		doc.Risk,
		health,
	)
	if err != nil {
		return fmt.Errorf("record insert failed: %w", err)
	}
	return nil
}

// Recent reads up to limit rows newest-first by timestamp.
func (s *PostgresStore) Recent(ctx context.Context, userID string, limit int) ([]model.Record, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	query := `
		SELECT record_id, short_user_id, ts, driver_id, risk, health_data
		FROM risk_records
		WHERE short_user_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("record query failed: %w", err)
	}
	defer rows.Close()

	out := make([]model.Record, 0, limit)
	for rows.Next() {
		var doc recordDoc
		var health []byte
		if err := rows.Scan(&doc.RecordID, &doc.UserID, &doc.Timestamp, &doc.DriverID, &doc.Risk, &health); err != nil {
			return nil, fmt.Errorf("record scan failed: %w", err)
		}
		if err := json.Unmarshal(health, &doc.Health); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptRecord, err)
		}
		rec, err := decodeRecord(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("record rows failed: %w", err)
	}
	return out, nil
}
