package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS import_history (
	id                UUID PRIMARY KEY,
	schema_key        TEXT        NOT NULL,
	session_id        TEXT        NOT NULL,
	file_name         TEXT        NOT NULL,
	total_rows        INTEGER     NOT NULL,
	new_records_added INTEGER     NOT NULL,
	records_updated   INTEGER     NOT NULL,
	accepted          BOOLEAN     NOT NULL,
	errors            JSONB       NOT NULL DEFAULT '[]'::jsonb,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS import_history_schema_created_idx
	ON import_history (schema_key, created_at DESC);
`

const insertSQL = `
INSERT INTO import_history (
	id, schema_key, session_id, file_name, total_rows,
	new_records_added, records_updated, accepted, errors, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const listSQL = `
SELECT id, schema_key, session_id, file_name, total_rows,
	new_records_added, records_updated, accepted, errors, created_at
FROM import_history
WHERE schema_key = $1
ORDER BY created_at DESC
LIMIT $2`

// PostgresStore keeps entries in the import_history table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a store on pool. Call Migrate once before use.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the import_history table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create import_history: %w", err)
	}
	return nil
}

// Record implements Store.
func (p *PostgresStore) Record(ctx context.Context, e Entry) error {
	fillDefaults(&e)

	errorsJSON, err := json.Marshal(e.Errors)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}

	_, err = p.pool.Exec(ctx, insertSQL,
		pgtype.UUID{Bytes: e.ID, Valid: true},
		e.SchemaKey,
		e.SessionID,
		e.FileName,
		e.TotalRows,
		e.NewRecordsAdded,
		e.RecordsUpdated,
		e.Accepted,
		errorsJSON,
		pgtype.Timestamptz{Time: e.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert import_history: %w", err)
	}
	return nil
}

// List implements Store.
func (p *PostgresStore) List(ctx context.Context, schemaKey string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := p.pool.Query(ctx, listSQL, schemaKey, limit)
	if err != nil {
		return nil, fmt.Errorf("query import_history: %w", err)
	}

	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("scan import_history: %w", err)
	}
	return entries, nil
}

func scanEntry(row pgx.CollectableRow) (Entry, error) {
	var (
		e          Entry
		id         pgtype.UUID
		createdAt  pgtype.Timestamptz
		errorsJSON []byte
	)

	err := row.Scan(
		&id,
		&e.SchemaKey,
		&e.SessionID,
		&e.FileName,
		&e.TotalRows,
		&e.NewRecordsAdded,
		&e.RecordsUpdated,
		&e.Accepted,
		&errorsJSON,
		&createdAt,
	)
	if err != nil {
		return Entry{}, err
	}

	e.ID = id.Bytes
	e.CreatedAt = createdAt.Time
	if err := json.Unmarshal(errorsJSON, &e.Errors); err != nil {
		return Entry{}, fmt.Errorf("decode errors: %w", err)
	}
	return e, nil
}
