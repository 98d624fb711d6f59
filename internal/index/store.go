package index

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/folio-rag/folio/internal/log"
)

// DB is the slice of pgxpool.Pool the store depends on. Defined here,
// on the consumer side, so tests can substitute a mock without a
// database.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const (
	insertSQL = `INSERT INTO chunks (content, embedding, metadata) VALUES ($1, $2, $3)`

	searchFilteredSQL = `SELECT content, metadata, 1 - (embedding <=> $1) AS similarity
FROM chunks
WHERE metadata @> $2
ORDER BY embedding <=> $1
LIMIT $3`

	searchAllSQL = `SELECT content, metadata, 1 - (embedding <=> $1) AS similarity
FROM chunks
ORDER BY embedding <=> $1
LIMIT $2`

	deleteFilteredSQL = `DELETE FROM chunks WHERE metadata @> $1`

	deleteAllSQL = `DELETE FROM chunks`
)

// Store performs vector operations against the chunks table.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	db        DB
	dimension int
	logger    log.Logger
}

// NewStore returns a Store bound to db. dimension is the embedding
// width the schema was created with; records that disagree are
// rejected rather than silently truncated by the database driver.
func NewStore(db DB, dimension int, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{db: db, dimension: dimension, logger: logger}
}

// Upsert inserts one batch of records in a single round trip using
// pgx batching. The returned batch id appears in logs and errors for
// correlation. Batches over MaxBatchSize are rejected; the caller is
// responsible for splitting and sequencing larger ingests.
func (s *Store) Upsert(ctx context.Context, records []Record) (uuid.UUID, error) {
	batchID := uuid.New()

	if len(records) == 0 {
		return batchID, nil
	}
	if len(records) > MaxBatchSize {
		return uuid.Nil, &OpError{
			Op:      "upsert",
			BatchID: batchID,
			Err:     fmt.Errorf("batch of %d records exceeds limit %d", len(records), MaxBatchSize),
		}
	}

	batch := &pgx.Batch{}
	for i, rec := range records {
		if len(rec.Embedding) != s.dimension {
			return uuid.Nil, &OpError{
				Op:      "upsert",
				BatchID: batchID,
				Err:     fmt.Errorf("record %d: embedding dimension %d, want %d", i, len(rec.Embedding), s.dimension),
			}
		}
		meta, err := json.Marshal(rec.Metadata)
		if err != nil {
			return uuid.Nil, &OpError{
				Op:      "upsert",
				BatchID: batchID,
				Err:     fmt.Errorf("record %d: marshal metadata: %w", i, err),
			}
		}
		batch.Queue(insertSQL, rec.Content, pgvector.NewVector(rec.Embedding), meta)
	}

	results := s.db.SendBatch(ctx, batch)
	for i := range records {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return uuid.Nil, &OpError{
				Op:      "upsert",
				BatchID: batchID,
				Err:     fmt.Errorf("record %d: %w", i, err),
			}
		}
	}
	if err := results.Close(); err != nil {
		return uuid.Nil, &OpError{Op: "upsert", BatchID: batchID, Err: err}
	}

	s.logger.Debug("upserted batch", "batch_id", batchID, "records", len(records))
	return batchID, nil
}

// Search returns the k nearest chunks by cosine distance. A non-empty
// filter restricts candidates by JSONB containment before ordering; an
// empty filter searches the whole table.
func (s *Store) Search(ctx context.Context, vector []float32, k int, filter Filter) ([]Match, error) {
	if len(vector) != s.dimension {
		return nil, &OpError{
			Op:  "search",
			Err: fmt.Errorf("query embedding dimension %d, want %d", len(vector), s.dimension),
		}
	}
	if k <= 0 {
		return nil, &OpError{Op: "search", Err: fmt.Errorf("k must be positive, got %d", k)}
	}

	qv := pgvector.NewVector(vector)

	var (
		rows pgx.Rows
		err  error
	)
	if len(filter) > 0 {
		filterJSON, marshalErr := json.Marshal(filter)
		if marshalErr != nil {
			return nil, &OpError{Op: "search", Filter: filter, Err: fmt.Errorf("marshal filter: %w", marshalErr)}
		}
		rows, err = s.db.Query(ctx, searchFilteredSQL, qv, filterJSON, k)
	} else {
		rows, err = s.db.Query(ctx, searchAllSQL, qv, k)
	}
	if err != nil {
		return nil, &OpError{Op: "search", Filter: filter, Err: err}
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var (
			content    string
			metaJSON   []byte
			similarity float64
		)
		if err := rows.Scan(&content, &metaJSON, &similarity); err != nil {
			return nil, &OpError{Op: "search", Filter: filter, Err: fmt.Errorf("scan row: %w", err)}
		}
		var metadata map[string]any
		if err := json.Unmarshal(metaJSON, &metadata); err != nil {
			s.logger.Warn("failed to parse chunk metadata", "error", err)
			metadata = map[string]any{}
		}
		matches = append(matches, Match{Content: content, Metadata: metadata, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, &OpError{Op: "search", Filter: filter, Err: err}
	}
	return matches, nil
}

// DeleteByFilter removes every chunk whose metadata contains the
// filter and reports how many rows went away. The filter must be
// non-empty; wiping the table is only possible through DeleteAll.
func (s *Store) DeleteByFilter(ctx context.Context, filter Filter) (int64, error) {
	if len(filter) == 0 {
		return 0, &OpError{Op: "delete", Filter: filter, Err: ErrInvalidFilter}
	}

	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return 0, &OpError{Op: "delete", Filter: filter, Err: fmt.Errorf("marshal filter: %w", err)}
	}

	tag, err := s.db.Exec(ctx, deleteFilteredSQL, filterJSON)
	if err != nil {
		return 0, &OpError{Op: "delete", Filter: filter, Err: err}
	}

	deleted := tag.RowsAffected()
	s.logger.Info("deleted chunks by filter", "filter", filter, "deleted", deleted)
	return deleted, nil
}

// DeleteAll removes every chunk in the store. This is the single
// unconditional wipe path; it is never reachable through an empty
// filter.
func (s *Store) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, deleteAllSQL)
	if err != nil {
		return 0, &OpError{Op: "delete_all", Err: err}
	}

	deleted := tag.RowsAffected()
	s.logger.Info("deleted all chunks", "deleted", deleted)
	return deleted, nil
}
