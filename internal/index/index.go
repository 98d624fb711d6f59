// Package index is the gateway to the pgvector-backed chunk store. It
// owns the SQL surface: batched inserts, filtered similarity search and
// filtered deletion. Embedding happens upstream; the store only moves
// vectors and metadata.
package index

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// MaxBatchSize caps the number of records per Upsert call. Larger
// ingests must be split into sequential batches by the caller.
const MaxBatchSize = 100

// ErrInvalidFilter is returned when a filtered operation receives an
// empty filter. An empty JSONB containment filter matches every chunk,
// so deletion without constraints must go through DeleteAll instead.
var ErrInvalidFilter = errors.New("empty filter matches every chunk")

// Record is one chunk ready for insertion.
type Record struct {
	Content   string
	Embedding []float32
	Metadata  map[string]any
}

// Match is one search hit. Similarity is 1 minus cosine distance, so
// higher is closer; results arrive in descending similarity order.
type Match struct {
	Content    string
	Metadata   map[string]any
	Similarity float64
}

// Filter is an exact-match conjunction over metadata keys, applied
// with the JSONB @> containment operator.
type Filter map[string]any

// OpError wraps a store failure with the operation that produced it.
// BatchID is set for upsert failures, Filter for filtered operations.
type OpError struct {
	Op      string
	BatchID uuid.UUID
	Filter  Filter
	Err     error
}

func (e *OpError) Error() string {
	switch {
	case e.BatchID != uuid.Nil:
		return fmt.Sprintf("index %s (batch %s): %v", e.Op, e.BatchID, e.Err)
	case e.Filter != nil:
		return fmt.Sprintf("index %s (filter %v): %v", e.Op, e.Filter, e.Err)
	default:
		return fmt.Sprintf("index %s: %v", e.Op, e.Err)
	}
}

func (e *OpError) Unwrap() error { return e.Err }
