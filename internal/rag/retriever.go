package rag

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"

	"github.com/folio-rag/folio/internal/chunk"
	"github.com/folio-rag/folio/internal/index"
	"github.com/folio-rag/folio/internal/log"
)

// Searcher is the slice of index.Store the retriever needs.
type Searcher interface {
	Search(ctx context.Context, vector []float32, k int, filter index.Filter) ([]index.Match, error)
}

// Retriever embeds a query and fetches the nearest chunks of one
// notebook. The notebook filter is applied in the store, never
// client-side, so results cannot cross notebooks.
type Retriever struct {
	embedder ai.Embedder
	index    Searcher
	defaultK int
	logger   log.Logger
}

// NewRetriever wires an embedder to a searchable index. defaultK is
// used when a caller passes k <= 0.
func NewRetriever(embedder ai.Embedder, idx Searcher, defaultK int, logger log.Logger) *Retriever {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Retriever{embedder: embedder, index: idx, defaultK: defaultK, logger: logger}
}

// Retrieve returns up to k chunks of the given notebook, most similar
// first. An empty result is not an error.
func (r *Retriever) Retrieve(ctx context.Context, query, notebookID string, k int) ([]index.Match, error) {
	if k <= 0 {
		k = r.defaultK
	}

	vector, err := embedText(ctx, r.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := r.index.Search(ctx, vector, k, index.Filter{chunk.KeyNotebookID: notebookID})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("retrieved chunks", "notebook_id", notebookID, "k", k, "matches", len(matches))
	return matches, nil
}

// embedText runs one text through the embedder and returns its vector.
func embedText(ctx context.Context, embedder ai.Embedder, text string) ([]float32, error) {
	resp, err := embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(text, nil)},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, fmt.Errorf("embedder returned no embedding")
	}
	return resp.Embeddings[0].Embedding, nil
}
