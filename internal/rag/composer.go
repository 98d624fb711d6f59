package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/folio-rag/folio/internal/chunk"
	"github.com/folio-rag/folio/internal/index"
	"github.com/folio-rag/folio/internal/log"
)

// noContextMarker is sent as the context block when retrieval found
// nothing. The model sees it and produces the refusal, so refusal
// wording stays model-owned instead of being hardcoded here.
const noContextMarker = "[No relevant context was found in this notebook.]"

const systemPrompt = `You are a research assistant answering questions about a user's uploaded documents.

Rules:
- Answer only from the context supplied in the user message. Never use outside knowledge.
- Cite the document name and page number for every claim when they are available in the context.
- If the context is empty or does not contain the answer, politely say that the notebook has no information on the question. Do not guess.`

// StreamFunc receives answer fragments as the model emits them.
// Returning an error aborts generation.
type StreamFunc func(ctx context.Context, fragment string) error

// Composer turns retrieved chunks and a question into a grounded,
// cited answer via the configured generation model.
type Composer struct {
	g         *genkit.Genkit
	modelName string
	logger    log.Logger
}

// NewComposer binds a genkit instance and model name.
func NewComposer(g *genkit.Genkit, modelName string, logger log.Logger) *Composer {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Composer{g: g, modelName: modelName, logger: logger}
}

// FormatContext renders retrieved chunks into the context block: chunk
// texts separated by blank lines, each followed by a bracketed source
// annotation. Page is omitted when the metadata has none. Empty input
// yields the no-context marker.
func FormatContext(matches []index.Match) string {
	if len(matches) == 0 {
		return noContextMarker
	}

	blocks := make([]string, len(matches))
	for i, m := range matches {
		blocks[i] = m.Content + "\n" + sourceAnnotation(m.Metadata)
	}
	return strings.Join(blocks, "\n\n")
}

func sourceAnnotation(metadata map[string]any) string {
	filename, _ := metadata[chunk.KeySource].(string)
	if filename == "" {
		filename = "unknown"
	}
	if page, ok := pageNumber(metadata); ok {
		return fmt.Sprintf("[Source: %s, Page %d]", filename, page)
	}
	return fmt.Sprintf("[Source: %s]", filename)
}

// pageNumber reads the page out of chunk metadata. JSONB round trips
// numbers as float64; direct construction uses int.
func pageNumber(metadata map[string]any) (int, bool) {
	switch v := metadata[chunk.KeyPage].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// userPrompt assembles the user turn: context block, literal question,
// formatting request.
func userPrompt(query string, matches []index.Match) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer in markdown.", FormatContext(matches), query)
}

// Compose generates a complete answer. Temperature is pinned to zero:
// citation tasks should be deterministic, not creative.
func (c *Composer) Compose(ctx context.Context, query string, matches []index.Match) (string, error) {
	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModelName(c.modelName),
		ai.WithSystem(systemPrompt),
		ai.WithPrompt(userPrompt(query, matches)),
		ai.WithConfig(&ai.GenerationCommonConfig{Temperature: 0}),
	)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	c.logger.Debug("composed answer", "model", c.modelName, "chunks", len(matches))
	return resp.Text(), nil
}

// ComposeStream generates an answer and forwards each fragment to fn
// as it arrives. A callback error or context cancellation stops
// generation; the full text is also returned for callers that want it.
func (c *Composer) ComposeStream(ctx context.Context, query string, matches []index.Match, fn StreamFunc) (string, error) {
	resp, err := genkit.Generate(ctx, c.g,
		ai.WithModelName(c.modelName),
		ai.WithSystem(systemPrompt),
		ai.WithPrompt(userPrompt(query, matches)),
		ai.WithConfig(&ai.GenerationCommonConfig{Temperature: 0}),
		ai.WithStreaming(func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, chunk.Text())
		}),
	)
	if err != nil {
		return "", fmt.Errorf("generate answer stream: %w", err)
	}
	return resp.Text(), nil
}
