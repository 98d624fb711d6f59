package rag

import (
	"context"
	"strings"

	"github.com/folio-rag/folio/internal/chunk"
	"github.com/folio-rag/folio/internal/index"
	"github.com/folio-rag/folio/internal/log"
)

// Message is one prior chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Query is one question scoped to a notebook.
//
// History is accepted for API compatibility and currently ignored:
// answers are produced from retrieved context only. Callers should not
// expect follow-up questions to resolve pronouns from earlier turns.
type Query struct {
	Question   string    `json:"question"`
	NotebookID string    `json:"notebookId"`
	History    []Message `json:"chatHistory,omitempty"`
}

// Result is a completed answer plus the distinct source documents the
// retrieved context came from, in retrieval order.
type Result struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}

// Pipeline chains retrieval and composition into the question
// answering flow.
type Pipeline struct {
	retriever *Retriever
	composer  *Composer
	logger    log.Logger
}

// NewPipeline wires a retriever and composer together.
func NewPipeline(retriever *Retriever, composer *Composer, logger log.Logger) *Pipeline {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Pipeline{retriever: retriever, composer: composer, logger: logger}
}

// Answer runs the blocking flow: retrieve the notebook's nearest
// chunks, then compose a cited answer. Retrieval finding nothing is
// not an error; the composer sends the empty-context marker and the
// model produces the refusal.
func (p *Pipeline) Answer(ctx context.Context, q Query) (Result, error) {
	if err := validateQuery(q); err != nil {
		return Result{}, err
	}

	matches, err := p.retriever.Retrieve(ctx, q.Question, q.NotebookID, 0)
	if err != nil {
		return Result{}, err
	}

	response, err := p.composer.Compose(ctx, q.Question, matches)
	if err != nil {
		return Result{}, err
	}

	return Result{Response: response, Sources: sourcesOf(matches)}, nil
}

// sourcesOf collects the distinct source filenames backing a set of
// matches, preserving retrieval order.
func sourcesOf(matches []index.Match) []string {
	seen := make(map[string]struct{}, len(matches))
	var sources []string
	for _, m := range matches {
		name, ok := m.Metadata[chunk.KeySource].(string)
		if !ok || name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		sources = append(sources, name)
	}
	return sources
}

// AnswerStream runs the same flow but forwards answer fragments to fn
// as the model emits them.
func (p *Pipeline) AnswerStream(ctx context.Context, q Query, fn StreamFunc) error {
	if err := validateQuery(q); err != nil {
		return err
	}

	matches, err := p.retriever.Retrieve(ctx, q.Question, q.NotebookID, 0)
	if err != nil {
		return err
	}

	_, err = p.composer.ComposeStream(ctx, q.Question, matches, fn)
	return err
}

func validateQuery(q Query) error {
	if strings.TrimSpace(q.Question) == "" {
		return ErrEmptyQuestion
	}
	if strings.TrimSpace(q.NotebookID) == "" {
		return ErrEmptyNotebook
	}
	return nil
}
