package rag

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"

	"github.com/folio-rag/folio/internal/chunk"
	"github.com/folio-rag/folio/internal/index"
	"github.com/folio-rag/folio/internal/log"
	"github.com/folio-rag/folio/internal/pdf"
)

// Upserter is the slice of index.Store the ingestor needs.
type Upserter interface {
	Upsert(ctx context.Context, records []index.Record) (uuid.UUID, error)
}

// Request describes one document to ingest. Path points at a readable
// PDF on disk; the caller owns the file and releases it afterwards on
// every outcome.
type Request struct {
	Path       string
	Filename   string
	SourceID   string
	NotebookID string
}

// Report summarizes an ingest run. On failure it still reflects how
// many batches landed before the error; there is no rollback.
type Report struct {
	Chunks          int `json:"chunks"`
	BatchesUpserted int `json:"batchesUpserted"`
	BatchesTotal    int `json:"batchesTotal"`
}

// Extractor turns a file into ordered per-page text.
type Extractor func(path string) ([]pdf.Page, error)

// Ingestor runs the document pipeline: extract pages, split each page,
// tag, embed and upsert in input-ordered batches.
type Ingestor struct {
	splitter *chunk.Splitter
	tagger   *chunk.Tagger
	embedder ai.Embedder
	index    Upserter
	extract  Extractor
	logger   log.Logger
}

// IngestOption configures an Ingestor.
type IngestOption func(*Ingestor)

// WithExtractor overrides page extraction, e.g. for formats other
// than PDF.
func WithExtractor(fn Extractor) IngestOption {
	return func(i *Ingestor) {
		i.extract = fn
	}
}

// NewIngestor wires the pipeline stages together. Extraction defaults
// to pdf.Extract.
func NewIngestor(splitter *chunk.Splitter, tagger *chunk.Tagger, embedder ai.Embedder, idx Upserter, logger log.Logger, opts ...IngestOption) *Ingestor {
	if logger == nil {
		logger = log.NewNop()
	}
	ing := &Ingestor{
		splitter: splitter,
		tagger:   tagger,
		embedder: embedder,
		index:    idx,
		extract:  pdf.Extract,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Ingest processes one document. Batches are upserted strictly in
// input order; batch i+1 is only sent after batch i returns. The
// returned report is meaningful on both success and failure.
func (ing *Ingestor) Ingest(ctx context.Context, req Request) (Report, error) {
	if err := validateRequest(req); err != nil {
		return Report{}, err
	}

	pages, err := ing.extract(req.Path)
	if err != nil {
		return Report{}, &ParseError{Filename: req.Filename, Err: err}
	}

	src := chunk.Source{
		Filename:   req.Filename,
		SourceID:   req.SourceID,
		NotebookID: req.NotebookID,
	}

	var tagged []chunk.Tagged
	for _, page := range pages {
		pieces := ing.splitter.Split(page.Text)
		tagged = append(tagged, ing.tagger.Tag(pieces, src, page.Number)...)
	}

	report := Report{
		Chunks:       len(tagged),
		BatchesTotal: (len(tagged) + index.MaxBatchSize - 1) / index.MaxBatchSize,
	}
	if len(tagged) == 0 {
		ing.logger.Warn("document produced no chunks", "source_id", req.SourceID, "filename", req.Filename)
		return report, nil
	}

	for start := 0; start < len(tagged); start += index.MaxBatchSize {
		end := min(start+index.MaxBatchSize, len(tagged))

		records, err := ing.embedBatch(ctx, tagged[start:end])
		if err != nil {
			return report, fmt.Errorf("embed batch %d/%d: %w", report.BatchesUpserted+1, report.BatchesTotal, err)
		}

		batchID, err := ing.index.Upsert(ctx, records)
		if err != nil {
			return report, err
		}

		report.BatchesUpserted++
		ing.logger.Debug("upserted ingest batch",
			"source_id", req.SourceID,
			"batch_id", batchID,
			"batch", report.BatchesUpserted,
			"batches_total", report.BatchesTotal,
		)
	}

	ing.logger.Info("ingest completed",
		"source_id", req.SourceID,
		"notebook_id", req.NotebookID,
		"filename", req.Filename,
		"chunks", report.Chunks,
		"batches", report.BatchesUpserted,
	)
	return report, nil
}

// embedBatch embeds one batch of chunks in a single request, keeping
// record order aligned with chunk order.
func (ing *Ingestor) embedBatch(ctx context.Context, batch []chunk.Tagged) ([]index.Record, error) {
	input := make([]*ai.Document, len(batch))
	for i, tc := range batch {
		input[i] = ai.DocumentFromText(tc.Content, nil)
	}

	resp, err := ing.embedder.Embed(ctx, &ai.EmbedRequest{Input: input})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(batch) {
		return nil, fmt.Errorf("embedder returned %d embeddings for %d chunks", len(resp.Embeddings), len(batch))
	}

	records := make([]index.Record, len(batch))
	for i, tc := range batch {
		records[i] = index.Record{
			Content:   tc.Content,
			Embedding: resp.Embeddings[i].Embedding,
			Metadata:  tc.Metadata,
		}
	}
	return records, nil
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.SourceID) == "" {
		return ErrMissingSource
	}
	if strings.TrimSpace(req.NotebookID) == "" {
		return ErrMissingNotebook
	}
	if strings.ToLower(filepath.Ext(req.Filename)) != ".pdf" {
		return fmt.Errorf("%w: got %q", ErrNotPDF, req.Filename)
	}
	return nil
}
