package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/folio-rag/folio/internal/app"
	"github.com/folio-rag/folio/internal/config"
	"github.com/folio-rag/folio/internal/rag"
)

var (
	ingestNotebook string
	ingestSource   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file.pdf]",
	Short: "Index a PDF into a notebook",
	Long: `Extracts, chunks, embeds, and indexes a PDF so it can be queried
with 'folio ask' or the HTTP API. The source ID identifies the document
for later deletion; one is generated when not provided.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestNotebook, "notebook", "", "notebook ID to index into (required)")
	ingestCmd.Flags().StringVar(&ingestSource, "source", "", "source ID for the document (default: generated)")
	_ = ingestCmd.MarkFlagRequired("notebook")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	a, err := app.Setup(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	sourceID := ingestSource
	if sourceID == "" {
		sourceID = uuid.New().String()
	}

	path := args[0]
	report, err := a.Ingestor.Ingest(cmd.Context(), rag.Request{
		Path:       path,
		Filename:   filepath.Base(path),
		SourceID:   sourceID,
		NotebookID: ingestNotebook,
	})
	if err != nil {
		if report.BatchesUpserted > 0 {
			fmt.Printf("partial ingest: %d/%d batches landed before the failure\n",
				report.BatchesUpserted, report.BatchesTotal)
		}
		return fmt.Errorf("ingesting %s: %w", path, err)
	}

	fmt.Printf("indexed %s\n", path)
	fmt.Printf("  notebook: %s\n", ingestNotebook)
	fmt.Printf("  source:   %s\n", sourceID)
	fmt.Printf("  chunks:   %d (%d batches)\n", report.Chunks, report.BatchesUpserted)
	return nil
}
