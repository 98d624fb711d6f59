package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/folio-rag/folio/internal/app"
	"github.com/folio-rag/folio/internal/config"
	"github.com/folio-rag/folio/internal/rag"
)

var askNotebook string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question against a notebook",
	Long: `Retrieves the most relevant indexed passages from the notebook and
streams a grounded, cited answer to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askNotebook, "notebook", "", "notebook ID to query (required)")
	_ = askCmd.MarkFlagRequired("notebook")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
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

	question := strings.Join(args, " ")

	err = a.Pipeline.AnswerStream(cmd.Context(), rag.Query{
		Question:   question,
		NotebookID: askNotebook,
	}, func(_ context.Context, fragment string) error {
		_, werr := fmt.Fprint(os.Stdout, fragment)
		return werr
	})
	if err != nil {
		return fmt.Errorf("answering: %w", err)
	}

	fmt.Println()
	return nil
}
