package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"

	"github.com/folio-rag/folio/internal/log"
)

// EmbedderSetup bundles the resources integration tests need to embed
// with the real Gemini API.
type EmbedderSetup struct {
	Embedder ai.Embedder
	Genkit   *genkit.Genkit
	Logger   log.Logger
}

// SetupEmbedder initializes genkit with the Google AI plugin and
// returns the production embedder. Skips the test when GEMINI_API_KEY
// is not set, so the suite stays runnable offline.
func SetupEmbedder(t *testing.T, ctx context.Context) *EmbedderSetup {
	t.Helper()

	if os.Getenv("GEMINI_API_KEY") == "" {
		t.Skip("GEMINI_API_KEY not set - skipping integration test")
	}

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	embedder := googlegenai.GoogleAIEmbedder(g, "gemini-embedding-001")
	if embedder == nil {
		t.Fatal("failed to create Google AI embedder")
	}

	return &EmbedderSetup{
		Embedder: embedder,
		Genkit:   g,
		Logger:   log.NewNop(),
	}
}
