// Package app provides application initialization and dependency
// wiring.
//
// App is the container that assembles the whole stack: configuration,
// tracing, the database pool and migrations, Genkit with the configured
// AI provider, the vector index, and the ingestion and query pipelines.
// Setup builds it; Close releases everything in reverse order.
package app

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/folio-rag/folio/internal/config"
	"github.com/folio-rag/folio/internal/index"
	"github.com/folio-rag/folio/internal/log"
	"github.com/folio-rag/folio/internal/rag"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	// Core services
	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool
	Index    *index.Store

	// Pipelines
	Ingestor *rag.Ingestor
	Pipeline *rag.Pipeline

	// Cleanup hooks, run in reverse order by Close.
	otelCleanup func()
	dbCleanup   func()
}

// Close gracefully shuts down all resources. Safe to call on a
// partially constructed App.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Info("shutting down application")
	}

	if a.dbCleanup != nil {
		a.dbCleanup()
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
	}

	return nil
}
