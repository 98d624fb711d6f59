// Package rag implements the retrieval-augmented answering pipelines:
// ingestion (PDF -> pages -> chunks -> embeddings -> vector store) and
// querying (retrieve -> compose -> generate), both notebook-scoped.
//
// The package depends on small consumer-side interfaces over the index
// store and on genkit for embedding and generation, so every stage can
// be exercised in tests with fakes.
package rag
