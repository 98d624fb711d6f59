// Package api exposes document ingestion and question answering over
// HTTP.
//
// Endpoints:
//
//	GET    /                                  - service banner
//	POST   /upload                            - ingest a PDF (multipart form)
//	POST   /chat                              - blocking answer (JSON)
//	POST   /chat-stream                       - streaming answer (SSE)
//	DELETE /documents                         - wipe the whole index
//	DELETE /documents/notebooks/{notebookId}  - delete one notebook's chunks
//	DELETE /documents/sources/{sourceId}      - delete one document's chunks
//	GET    /health                            - liveness probe
//	GET    /ready                             - readiness probe (DB ping)
//
// Middleware order: Recovery → RequestID → Logging → CORS → RateLimit →
// Routes. Health probes sit outside the middleware stack so orchestrator
// checks are never rate limited.
//
// File structure:
//   - server.go: route registration, middleware assembly, server lifecycle
//   - middleware.go: recovery, request ID, logging, CORS
//   - ratelimit.go: per-IP token bucket
//   - upload.go: PDF ingestion endpoint
//   - chat.go: blocking and streaming chat endpoints
//   - documents.go: delete endpoints
//   - health.go: liveness and readiness probes
//   - response.go: JSON response helpers
package api
