package api

import (
	"errors"
	"io"
	"net/http"
	"os"

	"github.com/folio-rag/folio/internal/index"
	"github.com/folio-rag/folio/internal/rag"
)

// maxUploadSize bounds the multipart request body (PDFs plus form
// fields).
const maxUploadSize = 32 << 20 // 32 MiB

// uploadResponse is the success body for POST /upload.
type uploadResponse struct {
	Status   string `json:"status"`
	SourceID string `json:"sourceId"`
	Chunks   int    `json:"chunks"`
	Batches  int    `json:"batches"`
}

// uploadFailure is the error body for ingestion failures. It carries
// the partial report so callers can see how many batches landed before
// the failure.
type uploadFailure struct {
	Error           string `json:"error"`
	Message         string `json:"message"`
	Chunks          int    `json:"chunks"`
	BatchesUpserted int    `json:"batchesUpserted"`
	BatchesTotal    int    `json:"batchesTotal"`
}

// upload handles POST /upload: multipart form with `file`, `notebookId`
// and `sourceId`. The file is spooled to a temp file that is removed on
// every path before the ingestion pipeline runs.
func (h *handlers) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing_file", "multipart field 'file' is required")
		return
	}
	defer file.Close()

	notebookID := r.FormValue("notebookId")
	if notebookID == "" {
		writeError(w, http.StatusBadRequest, "missing_notebook", "form field 'notebookId' is required")
		return
	}
	sourceID := r.FormValue("sourceId")
	if sourceID == "" {
		writeError(w, http.StatusBadRequest, "missing_source", "form field 'sourceId' is required")
		return
	}

	tmp, err := os.CreateTemp("", "folio-upload-*.pdf")
	if err != nil {
		h.logger.Error("creating upload temp file", "error", err)
		writeError(w, http.StatusInternalServerError, "upload_failed", "failed to store upload")
		return
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, file)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		h.logger.Error("spooling upload", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "upload_failed", "failed to store upload")
		return
	}

	report, err := h.ingestor.Ingest(r.Context(), rag.Request{
		Path:       tmp.Name(),
		Filename:   header.Filename,
		SourceID:   sourceID,
		NotebookID: notebookID,
	})
	if err != nil {
		h.writeIngestError(w, report, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Status:   "ok",
		SourceID: sourceID,
		Chunks:   report.Chunks,
		Batches:  report.BatchesUpserted,
	})
}

// writeIngestError maps pipeline failures to HTTP statuses: request
// validation → 400, unreadable documents → 422, index failures → 500.
func (h *handlers) writeIngestError(w http.ResponseWriter, report rag.Report, err error) {
	var parseErr *rag.ParseError
	var opErr *index.OpError

	switch {
	case errors.Is(err, rag.ErrNotPDF):
		writeError(w, http.StatusBadRequest, "not_pdf", err.Error())
	case errors.Is(err, rag.ErrMissingSource),
		errors.Is(err, rag.ErrMissingNotebook):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.As(err, &parseErr):
		writeJSON(w, http.StatusUnprocessableEntity, uploadFailure{
			Error:           "parse_failed",
			Message:         parseErr.Error(),
			Chunks:          report.Chunks,
			BatchesUpserted: report.BatchesUpserted,
			BatchesTotal:    report.BatchesTotal,
		})
	case errors.As(err, &opErr):
		h.logger.Error("ingestion upsert failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, uploadFailure{
			Error:           "index_failed",
			Message:         opErr.Error(),
			Chunks:          report.Chunks,
			BatchesUpserted: report.BatchesUpserted,
			BatchesTotal:    report.BatchesTotal,
		})
	default:
		h.logger.Error("ingestion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "ingest_failed", "failed to ingest document")
	}
}
