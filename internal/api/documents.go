package api

import (
	"net/http"

	"github.com/folio-rag/folio/internal/chunk"
	"github.com/folio-rag/folio/internal/index"
)

// deleteResponse is the body of every successful delete.
type deleteResponse struct {
	Deleted int64 `json:"deleted"`
}

// deleteAllDocuments wipes the entire index. Deliberately a separate
// code path from the filtered deletes so a bug can never widen a scoped
// delete into a full wipe.
func (h *handlers) deleteAllDocuments(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.deleter.DeleteAll(r.Context())
	if err != nil {
		h.logger.Error("deleting all documents", "error", err)
		writeError(w, http.StatusInternalServerError, "delete_failed", "failed to delete documents")
		return
	}

	h.logger.Info("deleted all documents", "chunks", deleted)
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}

// deleteNotebook removes every chunk belonging to one notebook.
func (h *handlers) deleteNotebook(w http.ResponseWriter, r *http.Request) {
	h.deleteByFilter(w, r, index.Filter{
		chunk.KeyNotebookID: r.PathValue("notebookId"),
	})
}

// deleteSource removes every chunk extracted from one document.
func (h *handlers) deleteSource(w http.ResponseWriter, r *http.Request) {
	h.deleteByFilter(w, r, index.Filter{
		chunk.KeySourceID: r.PathValue("sourceId"),
	})
}

func (h *handlers) deleteByFilter(w http.ResponseWriter, r *http.Request, filter index.Filter) {
	deleted, err := h.deleter.DeleteByFilter(r.Context(), filter)
	if err != nil {
		h.logger.Error("deleting documents", "error", err, "filter", filter)
		writeError(w, http.StatusInternalServerError, "delete_failed", "failed to delete documents")
		return
	}

	h.logger.Info("deleted documents", "filter", filter, "chunks", deleted)
	writeJSON(w, http.StatusOK, deleteResponse{Deleted: deleted})
}
