package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/folio-rag/folio/internal/index"
	"github.com/folio-rag/folio/internal/rag"
)

// maxChatBody bounds chat request bodies.
const maxChatBody = 1 << 20 // 1 MiB

// chatRequest is the body of POST /chat. The last user message is the
// question; earlier messages ride along as history.
type chatRequest struct {
	Messages   []rag.Message `json:"messages"`
	NotebookID string        `json:"notebookId"`
}

// streamRequest is the body of POST /chat-stream.
type streamRequest struct {
	Message    string `json:"message"`
	NotebookID string `json:"notebookId"`
}

// chat handles the blocking chat endpoint. Responds 200 with
// {response, sources}.
func (h *handlers) chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBody)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	question, history, ok := splitQuestion(req.Messages)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing_question", "messages must contain a user message")
		return
	}

	res, err := h.answerer.Answer(r.Context(), rag.Query{
		Question:   question,
		NotebookID: req.NotebookID,
		History:    history,
	})
	if err != nil {
		h.writeChatError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// chatStream handles the streaming chat endpoint. The response is
// text/event-stream with one data frame per answer fragment. SSE
// headers are only committed once the first fragment arrives, so
// failures before generation still produce a proper JSON status. A
// failure mid-stream closes the stream without a malformed frame.
func (h *handlers) chatStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming not supported")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxChatBody)

	var req streamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	started := false
	err := h.answerer.AnswerStream(r.Context(), rag.Query{
		Question:   req.Message,
		NotebookID: req.NotebookID,
	}, func(_ context.Context, fragment string) error {
		if !started {
			startEventStream(w)
			started = true
		}
		if err := writeFragment(w, fragment); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})

	switch {
	case err == nil && !started:
		// Model produced no fragments. Still a valid, empty stream.
		startEventStream(w)
	case err != nil && !started:
		h.writeChatError(w, err)
	case err != nil:
		// Headers are out; all we can do is close the stream cleanly.
		h.logger.Error("chat stream failed mid-flight", "error", err)
	}
}

// startEventStream commits the SSE response headers.
func startEventStream(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
}

// writeFragment writes one SSE data frame. Newlines inside a fragment
// become continuation data lines so the frame stays well formed.
func writeFragment(w io.Writer, fragment string) error {
	var b strings.Builder
	for _, line := range strings.Split(fragment, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	return nil
}

// writeChatError maps pipeline failures to HTTP statuses.
func (h *handlers) writeChatError(w http.ResponseWriter, err error) {
	var opErr *index.OpError

	switch {
	case errors.Is(err, rag.ErrEmptyQuestion),
		errors.Is(err, rag.ErrEmptyNotebook):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.As(err, &opErr):
		h.logger.Error("retrieval failed", "error", err)
		writeError(w, http.StatusInternalServerError, "index_failed", opErr.Error())
	default:
		h.logger.Error("answering failed", "error", err)
		writeError(w, http.StatusInternalServerError, "chat_failed", "failed to answer question")
	}
}

// splitQuestion returns the last user message as the question and
// everything before it as history.
func splitQuestion(messages []rag.Message) (string, []rag.Message, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content, messages[:i], true
		}
	}
	return "", nil, false
}
