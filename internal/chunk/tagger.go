package chunk

import "time"

// Metadata keys attached to every chunk. DeleteByFilter and retrieval
// scoping match on these exact keys.
const (
	KeySource     = "source"
	KeySourceID   = "sourceId"
	KeyNotebookID = "notebookId"
	KeyUploadDate = "uploadDate"
	KeyPage       = "page"
)

// Source identifies the uploaded document a chunk belongs to.
type Source struct {
	Filename   string
	SourceID   string
	NotebookID string
}

// Tagged pairs chunk text with its metadata, ready for embedding and
// upsert into the vector store.
type Tagged struct {
	Content  string
	Metadata map[string]any
}

// Tagger stamps chunks with source metadata and the upload time.
type Tagger struct {
	now func() time.Time
}

// TaggerOption configures a Tagger.
type TaggerOption func(*Tagger)

// WithClock overrides the time source, for deterministic tests.
func WithClock(now func() time.Time) TaggerOption {
	return func(t *Tagger) {
		t.now = now
	}
}

// NewTagger returns a Tagger using the wall clock unless overridden.
func NewTagger(opts ...TaggerOption) *Tagger {
	t := &Tagger{now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Tag attaches metadata to each chunk of a single page. All chunks of
// one call share the same upload timestamp, in RFC 3339 UTC. The input
// slice is not modified.
func (t *Tagger) Tag(chunks []string, src Source, page int) []Tagged {
	if len(chunks) == 0 {
		return nil
	}

	uploaded := t.now().UTC().Format(time.RFC3339)
	tagged := make([]Tagged, len(chunks))
	for i, content := range chunks {
		tagged[i] = Tagged{
			Content: content,
			Metadata: map[string]any{
				KeySource:     src.Filename,
				KeySourceID:   src.SourceID,
				KeyNotebookID: src.NotebookID,
				KeyUploadDate: uploaded,
				KeyPage:       page,
			},
		}
	}
	return tagged
}
