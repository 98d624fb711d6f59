package chunk

import (
	"reflect"
	"testing"
	"time"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTagAttachesMetadata(t *testing.T) {
	uploaded := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	tagger := NewTagger(WithClock(fixedClock(uploaded)))

	src := Source{
		Filename:   "report.pdf",
		SourceID:   "src-1",
		NotebookID: "nb-1",
	}
	got := tagger.Tag([]string{"first chunk", "second chunk"}, src, 3)

	if len(got) != 2 {
		t.Fatalf("Tag() produced %d tagged chunks, want 2", len(got))
	}
	if got[0].Content != "first chunk" || got[1].Content != "second chunk" {
		t.Errorf("chunk content not preserved: %v", got)
	}

	wantMeta := map[string]any{
		KeySource:     "report.pdf",
		KeySourceID:   "src-1",
		KeyNotebookID: "nb-1",
		KeyUploadDate: "2025-03-14T09:26:53Z",
		KeyPage:       3,
	}
	for i, tc := range got {
		if !reflect.DeepEqual(tc.Metadata, wantMeta) {
			t.Errorf("chunk %d metadata = %v, want %v", i, tc.Metadata, wantMeta)
		}
	}
}

func TestTagEmptyInput(t *testing.T) {
	tagger := NewTagger()
	if got := tagger.Tag(nil, Source{}, 0); got != nil {
		t.Errorf("Tag(nil) = %v, want nil", got)
	}
}

func TestTagDeterministicWithFixedClock(t *testing.T) {
	tagger := NewTagger(WithClock(fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))))
	src := Source{Filename: "a.pdf", SourceID: "s", NotebookID: "n"}

	first := tagger.Tag([]string{"x"}, src, 1)
	second := tagger.Tag([]string{"x"}, src, 1)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Tag() not deterministic under fixed clock: %v vs %v", first, second)
	}
}

func TestTagNonUTCClockNormalized(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	tagger := NewTagger(WithClock(fixedClock(time.Date(2025, 6, 1, 20, 0, 0, 0, loc))))

	got := tagger.Tag([]string{"x"}, Source{}, 0)
	if got[0].Metadata[KeyUploadDate] != "2025-06-01T12:00:00Z" {
		t.Errorf("uploadDate = %v, want UTC-normalized timestamp", got[0].Metadata[KeyUploadDate])
	}
}
