package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/firebase/genkit/go/genkit"

	"github.com/folio-rag/folio/internal/index"
	"github.com/folio-rag/folio/internal/testutil"
)

func match(content, filename string, page any) index.Match {
	meta := map[string]any{"source": filename}
	if page != nil {
		meta["page"] = page
	}
	return index.Match{Content: content, Metadata: meta}
}

func TestFormatContext(t *testing.T) {
	tests := []struct {
		name    string
		matches []index.Match
		want    string
	}{
		{
			name:    "empty yields no-context marker",
			matches: nil,
			want:    noContextMarker,
		},
		{
			name:    "single chunk with page",
			matches: []index.Match{match("The sky is blue.", "sky.pdf", 4)},
			want:    "The sky is blue.\n[Source: sky.pdf, Page 4]",
		},
		{
			name: "jsonb float page and missing page",
			matches: []index.Match{
				match("First fact.", "a.pdf", float64(2)),
				match("Second fact.", "b.pdf", nil),
			},
			want: "First fact.\n[Source: a.pdf, Page 2]\n\nSecond fact.\n[Source: b.pdf]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatContext(tt.matches); got != tt.want {
				t.Errorf("FormatContext() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComposeGroundsPromptInContext(t *testing.T) {
	g := genkit.Init(context.Background())
	llm := testutil.NewMockLLM("the grounded answer")
	llm.RegisterModel(g)

	composer := NewComposer(g, testutil.ModelName, nil)
	matches := []index.Match{match("Paris is the capital of France.", "europe.pdf", 12)}

	answer, err := composer.Compose(context.Background(), "What is the capital of France?", matches)
	if err != nil {
		t.Fatalf("Compose() = %v, want nil", err)
	}
	if answer != "the grounded answer" {
		t.Errorf("Compose() = %q", answer)
	}

	calls := llm.Calls()
	if len(calls) != 1 {
		t.Fatalf("model called %d times, want 1", len(calls))
	}
	call := calls[0]
	if !strings.Contains(call.UserMessage, "Paris is the capital of France.") {
		t.Error("user prompt missing chunk text")
	}
	if !strings.Contains(call.UserMessage, "[Source: europe.pdf, Page 12]") {
		t.Error("user prompt missing source annotation")
	}
	if !strings.Contains(call.UserMessage, "What is the capital of France?") {
		t.Error("user prompt missing the question")
	}
	if !strings.Contains(call.System, "only from the context") {
		t.Errorf("system prompt missing grounding rule: %q", call.System)
	}
	if !call.HasConfig || call.Temperature != 0 {
		t.Errorf("generation config = %+v, want temperature 0", call)
	}
}

// An empty retrieval still reaches the model: the refusal wording is
// model-owned, not short-circuited locally.
func TestComposeEmptyContextStillCallsModel(t *testing.T) {
	g := genkit.Init(context.Background())
	llm := testutil.NewMockLLM("I could not find that in your notebook.")
	llm.RegisterModel(g)

	composer := NewComposer(g, testutil.ModelName, nil)

	answer, err := composer.Compose(context.Background(), "What is X?", nil)
	if err != nil {
		t.Fatalf("Compose() = %v, want nil", err)
	}
	if answer != "I could not find that in your notebook." {
		t.Errorf("Compose() = %q", answer)
	}

	calls := llm.Calls()
	if len(calls) != 1 {
		t.Fatalf("model called %d times, want 1", len(calls))
	}
	if !strings.Contains(calls[0].UserMessage, noContextMarker) {
		t.Error("empty-context prompt missing the no-context marker")
	}
}

func TestComposeStreamForwardsFragments(t *testing.T) {
	g := genkit.Init(context.Background())
	llm := testutil.NewMockLLM("a streamed answer with fragments")
	llm.RegisterModel(g)

	composer := NewComposer(g, testutil.ModelName, nil)

	var fragments []string
	full, err := composer.ComposeStream(context.Background(), "question", nil,
		func(_ context.Context, fragment string) error {
			fragments = append(fragments, fragment)
			return nil
		})
	if err != nil {
		t.Fatalf("ComposeStream() = %v, want nil", err)
	}
	if len(fragments) < 2 {
		t.Errorf("received %d fragments, want several", len(fragments))
	}
	if joined := strings.Join(fragments, ""); joined != full {
		t.Errorf("fragments join to %q, full answer %q", joined, full)
	}
}

func TestComposeStreamCallbackErrorAborts(t *testing.T) {
	g := genkit.Init(context.Background())
	llm := testutil.NewMockLLM("one two three four five six")
	llm.RegisterModel(g)

	composer := NewComposer(g, testutil.ModelName, nil)

	disconnect := errors.New("client disconnected")
	seen := 0
	_, err := composer.ComposeStream(context.Background(), "question", nil,
		func(_ context.Context, _ string) error {
			seen++
			if seen == 2 {
				return disconnect
			}
			return nil
		})
	if err == nil {
		t.Fatal("ComposeStream() = nil error, want abort")
	}
	if seen != 2 {
		t.Errorf("callback ran %d times after disconnect, want 2", seen)
	}
}
