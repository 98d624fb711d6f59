package testutil

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
)

func TestMockLLMPatternMatching(t *testing.T) {
	g := genkit.Init(context.Background())
	llm := NewMockLLM("fallback answer")
	llm.AddResponse("quantum", "answer about quantum")
	llm.AddResponse("banana", "answer about fruit")
	llm.RegisterModel(g)

	tests := []struct {
		prompt string
		want   string
	}{
		{"tell me about QUANTUM computing", "answer about quantum"},
		{"is a banana a berry", "answer about fruit"},
		{"unrelated question", "fallback answer"},
	}

	for _, tt := range tests {
		resp, err := genkit.Generate(context.Background(), g,
			ai.WithModelName(ModelName),
			ai.WithPrompt(tt.prompt),
		)
		if err != nil {
			t.Fatalf("Generate(%q): %v", tt.prompt, err)
		}
		if got := resp.Text(); got != tt.want {
			t.Errorf("Generate(%q) = %q, want %q", tt.prompt, got, tt.want)
		}
	}

	calls := llm.Calls()
	if len(calls) != 3 {
		t.Errorf("recorded %d calls, want 3", len(calls))
	}
}

func TestMockLLMStreamsFragments(t *testing.T) {
	g := genkit.Init(context.Background())
	llm := NewMockLLM("several words in this answer")
	llm.RegisterModel(g)

	var fragments []string
	_, err := genkit.Generate(context.Background(), g,
		ai.WithModelName(ModelName),
		ai.WithPrompt("anything"),
		ai.WithStreaming(func(_ context.Context, chunk *ai.ModelResponseChunk) error {
			fragments = append(fragments, chunk.Text())
			return nil
		}),
	)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(fragments) < 2 {
		t.Errorf("got %d fragments, want several", len(fragments))
	}

	var joined string
	for _, f := range fragments {
		joined += f
	}
	if joined != "several words in this answer" {
		t.Errorf("joined fragments = %q", joined)
	}
}

func TestMockLLMStreamCallbackErrorAborts(t *testing.T) {
	g := genkit.Init(context.Background())
	llm := NewMockLLM("one two three four five")
	llm.RegisterModel(g)

	boom := errors.New("client gone")
	count := 0
	_, err := genkit.Generate(context.Background(), g,
		ai.WithModelName(ModelName),
		ai.WithPrompt("anything"),
		ai.WithStreaming(func(_ context.Context, _ *ai.ModelResponseChunk) error {
			count++
			if count == 2 {
				return boom
			}
			return nil
		}),
	)
	if err == nil {
		t.Fatal("Generate() = nil error, want abort")
	}
	if count != 2 {
		t.Errorf("callback ran %d times, want 2", count)
	}
}

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(8)
	a := e.vectorFor("same content")
	b := e.vectorFor("same content")
	c := e.vectorFor("different content")

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same content produced different vectors at %d", i)
		}
	}

	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different content produced identical vectors")
	}

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("vector norm = %f, want 1", norm)
	}
}

func TestMockEmbedderExplicitVector(t *testing.T) {
	g := genkit.Init(context.Background())
	e := NewMockEmbedder(3)
	e.SetVector("pinned", []float32{1, 0, 0})
	embedder := e.RegisterEmbedder(g)

	resp, err := embedder.Embed(context.Background(), &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText("pinned", nil)},
	})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	got := resp.Embeddings[0].Embedding
	if got[0] != 1 || got[1] != 0 || got[2] != 0 {
		t.Errorf("Embed(pinned) = %v, want [1 0 0]", got)
	}
}
