// Package chunk splits extracted document text into overlapping chunks
// and tags them with the metadata the vector store filters on.
package chunk

import (
	"errors"
	"fmt"
	"unicode"
)

// ErrInvalidConfig indicates an unusable size/overlap combination.
var ErrInvalidConfig = errors.New("invalid chunking configuration")

// Splitter cuts text into chunks of at most size runes, with each chunk
// repeating the last overlap runes of its predecessor. Cut points prefer
// natural boundaries (paragraph break, newline, sentence end, word gap)
// over mid-word cuts.
type Splitter struct {
	size    int
	overlap int
}

// NewSplitter validates the configuration. overlap must be smaller than
// size or the splitter could never advance.
func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrInvalidConfig, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidConfig, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than size %d", ErrInvalidConfig, overlap, size)
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

// Split returns the chunks of text in document order. Empty input yields
// no chunks. Chunks are contiguous: dropping the first overlap runes of
// every chunk after the first reconstructs the input exactly.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	start := 0
	for {
		end := start + s.size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			return chunks
		}
		cut := s.cut(runes, start, end)
		chunks = append(chunks, string(runes[start:cut]))
		start = cut - s.overlap
	}
}

// cut picks the end of the chunk starting at start. It scans back from
// end for the latest boundary that still leaves more than overlap runes
// in the chunk, so the next start always moves forward. Boundary tiers
// are tried in order of preference; a hard cut at end is the fallback.
func (s *Splitter) cut(runes []rune, start, end int) int {
	floor := start + s.overlap // cut must land strictly past this

	boundaries := []func(i int) bool{
		func(i int) bool { // paragraph break
			return i >= 2 && runes[i-1] == '\n' && runes[i-2] == '\n'
		},
		func(i int) bool { // line break
			return runes[i-1] == '\n'
		},
		func(i int) bool { // sentence end followed by whitespace
			return i >= 2 && unicode.IsSpace(runes[i-1]) && isSentenceEnd(runes[i-2])
		},
		func(i int) bool { // word gap
			return unicode.IsSpace(runes[i-1])
		},
	}

	for _, isBoundary := range boundaries {
		for i := end; i > floor; i-- {
			if isBoundary(i) {
				return i
			}
		}
	}
	return end
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?':
		return true
	}
	return false
}
