package testutil

import (
	"bufio"
	"strings"
	"testing"
)

// ParseSSEData parses a data-only Server-Sent Events stream into its
// fragments, one per `data: <fragment>` frame.
//
// Handles the framing rules that matter for this stream shape:
//   - every frame is terminated by an empty line
//   - comment lines starting with ":" are ignored
//   - "event:" lines are rejected; this stream is data-only
func ParseSSEData(t *testing.T, body string) []string {
	t.Helper()

	var fragments []string
	var pending []string
	open := false

	scanner := bufio.NewScanner(strings.NewReader(body))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "data: "):
			pending = append(pending, strings.TrimPrefix(line, "data: "))
			open = true

		case line == "data:" || line == "data: ":
			pending = append(pending, "")
			open = true

		case line == "":
			if open {
				// Multi-line data joins with \n per the SSE spec.
				fragments = append(fragments, strings.Join(pending, "\n"))
				pending = nil
				open = false
			}

		case strings.HasPrefix(line, ":"):
			// comment, ignore

		default:
			t.Fatalf("SSE parse error at line %d: unexpected line %q in data-only stream", lineNum, line)
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("SSE scan error: %v", err)
	}
	if open {
		t.Fatalf("SSE stream ended mid-frame (missing terminating empty line)")
	}

	return fragments
}
