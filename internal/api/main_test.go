package api

import (
	"testing"

	"go.uber.org/goleak"
)

// Handlers must not leak goroutines: streams end with the request, and
// the rate limiter sweeps inline rather than in the background.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
