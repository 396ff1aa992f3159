package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs generates run ids "run-0001", "run-0002", ... so ledger
// contents are stable across test runs.
type SequentialIDs struct {
	mu sync.Mutex
	n  int
}

// NewID returns the next id.
func (g *SequentialIDs) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("run-%04d", g.n)
}
