// Package serial hands out strictly increasing nanosecond stamps, even when the
// wall clock stalls or steps backwards.
package serial

import (
	"sync"
	"time"
)

type Generator struct {
	now  func() time.Time
	mu   sync.Mutex
	last int64
}

func New(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Next returns a stamp greater than every stamp returned before it.
func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.now().UnixNano()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return n
}

var defaultGenerator = New(nil)

// Next draws from the process-wide generator.
func Next() int64 {
	return defaultGenerator.Next()
}
