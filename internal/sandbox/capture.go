package sandbox

import (
	"strings"
	"sync"
)

const truncatedMarker = "\n... (output truncated)"

// Capture is a bounded in-memory output sink owned by one evaluation.
// Writes past the limit are dropped and never fail.
type Capture struct {
	mu        sync.Mutex
	buf       strings.Builder
	limit     int
	truncated bool
}

// NewCapture returns a capture keeping at most limit bytes.
func NewCapture(limit int) *Capture {
	return &Capture{limit: limit}
}

func (c *Capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	room := c.limit - c.buf.Len()
	switch {
	case room <= 0:
		c.truncated = c.truncated || len(p) > 0
	case len(p) > room:
		c.buf.Write(p[:room])
		c.truncated = true
	default:
		c.buf.Write(p)
	}
	return len(p), nil
}

// String returns the captured output, marked when it was cut short.
func (c *Capture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.truncated {
		return c.buf.String() + truncatedMarker
	}
	return c.buf.String()
}

// Truncated reports whether output was dropped.
func (c *Capture) Truncated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.truncated
}
