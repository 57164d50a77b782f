package yahoo

import (
	"context"
	"sync/atomic"
)

// RequestCounter counts the upstream requests issued under one context, so
// each metric can report its own call count.
type RequestCounter struct {
	n atomic.Int64
}

func (c *RequestCounter) Count() int64 {
	if c == nil {
		return 0
	}
	return c.n.Load()
}

type counterKey struct{}

// WithRequestCounter returns a child context whose upstream requests are
// tallied on the returned counter.
func WithRequestCounter(ctx context.Context) (context.Context, *RequestCounter) {
	c := &RequestCounter{}
	return context.WithValue(ctx, counterKey{}, c), c
}

func countRequest(ctx context.Context) {
	if c, ok := ctx.Value(counterKey{}).(*RequestCounter); ok {
		c.n.Add(1)
	}
}
