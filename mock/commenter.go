package mock

import (
	"context"

	"github.com/fwojciec/newsmd"
)

var _ newsmd.Commenter = (*Commenter)(nil)

// Commenter is a mock implementation of newsmd.Commenter.
type Commenter struct {
	CommentFn func(ctx context.Context, body string) error
}

func (c *Commenter) Comment(ctx context.Context, body string) error {
	return c.CommentFn(ctx, body)
}
