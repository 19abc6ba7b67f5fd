package transport

import (
	"context"
	"io"
)

// cancelOnClose releases a per-call timeout once the response body is done.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
