// Package ioctx adapts a net.Conn's blocking Read to context cancellation,
// the way core/net/utils.ReadWithContext does for the encrypted protocol
// handshake: a read runs on its own goroutine while the caller races it
// against ctx.Done. The read goroutine is left to finish on its own after
// a cancellation; net.Conn.Read only returns once data, EOF, or the
// conn's own deadline fires, so callers that need prompt cancellation
// should also arm a deadline via SetReadDeadline.
package ioctx

import (
	"context"
	"net"
)

// Reader adapts a net.Conn to context-cancellable reads.
type Reader struct {
	ctx  context.Context
	conn net.Conn
}

// NewReader wraps conn so that each Read call returns ctx.Err() as soon as
// ctx is done, even while the underlying Read is still blocked.
func NewReader(ctx context.Context, conn net.Conn) *Reader {
	return &Reader{ctx: ctx, conn: conn}
}

func (r *Reader) Read(p []byte) (int, error) {
	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	go func() {
		n, err := r.conn.Read(p)
		ch <- result{n, err}
	}()

	select {
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	case res := <-ch:
		return res.n, res.err
	}
}
