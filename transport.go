package socks

import (
	"context"
	"net"
	"time"
)

// StreamDialer is the byte-stream contract the engines require of the
// transport (§6): connect to the first of a list of resolved endpoints
// and exchange a handshake over the result. The engines never resolve
// names themselves; any resolution happens inside the StreamDialer
// (DefaultStreamDialer leaves it to net.Dialer).
type StreamDialer interface {
	DialStream(ctx context.Context, endpoints []string, timeout time.Duration) (net.Conn, error)
}

// netStreamDialer is the default StreamDialer, backed by net.Dialer. It
// tries each endpoint in order and returns the first success, matching
// the original crate's ToSocketAddrs-driven connect loop.
type netStreamDialer struct{}

// DefaultStreamDialer is a ready-made StreamDialer backed by net.Dialer.
// Every engine entry point takes its dialer as an explicit argument;
// cmd/socksdial passes this one.
var DefaultStreamDialer StreamDialer = netStreamDialer{}

func (netStreamDialer) DialStream(ctx context.Context, endpoints []string, timeout time.Duration) (net.Conn, error) {
	if len(endpoints) == 0 {
		return nil, newError(ErrNoResolveSocketAddrs, "")
	}
	d := net.Dialer{Timeout: timeout}
	var lastErr error
	for _, ep := range endpoints {
		conn, err := d.DialContext(ctx, "tcp", ep)
		if err == nil {
			return conn, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// ScatterGatherSocket is the two-buffer scatter/gather datagram contract
// (§6, §9 "scatter/gather primitive"): exactly the vectored send/receive
// the UDP relay framing needs, with no intermediate concatenation
// required of the caller. internal/iovec supplies the unix
// writev(2)/readv(2)-backed implementation plus a portable fallback that
// concatenates into a scratch buffer; both satisfy this interface with
// identical semantics.
type ScatterGatherSocket interface {
	net.Conn
	WriteV(hdr, payload []byte) (int, error)
	ReadV(hdr, payload []byte) (int, error)
}

// PacketSocket is the datagram-socket contract the UDP framing component
// requires of the transport (§6): bind locally, connect to the relay's
// reported endpoint, then exchange framed datagrams through the
// scatter/gather primitive.
type PacketSocket interface {
	ScatterGatherSocket
	ConnectUDP(remote *net.UDPAddr) error
}
