package socks

import (
	"context"
	"net"

	"github.com/socks-go/socks/internal/ioctx"
)

type proxyVersion int

const (
	versionSocks4 proxyVersion = iota
	versionSocks5
)

// ProxyHandle wraps the TCP stream a CONNECT or completed BIND handshake
// produced. The embedded net.Conn makes it a transparent pass-through for
// ordinary reads and writes once the handshake is done.
type ProxyHandle struct {
	net.Conn
	bound TargetAddress
}

// BoundAddress returns the proxy-side address of the connection between
// the proxy and the target server, as reported in the final handshake
// reply.
func (h *ProxyHandle) BoundAddress() TargetAddress {
	return h.bound
}

// GetRef returns the underlying net.Conn without detaching it from the
// handle, mirroring the original client's get_ref()/get_mut() borrow.
func (h *ProxyHandle) GetRef() net.Conn {
	return h.Conn
}

// Unwrap consumes the handle and returns the underlying net.Conn, letting
// a caller take full ownership of the raw stream once the handshake is
// done, mirroring the original client's into_inner().
func (h *ProxyHandle) Unwrap() net.Conn {
	return h.Conn
}

// ProxyListener is the result of a BIND request: the proxy has opened a
// listening endpoint on the caller's behalf but not yet accepted a
// connection on it.
type ProxyListener struct {
	conn    net.Conn
	bound   TargetAddress
	version proxyVersion
}

// BoundAddress returns the proxy-side listening endpoint that must be
// forwarded to the remote peer before Accept is called. For SOCKS4, a
// reported IP of 0.0.0.0 is synthesised from the proxy's own peer address
// combined with the reported port, matching the reference client's
// behaviour when the proxy doesn't know its externally-visible address.
func (l *ProxyListener) BoundAddress() TargetAddress {
	if l.version != versionSocks4 || l.bound.IsDomain() {
		return l.bound
	}
	if !l.bound.IP.Equal(net.IPv4zero) {
		return l.bound
	}
	if tcp, ok := l.conn.RemoteAddr().(*net.TCPAddr); ok {
		return FromIP(tcp.IP, l.bound.Port)
	}
	return l.bound
}

// Accept waits for the remote peer to connect to the proxy-side listening
// endpoint and returns the resulting stream. BoundAddress should have
// already been forwarded to that peer. ctx governs only this wait, not
// the lifetime of the returned handle.
func (l *ProxyListener) Accept(ctx context.Context) (*ProxyHandle, error) {
	r := ioctx.NewReader(ctx, l.conn)
	var bound TargetAddress
	var err error
	switch l.version {
	case versionSocks4:
		bound, err = socks4ReadResponse(r)
	default:
		bound, err = decodeSocks5Reply(r)
	}
	if err != nil {
		return nil, err
	}
	return &ProxyHandle{Conn: l.conn, bound: bound}, nil
}
