package socks

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"time"

	"github.com/socks-go/socks/internal/ioctx"
)

const (
	socks4Version byte = 4
	socks4Connect byte = 1
	socks4Bind    byte = 2
)

// socks4aSentinel is the SOCKS4A domain-forwarding sentinel: any address with
// the first three octets zero and a non-zero fourth octet signals "the
// destination IP is unknown, read the domain that follows instead". The
// source preserves the literal 0.0.0.1 rather than a generic non-zero
// fourth octet (§9 open question).
var socks4aSentinel = net.IPv4(0, 0, 0, 1)

// socks4Request builds the variable-length SOCKS4/4A request frame:
//
//	VN=4 | CD | DSTPORT(2) | DSTIP(4) | USERID... | 0x00 [ | DOMAIN... | 0x00 ]
func socks4Request(cmd byte, target TargetAddress, userid string) ([]byte, error) {
	if target.IsDomain() {
		buf := make([]byte, 0, 9+len(userid)+len(target.Domain)+1)
		buf = append(buf, socks4Version, cmd)
		buf = appendPort(buf, target.Port)
		buf = append(buf, socks4aSentinel.To4()...)
		buf = append(buf, userid...)
		buf = append(buf, 0)
		buf = append(buf, target.Domain...)
		buf = append(buf, 0)
		return buf, nil
	}

	ip4 := target.IP.To4()
	if ip4 == nil {
		return nil, newError(ErrSocks4NoIPv6, target.String())
	}
	buf := make([]byte, 0, 9+len(userid))
	buf = append(buf, socks4Version, cmd)
	buf = appendPort(buf, target.Port)
	buf = append(buf, ip4...)
	buf = append(buf, userid...)
	buf = append(buf, 0)
	return buf, nil
}

func appendPort(buf []byte, port uint16) []byte {
	var p [2]byte
	binary.BigEndian.PutUint16(p[:], port)
	return append(buf, p[:]...)
}

// socks4ReadResponse reads the fixed 8-byte reply and classifies CD.
func socks4ReadResponse(r io.Reader) (TargetAddress, error) {
	var resp [8]byte
	if _, err := io.ReadFull(r, resp[:]); err != nil {
		return TargetAddress{}, err
	}

	if resp[0] != 0 {
		return TargetAddress{}, newCodeError(ErrInvalidResponseVersion, resp[0], "")
	}

	switch resp[1] {
	case 90: // granted
	case 91:
		return TargetAddress{}, newCodeError(ErrConnectionRefused, resp[1], "request rejected or failed")
	case 92:
		return TargetAddress{}, newCodeError(ErrRejectedRequestID, resp[1], "identd unreachable")
	case 93:
		return TargetAddress{}, newCodeError(ErrRejectedRequestID, resp[1], "identd user mismatch")
	default:
		return TargetAddress{}, newCodeError(ErrUnknownResponseCode, resp[1], "")
	}

	port := binary.BigEndian.Uint16(resp[2:4])
	ip := net.IP(append([]byte(nil), resp[4:8]...))
	return FromIP(ip, port), nil
}

func socks4ConnectRaw(ctx context.Context, dialer StreamDialer, proxyEndpoints []string, target ToTargetAddresser, userid string, cmd byte, timeout time.Duration) (net.Conn, TargetAddress, error) {
	addr, err := target.ToTargetAddress()
	if err != nil {
		return nil, TargetAddress{}, err
	}

	conn, err := dialer.DialStream(ctx, proxyEndpoints, timeout)
	if err != nil {
		return nil, TargetAddress{}, err
	}

	req, err := socks4Request(cmd, addr, userid)
	if err != nil {
		conn.Close()
		return nil, TargetAddress{}, err
	}
	if _, err := conn.Write(req); err != nil {
		conn.Close()
		return nil, TargetAddress{}, err
	}

	bound, err := socks4ReadResponse(ioctx.NewReader(ctx, conn))
	if err != nil {
		conn.Close()
		return nil, TargetAddress{}, err
	}
	return conn, bound, nil
}

// Socks4Connect connects to target through a SOCKS4 proxy, performing the
// CONNECT handshake. If target is a Domain, the name is forwarded via the
// SOCKS4A extension; if the proxy doesn't support SOCKS4A, resolve the
// name locally and pass an Ip TargetAddress instead.
func Socks4Connect(ctx context.Context, dialer StreamDialer, proxyEndpoints []string, target ToTargetAddresser, userid string, timeout time.Duration) (*ProxyHandle, error) {
	conn, bound, err := socks4ConnectRaw(ctx, dialer, proxyEndpoints, target, userid, socks4Connect, timeout)
	if err != nil {
		return nil, err
	}
	return &ProxyHandle{Conn: conn, bound: bound}, nil
}

// Socks4Bind issues a SOCKS4 BIND request. The proxy filters incoming
// connections based on target. Call Accept on the result once the
// proxy-side endpoint (ProxyListener.BoundAddress) has been forwarded to
// the remote peer that will connect to it.
func Socks4Bind(ctx context.Context, dialer StreamDialer, proxyEndpoints []string, target ToTargetAddresser, userid string, timeout time.Duration) (*ProxyListener, error) {
	conn, bound, err := socks4ConnectRaw(ctx, dialer, proxyEndpoints, target, userid, socks4Bind, timeout)
	if err != nil {
		return nil, err
	}
	return &ProxyListener{conn: conn, bound: bound, version: versionSocks4}, nil
}
