package socks

import (
	"context"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/socks-go/socks/internal/ioctx"
)

const (
	socks5Version byte = 5

	socks5Connect      byte = 1
	socks5Bind         byte = 2
	socks5UDPAssociate byte = 3

	authNone     byte = 0
	authPassword byte = 2
	authNoMethod byte = 0xff
)

// socks5MaxAddrLen is the largest a request's ATYP+payload+port field can
// be, matching the original client's MAX_ADDR_LEN. It differs from
// addr.go's maxAddrLen (259 vs 260) only because this constant was kept
// at the reference value for the request-buffer sizing it historically
// served; both bound the same field shape.
const socks5MaxAddrLen = 260

// PasswordCredentials selects RFC 1929 username/password sub-negotiation
// during the SOCKS5 method handshake. Leave the zero value to request no
// authentication.
type PasswordCredentials struct {
	Username string
	Password string
}

func (c PasswordCredentials) isSet() bool {
	return c.Username != "" || c.Password != ""
}

func (c PasswordCredentials) methodID() byte {
	if c.isSet() {
		return authPassword
	}
	return authNone
}

// socks5Handshake negotiates the authentication method and, if password
// credentials were supplied and accepted, runs the RFC 1929
// sub-negotiation. The selected-method policy is permissive (§9 open
// question 2): any method byte equal to the one offered, or NoAuth, is
// accepted, rather than requiring an exact match against what was sent.
func socks5Handshake(ctx context.Context, conn net.Conn, creds PasswordCredentials) error {
	method := creds.methodID()
	packet := []byte{socks5Version, 1, authNone}
	if creds.isSet() {
		packet = []byte{socks5Version, 2, authPassword, authNone}
	}
	if _, err := conn.Write(packet); err != nil {
		return err
	}

	var resp [2]byte
	if _, err := io.ReadFull(ioctx.NewReader(ctx, conn), resp[:]); err != nil {
		return err
	}
	version, selected := resp[0], resp[1]

	if version != socks5Version {
		return newCodeError(ErrInvalidResponseVersion, version, "")
	}
	if selected == authNoMethod {
		return newCodeError(ErrNoAuthMethods, selected, "")
	}
	if selected != method && selected != authNone {
		return newCodeError(ErrUnknownAuthMethod, selected, "")
	}

	if creds.isSet() && selected == authPassword {
		return socks5PasswordAuth(ctx, conn, creds.Username, creds.Password)
	}
	return nil
}

func socks5PasswordAuth(ctx context.Context, conn net.Conn, username, password string) error {
	if len(username) == 0 || len(username) > 255 {
		return newError(ErrInvalidUsername, fmt.Sprintf("length=%d", len(username)))
	}
	if len(password) == 0 || len(password) > 255 {
		return newError(ErrInvalidPassword, fmt.Sprintf("length=%d", len(password)))
	}

	packet := make([]byte, 0, 3+len(username)+len(password))
	packet = append(packet, 1, byte(len(username)))
	packet = append(packet, username...)
	packet = append(packet, byte(len(password)))
	packet = append(packet, password...)
	if _, err := conn.Write(packet); err != nil {
		return err
	}

	var resp [2]byte
	if _, err := io.ReadFull(ioctx.NewReader(ctx, conn), resp[:]); err != nil {
		return err
	}
	if resp[0] != 1 {
		return newCodeError(ErrInvalidResponseVersion, resp[0], "")
	}
	if resp[1] != 0 {
		return newError(ErrFailedPasswordAuth, "")
	}
	return nil
}

// socks5Request writes VER|CMD|RSV|ATYP+ADDR+PORT.
func socks5Request(conn net.Conn, cmd byte, target TargetAddress) error {
	buf := make([]byte, 3+socks5MaxAddrLen)
	buf[0] = socks5Version
	buf[1] = cmd
	buf[2] = 0
	n, err := encodeAddr(buf[3:], target)
	if err != nil {
		return err
	}
	_, err = conn.Write(buf[:3+n])
	return err
}

// decodeSocks5Reply reads VER|REP|RSV|ATYP+ADDR+PORT and classifies REP.
func decodeSocks5Reply(r io.Reader) (TargetAddress, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return TargetAddress{}, err
	}

	if hdr[0] != socks5Version {
		return TargetAddress{}, newCodeError(ErrInvalidResponseVersion, hdr[0], "")
	}

	switch hdr[1] {
	case 0: // succeeded
	case 1:
		return TargetAddress{}, newCodeError(ErrUnknownServerFailure, hdr[1], "general SOCKS server failure")
	case 2:
		return TargetAddress{}, newError(ErrServerRefusedByRuleSet, "")
	case 3:
		return TargetAddress{}, newError(ErrServerNetworkUnreachable, "")
	case 4:
		return TargetAddress{}, newError(ErrServerHostUnreachable, "")
	case 5:
		return TargetAddress{}, newCodeError(ErrConnectionRefused, hdr[1], "")
	case 6:
		return TargetAddress{}, newError(ErrServerTTLExpired, "")
	case 7:
		return TargetAddress{}, newError(ErrServerCmdNotSupported, "")
	case 8:
		return TargetAddress{}, newError(ErrServerAddressNotSupported, "")
	default:
		return TargetAddress{}, newCodeError(ErrUnknownServerFailure, hdr[1], "")
	}

	if hdr[2] != 0 {
		return TargetAddress{}, newCodeError(ErrInvalidReservedByte, hdr[2], "")
	}

	return decodeAddr(r)
}

func socks5ConnectRaw(ctx context.Context, dialer StreamDialer, proxyEndpoints []string, target ToTargetAddresser, creds PasswordCredentials, cmd byte, timeout time.Duration) (net.Conn, TargetAddress, error) {
	addr, err := target.ToTargetAddress()
	if err != nil {
		return nil, TargetAddress{}, err
	}

	conn, err := dialer.DialStream(ctx, proxyEndpoints, timeout)
	if err != nil {
		return nil, TargetAddress{}, err
	}

	if err := socks5Handshake(ctx, conn, creds); err != nil {
		conn.Close()
		return nil, TargetAddress{}, err
	}

	if err := socks5Request(conn, cmd, addr); err != nil {
		conn.Close()
		return nil, TargetAddress{}, err
	}

	bound, err := decodeSocks5Reply(ioctx.NewReader(ctx, conn))
	if err != nil {
		conn.Close()
		return nil, TargetAddress{}, err
	}
	return conn, bound, nil
}

// Socks5Connect connects to target through a SOCKS5 proxy, performing the
// CONNECT handshake. If target is a Domain, the name is forwarded to the
// proxy to be resolved there.
func Socks5Connect(ctx context.Context, dialer StreamDialer, proxyEndpoints []string, target ToTargetAddresser, creds PasswordCredentials, timeout time.Duration) (*ProxyHandle, error) {
	conn, bound, err := socks5ConnectRaw(ctx, dialer, proxyEndpoints, target, creds, socks5Connect, timeout)
	if err != nil {
		return nil, err
	}
	return &ProxyHandle{Conn: conn, bound: bound}, nil
}

// Socks5Bind issues a SOCKS5 BIND request. Call Accept on the result once
// the proxy-side endpoint (ProxyListener.BoundAddress) has been forwarded
// to the remote peer that will connect to it.
func Socks5Bind(ctx context.Context, dialer StreamDialer, proxyEndpoints []string, target ToTargetAddresser, creds PasswordCredentials, timeout time.Duration) (*ProxyListener, error) {
	conn, bound, err := socks5ConnectRaw(ctx, dialer, proxyEndpoints, target, creds, socks5Bind, timeout)
	if err != nil {
		return nil, err
	}
	return &ProxyListener{conn: conn, bound: bound, version: versionSocks5}, nil
}

// socks5AssociateRaw runs the UDP ASSOCIATE handshake and returns the
// still-open control stream (which must be kept alive for the duration of
// the UDP session) plus the relay's reported datagram endpoint.
func socks5AssociateRaw(ctx context.Context, dialer StreamDialer, proxyEndpoints []string, creds PasswordCredentials, timeout time.Duration) (net.Conn, TargetAddress, error) {
	return socks5ConnectRaw(ctx, dialer, proxyEndpoints, HostPort{Host: "0.0.0.0", Port: 0}, creds, socks5UDPAssociate, timeout)
}
