package socks

import (
	"bytes"
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocks5HandshakeNoAuth(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() { done <- socks5Handshake(context.Background(), client, PasswordCredentials{}) }()

	req := make([]byte, 3)
	_, err := server.Read(req)
	require.NoError(t, err)
	assert.Equal(t, []byte{socks5Version, 1, authNone}, req)

	_, err = server.Write([]byte{socks5Version, authNone})
	require.NoError(t, err)
	require.NoError(t, <-done)
}

func TestSocks5HandshakeNoAcceptableMethods(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	done := make(chan error, 1)
	go func() { done <- socks5Handshake(context.Background(), client, PasswordCredentials{}) }()

	req := make([]byte, 3)
	_, err := server.Read(req)
	require.NoError(t, err)
	_, err = server.Write([]byte{socks5Version, authNoMethod})
	require.NoError(t, err)

	err = <-done
	require.Error(t, err)
	var protoErr *Error
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, ErrNoAuthMethods, protoErr.Variant)
}

func TestSocks5HandshakePasswordSubNegotiation(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	creds := PasswordCredentials{Username: "alice", Password: "secret"}
	done := make(chan error, 1)
	go func() { done <- socks5Handshake(context.Background(), client, creds) }()

	req := make([]byte, 4)
	_, err := server.Read(req)
	require.NoError(t, err)
	assert.Equal(t, []byte{socks5Version, 2, authPassword, authNone}, req)
	_, err = server.Write([]byte{socks5Version, authPassword})
	require.NoError(t, err)

	authReq := make([]byte, 1+1+len(creds.Username)+1+len(creds.Password))
	_, err = server.Read(authReq)
	require.NoError(t, err)
	assert.Equal(t, byte(1), authReq[0])
	assert.Equal(t, byte(len(creds.Username)), authReq[1])

	_, err = server.Write([]byte{1, 0})
	require.NoError(t, err)
	require.NoError(t, <-done)
}

func TestSocks5HandshakeFallsBackToNoAuthWhenOffered(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	creds := PasswordCredentials{Username: "alice", Password: "secret"}
	done := make(chan error, 1)
	go func() { done <- socks5Handshake(context.Background(), client, creds) }()

	req := make([]byte, 4)
	_, err := server.Read(req)
	require.NoError(t, err)
	assert.Equal(t, []byte{socks5Version, 2, authPassword, authNone}, req)

	_, err = server.Write([]byte{socks5Version, authNone})
	require.NoError(t, err)
	require.NoError(t, <-done)
}

func TestSocks5PasswordAuthRejectsOversizedCredentials(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	longUsername := string(make([]byte, 256))
	err := socks5PasswordAuth(context.Background(), client, longUsername, "x")
	require.Error(t, err)
	var protoErr *Error
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, ErrInvalidUsername, protoErr.Variant)
}

func TestDecodeSocks5ReplyClassifiesREP(t *testing.T) {
	build := func(rep byte) []byte {
		buf := []byte{socks5Version, rep, 0, atypIPv4, 127, 0, 0, 1, 0x1F, 0x90}
		return buf
	}

	addr, err := decodeSocks5Reply(bytes.NewReader(build(0)))
	require.NoError(t, err)
	assert.Equal(t, uint16(8080), addr.Port)
	assert.Equal(t, "127.0.0.1", addr.IP.String())

	tests := []struct {
		rep  byte
		want Variant
	}{
		{1, ErrUnknownServerFailure},
		{2, ErrServerRefusedByRuleSet},
		{3, ErrServerNetworkUnreachable},
		{4, ErrServerHostUnreachable},
		{5, ErrConnectionRefused},
		{6, ErrServerTTLExpired},
		{7, ErrServerCmdNotSupported},
		{8, ErrServerAddressNotSupported},
		{200, ErrUnknownServerFailure},
	}
	for _, tt := range tests {
		_, err := decodeSocks5Reply(bytes.NewReader(build(tt.rep)))
		require.Error(t, err)
		var protoErr *Error
		require.ErrorAs(t, err, &protoErr)
		assert.Equal(t, tt.want, protoErr.Variant, "rep=%d", tt.rep)
	}
}

func TestDecodeSocks5ReplyRejectsNonZeroReservedByte(t *testing.T) {
	buf := []byte{socks5Version, 0, 1, atypIPv4, 127, 0, 0, 1, 0, 80}
	_, err := decodeSocks5Reply(bytes.NewReader(buf))
	require.Error(t, err)
	var protoErr *Error
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, ErrInvalidReservedByte, protoErr.Variant)
}

func TestSocks5RequestWritesExpectedFrame(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	target := FromDomain("example.com", 443)
	done := make(chan error, 1)
	go func() { done <- socks5Request(client, socks5Connect, target) }()

	frame := make([]byte, 7+len("example.com"))
	_, err := server.Read(frame)
	require.NoError(t, err)
	require.NoError(t, <-done)

	assert.Equal(t, socks5Version, frame[0])
	assert.Equal(t, socks5Connect, frame[1])
	assert.Equal(t, byte(0), frame[2])
	assert.Equal(t, atypDomain, frame[3])
	assert.Equal(t, byte(len("example.com")), frame[4])
	assert.Equal(t, "example.com", string(frame[5:5+len("example.com")]))
}
