package socks

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSocks4RequestIPv4(t *testing.T) {
	target := FromIP([]byte{10, 0, 0, 1}, 1080)
	req, err := socks4Request(socks4Connect, target, "alice")
	require.NoError(t, err)

	assert.Equal(t, byte(4), req[0])
	assert.Equal(t, socks4Connect, req[1])
	assert.Equal(t, uint16(1080), binary.BigEndian.Uint16(req[2:4]))
	assert.Equal(t, []byte{10, 0, 0, 1}, req[4:8])
	assert.Equal(t, "alice\x00", string(req[8:]))
}

func TestSocks4RequestDomainUsesSocks4ASentinel(t *testing.T) {
	target := FromDomain("example.com", 80)
	req, err := socks4Request(socks4Connect, target, "")
	require.NoError(t, err)

	assert.Equal(t, []byte{0, 0, 0, 1}, req[4:8])
	assert.Contains(t, string(req), "example.com\x00")
}

func TestSocks4RequestRejectsIPv6(t *testing.T) {
	target := FromIP([]byte("\x20\x01\x0d\xb8\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x01"), 80)
	_, err := socks4Request(socks4Connect, target, "")
	require.Error(t, err)
	var protoErr *Error
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, ErrSocks4NoIPv6, protoErr.Variant)
}

func TestSocks4ReadResponseClassifiesReplyCodes(t *testing.T) {
	build := func(cd byte) []byte {
		buf := make([]byte, 8)
		buf[0] = 0
		buf[1] = cd
		binary.BigEndian.PutUint16(buf[2:4], 1080)
		copy(buf[4:8], []byte{203, 0, 113, 5})
		return buf
	}

	addr, err := socks4ReadResponse(bytes.NewReader(build(90)))
	require.NoError(t, err)
	assert.Equal(t, uint16(1080), addr.Port)
	assert.Equal(t, "203.0.113.5", addr.IP.String())

	_, err = socks4ReadResponse(bytes.NewReader(build(91)))
	require.Error(t, err)
	var protoErr *Error
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, ErrConnectionRefused, protoErr.Variant)

	_, err = socks4ReadResponse(bytes.NewReader(build(92)))
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, ErrRejectedRequestID, protoErr.Variant)

	_, err = socks4ReadResponse(bytes.NewReader(build(123)))
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, ErrUnknownResponseCode, protoErr.Variant)
}
