package socks

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTargetAddress(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantIP   string
		wantDom  string
		wantPort uint16
		wantErr  bool
	}{
		{name: "ipv4 literal", input: "127.0.0.1:80", wantIP: "127.0.0.1", wantPort: 80},
		{name: "bracketed ipv6 literal", input: "[::1]:443", wantIP: "::1", wantPort: 443},
		{name: "bare ipv6 via rightmost colon", input: "2001:db8::1:80", wantIP: "2001:db8::1", wantPort: 80},
		{name: "domain", input: "example.com:8080", wantDom: "example.com", wantPort: 8080},
		{name: "domain that looks like a bare word", input: "my-host:22", wantDom: "my-host", wantPort: 22},
		{name: "missing colon", input: "example.com", wantErr: true},
		{name: "non-numeric port", input: "example.com:http", wantErr: true},
		{name: "port out of range", input: "example.com:99999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, err := ParseTargetAddress(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPort, addr.Port)
			if tt.wantDom != "" {
				assert.True(t, addr.IsDomain())
				assert.Equal(t, tt.wantDom, addr.Domain)
			} else {
				assert.False(t, addr.IsDomain())
				assert.Equal(t, tt.wantIP, addr.IP.String())
			}
		})
	}
}

func TestTargetAddressString(t *testing.T) {
	assert.Equal(t, "127.0.0.1:80", FromIP(net.ParseIP("127.0.0.1"), 80).String())
	assert.Equal(t, "example.com:80", FromDomain("example.com", 80).String())
}

func TestHostPortToTargetAddress(t *testing.T) {
	addr, err := HostPort{Host: "10.0.0.1", Port: 1080}.ToTargetAddress()
	require.NoError(t, err)
	assert.False(t, addr.IsDomain())

	addr, err = HostPort{Host: "relay.example", Port: 1080}.ToTargetAddress()
	require.NoError(t, err)
	assert.True(t, addr.IsDomain())
}
