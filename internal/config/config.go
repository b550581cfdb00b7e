// Package config provides configuration structures and functions for the
// socksdial command-line client.
package config

import (
	"errors"
	"sync"

	"github.com/socks-go/socks/internal/logger"
)

var errInvalidConfigFile = errors.New("invalid config file")

// ProxyConfig holds the address and protocol version of the SOCKS proxy
// socksdial connects through.
type ProxyConfig struct {
	Address string `toml:"address"` // proxy listen address, host:port
	Version int    `toml:"version"` // 4 or 5
}

// Account holds optional credentials presented during the handshake: the
// SOCKS4 USERID field when Version is 4, or RFC 1929 username/password
// when Version is 5.
type Account struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// timeoutConfig holds the timeout settings that bound the handshake, in
// seconds.
type timeoutConfig struct {
	DialTimeout      int `toml:"dialTimeout"`      // TCP dial timeout
	HandshakeTimeout int `toml:"handshakeTimeout"` // overall handshake timeout
}

// Config is the complete socksdial configuration.
type Config struct {
	Proxy            ProxyConfig   `toml:"proxy"`
	Account          Account       `toml:"account"`
	Timeout          timeoutConfig `toml:"timeout"`
	UDPRatePerSecond float64       `toml:"udpRatePerSecond"` // rate limit applied to outgoing UDP datagrams, 0 selects the default of 50
}

var (
	cfg            *Config
	cfgLoadingOnce sync.Once
)

// Get loads and returns the socksdial configuration, memoized with
// sync.Once so repeated calls on the same process return the same value.
// A load failure is fatal, matching the teacher's GetClientCofig/
// GetServerConfig pattern.
func Get(path string) *Config {
	cfgLoadingOnce.Do(func() {
		var err error
		if cfg, err = load(path); err != nil {
			logger.Fatal(errors.Join(errInvalidConfigFile, err))
		}
	})
	return cfg
}
