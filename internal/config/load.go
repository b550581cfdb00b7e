package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

// load reads and parses the socksdial configuration from a TOML file,
// validates it, and fills in defaults for anything left unspecified —
// the same three-step shape as the teacher's loadClientConfig.
func load(path string) (*Config, error) {
	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.applyDefaultValues()
	return &c, nil
}

func (c *Config) validate() error {
	var missingFields []string
	if len(c.Proxy.Address) < 1 {
		missingFields = append(missingFields, "proxy.address")
	}
	if len(missingFields) > 0 {
		return fmt.Errorf("missing fields: %s", strings.Join(missingFields, ", "))
	}

	if c.Proxy.Version != 4 && c.Proxy.Version != 5 {
		return fmt.Errorf("proxy.version must be 4 or 5, got %d", c.Proxy.Version)
	}

	if c.UDPRatePerSecond < 0 {
		return fmt.Errorf("udpRatePerSecond must not be negative")
	}

	return nil
}

func (c *Config) applyDefaultValues() {
	if c.Timeout.DialTimeout == 0 {
		c.Timeout.DialTimeout = 10
	}
	if c.Timeout.HandshakeTimeout == 0 {
		c.Timeout.HandshakeTimeout = 10
	}
	if c.UDPRatePerSecond == 0 {
		c.UDPRatePerSecond = 50
	}
}

// HasAuth reports whether Account carries anything to present during the
// handshake.
func (c *Config) HasAuth() bool {
	return c.Account.Username != "" || c.Account.Password != ""
}
