// Package websocket implements the transport core of the debug server: the
// raw TCP listener, the HTTP/WebSocket protocol discrimination, the
// per-connection handler goroutines, the connection registry and the inbound
// message queue drained by the consumer thread.
package websocket

import (
	"encoding/json"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/daemon-engine/inspectornet"
)

// Config holds the server settings. Immutable after Start.
type Config struct {
	// Enabled gates the whole feature; Start returns ErrServerDisabled when
	// false.
	Enabled bool `json:"enabled"`

	// Host is the listen address, loopback by default. Exposing a debugger
	// channel beyond loopback is the operator's own decision.
	Host string `json:"host"`

	// Port is the listening TCP port. 9229 is the Node.js inspector
	// convention that DevTools frontends probe.
	Port int `json:"port"`

	// MaxConnections bounds simultaneous sockets; accepts beyond the limit
	// are closed immediately without entering the registry.
	MaxConnections int `json:"maxConnections"`

	// EnableLogging silences the server entirely when false.
	EnableLogging bool `json:"enableLogging"`

	// RateLimit bounds inbound messages per connection. Nil means no limit,
	// the right default for a trusted loopback inspector channel.
	RateLimit *RateLimitConfig `json:"-"`
}

// DefaultConfig returns the standard inspector-channel settings.
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		Host:           "127.0.0.1",
		Port:           9229,
		MaxConnections: 10,
		EnableLogging:  true,
	}
}

// Validate reports whether the configuration can be started.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", inspectornet.ErrInvalidConfig, c.Port)
	}
	if c.MaxConnections <= 0 {
		return fmt.Errorf("%w: maxConnections %d must be positive", inspectornet.ErrInvalidConfig, c.MaxConnections)
	}
	return nil
}

// ConfigFromJSON parses a configuration document, leaving the defaults in
// place for absent fields.
func ConfigFromJSON(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse websocket config: %w", err)
	}
	return cfg, nil
}

// RateLimitConfig defines per-connection inbound rate limiting using a token
// bucket.
type RateLimitConfig struct {
	// MessagesPerSecond defines how many messages a connection may send per
	// second once the burst allowance is spent.
	MessagesPerSecond rate.Limit
	// Burst defines the token bucket capacity.
	Burst int
	// Enabled determines if rate limiting is active.
	Enabled bool
}

// DefaultRateLimitConfig allows 100 messages per second with a burst of 200.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		MessagesPerSecond: 100,
		Burst:             200,
		Enabled:           true,
	}
}

// NoRateLimit returns a configuration with rate limiting disabled.
func NoRateLimit() *RateLimitConfig {
	return &RateLimitConfig{Enabled: false}
}
