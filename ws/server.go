// Package ws is the public facade over the internal transport, mirroring the
// configuration types and constructors callers actually need.
package ws

import (
	"github.com/daemon-engine/inspectornet"
	"github.com/daemon-engine/inspectornet/internal/websocket"
)

type Config = websocket.Config
type RateLimitConfig = websocket.RateLimitConfig

// New creates a server bound to the given protocol adapter.
//
// The adapter receives its Transport immediately; traffic begins after
// Start. A nil cfg selects DefaultConfig.
//
// Example:
//
//	adapter := devtools.New(devtools.Config{Host: "127.0.0.1", Port: 9229})
//	server := ws.New(ws.NewConfig("127.0.0.1", 9229), adapter)
//	if err := server.Start(); err != nil { ... }
func New(cfg *Config, adapter inspectornet.Adapter) inspectornet.Server {
	return websocket.New(cfg, adapter)
}

// NewConfig returns the default configuration bound to host:port.
func NewConfig(host string, port int) *Config {
	cfg := websocket.DefaultConfig()
	cfg.Host = host
	cfg.Port = port
	return cfg
}

// DefaultConfig returns the standard inspector-channel configuration
// (loopback, port 9229, 10 connections).
func DefaultConfig() *Config {
	return websocket.DefaultConfig()
}

// ConfigFromJSON parses a configuration document over the defaults.
func ConfigFromJSON(data []byte) (*Config, error) {
	return websocket.ConfigFromJSON(data)
}

// DefaultRateLimitConfig allows 100 messages per second with burst 200.
func DefaultRateLimitConfig() *RateLimitConfig {
	return websocket.DefaultRateLimitConfig()
}

// NoRateLimit returns a configuration with rate limiting disabled, the right
// choice for a loopback inspector channel.
func NoRateLimit() *RateLimitConfig {
	return websocket.NoRateLimit()
}
