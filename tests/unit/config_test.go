package unit_test

import (
	"errors"
	"testing"

	"golang.org/x/time/rate"

	"github.com/daemon-engine/inspectornet"
	"github.com/daemon-engine/inspectornet/ws"
)

// TestDefaultConfig verifies the stock inspector-channel settings
func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := ws.DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}
	if !cfg.Enabled {
		t.Error("default config should be enabled")
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want 127.0.0.1", cfg.Host)
	}
	if cfg.Port != 9229 {
		t.Errorf("Port = %v, want 9229", cfg.Port)
	}
	if cfg.MaxConnections != 10 {
		t.Errorf("MaxConnections = %v, want 10", cfg.MaxConnections)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*ws.Config)
		ok     bool
	}{
		{"defaults", func(*ws.Config) {}, true},
		{"port zero", func(c *ws.Config) { c.Port = 0 }, false},
		{"port negative", func(c *ws.Config) { c.Port = -1 }, false},
		{"port too large", func(c *ws.Config) { c.Port = 70000 }, false},
		{"max connections zero", func(c *ws.Config) { c.MaxConnections = 0 }, false},
		{"max connections negative", func(c *ws.Config) { c.MaxConnections = -5 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := ws.DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !errors.Is(err, inspectornet.ErrInvalidConfig) {
					t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
				}
			}
		})
	}
}

func TestConfigFromJSON(t *testing.T) {
	t.Parallel()

	t.Run("overrides selected fields", func(t *testing.T) {
		t.Parallel()

		cfg, err := ws.ConfigFromJSON([]byte(`{"port":19229,"maxConnections":3}`))
		if err != nil {
			t.Fatalf("ConfigFromJSON() error: %v", err)
		}
		if cfg.Port != 19229 {
			t.Errorf("Port = %v, want 19229", cfg.Port)
		}
		if cfg.MaxConnections != 3 {
			t.Errorf("MaxConnections = %v, want 3", cfg.MaxConnections)
		}
		// Absent fields keep their defaults
		if cfg.Host != "127.0.0.1" {
			t.Errorf("Host = %q, want default 127.0.0.1", cfg.Host)
		}
		if !cfg.Enabled {
			t.Error("Enabled should keep its default")
		}
	})

	t.Run("empty document keeps defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := ws.ConfigFromJSON([]byte(`{}`))
		if err != nil {
			t.Fatalf("ConfigFromJSON() error: %v", err)
		}
		if cfg.Port != 9229 || cfg.MaxConnections != 10 {
			t.Errorf("defaults not preserved: %+v", cfg)
		}
	})

	t.Run("malformed document", func(t *testing.T) {
		t.Parallel()

		if _, err := ws.ConfigFromJSON([]byte(`{"port":`)); err == nil {
			t.Error("ConfigFromJSON() should fail on malformed JSON")
		}
	})
}

// TestDefaultRateLimitConfig tests the default rate limit configuration
func TestDefaultRateLimitConfig(t *testing.T) {
	t.Parallel()

	config := ws.DefaultRateLimitConfig()

	if config == nil {
		t.Fatal("DefaultRateLimitConfig() returned nil")
	}
	if !config.Enabled {
		t.Error("default rate limit should be enabled")
	}
	if config.MessagesPerSecond != 100 {
		t.Errorf("MessagesPerSecond = %v, want 100", config.MessagesPerSecond)
	}
	if config.Burst != 200 {
		t.Errorf("Burst = %v, want 200", config.Burst)
	}
}

// TestNoRateLimit tests the disabled rate limit configuration
func TestNoRateLimit(t *testing.T) {
	t.Parallel()

	config := ws.NoRateLimit()

	if config == nil {
		t.Fatal("NoRateLimit() returned nil")
	}
	if config.Enabled {
		t.Error("NoRateLimit should have Enabled = false")
	}
}

// TestCustomRateLimitConfig exercises hand-built rate limit configurations
func TestCustomRateLimitConfig(t *testing.T) {
	t.Parallel()

	cfg := &ws.RateLimitConfig{
		MessagesPerSecond: rate.Limit(10),
		Burst:             20,
		Enabled:           true,
	}

	if !cfg.Enabled || cfg.MessagesPerSecond != 10 || cfg.Burst != 20 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
