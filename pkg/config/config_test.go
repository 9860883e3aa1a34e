package config

import (
	"os"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got: %v", err)
	}
}

func TestValidate_InvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{
			name:   "empty server address",
			mutate: func(c *Config) { c.Server.Address = "" },
		},
		{
			name:   "empty access secret",
			mutate: func(c *Config) { c.Auth.AccessSecret = "" },
		},
		{
			name: "identical access and refresh secrets",
			mutate: func(c *Config) {
				c.Auth.AccessSecret = "same"
				c.Auth.RefreshSecret = "same"
			},
		},
		{
			name:   "non-positive access ttl",
			mutate: func(c *Config) { c.Auth.AccessTokenTTL = 0 },
		},
		{
			name:   "bcrypt cost out of range",
			mutate: func(c *Config) { c.Auth.BcryptCost = 99 },
		},
		{
			name: "pong timeout not above ping interval",
			mutate: func(c *Config) {
				c.Gateway.PongTimeout = c.Gateway.PingInterval
			},
		},
		{
			name:   "empty rtmp base url",
			mutate: func(c *Config) { c.Streaming.RTMPBaseURL = "" },
		},
		{
			name: "redis enabled without address",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
				c.Redis.Address = ""
			},
		},
		{
			name: "tracing sample rate out of range",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.SampleRate = 1.5
			},
		},
		{
			name: "rate limiting enabled without rps",
			mutate: func(c *Config) {
				c.RateLimiting.Enabled = true
				c.RateLimiting.RequestsPerSecond = 0
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("expected default address, got %q", cfg.Server.Address)
	}
}

func TestEnvOverrides(t *testing.T) {
	os.Setenv("CAMLIVE_SERVER_ADDRESS", ":9999")
	os.Setenv("CAMLIVE_ACCESS_SECRET", "env-access")
	defer os.Unsetenv("CAMLIVE_SERVER_ADDRESS")
	defer os.Unsetenv("CAMLIVE_ACCESS_SECRET")

	cfg, err := Load("does-not-exist.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Address != ":9999" {
		t.Fatalf("env override for address not applied, got %q", cfg.Server.Address)
	}
	if cfg.Auth.AccessSecret != "env-access" {
		t.Fatalf("env override for access secret not applied")
	}
}
