package tgsession

import (
	"slices"
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(*Config) {},
			wantValid: true,
		},
		{
			name: "audit buffer valid",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 1
			},
			wantValid: true,
		},
		{
			name: "audit buffer invalid",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "audit buffer ignored when disabled",
			mutate: func(c *Config) {
				c.Audit.BufferSize = 0
			},
			wantValid: true,
		},
		{
			name: "store prefix empty invalid",
			mutate: func(c *Config) {
				c.Store.RedisPrefix = ""
			},
			wantValid: false,
		},
		{
			name: "store ttl zero valid",
			mutate: func(c *Config) {
				c.Store.TTL = 0
			},
			wantValid: true,
		},
		{
			name: "store ttl negative invalid",
			mutate: func(c *Config) {
				c.Store.TTL = -time.Second
			},
			wantValid: false,
		},
		{
			name: "batch workers invalid",
			mutate: func(c *Config) {
				c.Batch.Workers = 0
			},
			wantValid: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected invalid config, got nil")
			}
		})
	}
}

func TestDefaultConfigMatchesDetectionDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Datacenter.TestMode || cfg.Datacenter.Media {
		t.Fatal("conversions must default to production, non-media endpoints")
	}
	if cfg.Batch.Workers != 5 {
		t.Fatalf("expected 5 batch workers, got %d", cfg.Batch.Workers)
	}
}

func TestLint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Audit.Enabled = true
	if codes := cfg.Lint().Codes(); len(codes) != 0 {
		t.Fatalf("expected no warnings, got %v", codes)
	}

	cfg.Store.TTL = 0
	cfg.Datacenter.TestMode = true
	cfg.Datacenter.Media = true
	cfg.Batch.Workers = 100
	codes := cfg.Lint().Codes()
	for _, want := range []string{"store_ttl_unbounded", "test_mode_media_ignored", "batch_workers_high"} {
		if !slices.Contains(codes, want) {
			t.Errorf("expected warning %q in %v", want, codes)
		}
	}
}
