package tgsession

import (
	"errors"
	"time"

	"github.com/MrEthical07/tgsession/dc"
)

// Config holds every Converter setting. Build copies it; later changes to the
// caller's value have no effect.
type Config struct {
	Datacenter DatacenterConfig
	TData      TDataConfig
	Metrics    MetricsConfig
	Audit      AuditConfig
	Store      StoreConfig
	Batch      BatchConfig
}

/*
====================================
DATACENTER CONFIG
====================================
*/

// DatacenterConfig selects the built-in endpoint list used when no resolver is
// supplied to the Builder. Conversions default to production, non-media.
type DatacenterConfig struct {
	TestMode bool
	Media    bool
}

/*
====================================
TDATA CONFIG
====================================
*/

// TDataConfig configures the default Telegram Desktop probe.
type TDataConfig struct {
	// Passcode unlocks containers protected by a local passcode.
	Passcode string
}

/*
====================================
OBSERVABILITY CONFIG
====================================
*/

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
SINK CONFIG
====================================
*/

// StoreConfig configures the Redis sink for converted sessions.
type StoreConfig struct {
	RedisPrefix string
	// TTL bounds how long canonical sessions stay in Redis; zero keeps them
	// until deleted.
	TTL time.Duration
}

/*
====================================
BATCH CONFIG
====================================
*/

// BatchConfig bounds directory conversions.
type BatchConfig struct {
	Workers int
}

func defaultConfig() Config {
	return Config{
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Store: StoreConfig{
			RedisPrefix: "tgs",
			TTL:         15 * time.Minute,
		},
		Batch: BatchConfig{
			Workers: 5,
		},
	}
}

// DefaultConfig returns the settings New starts from.
func DefaultConfig() Config {
	return defaultConfig()
}

func (c DatacenterConfig) options() dc.Options {
	return dc.Options{TestMode: c.TestMode, Media: c.Media}
}

/*
====================================
VALIDATION
====================================
*/

// Validate rejects configurations the Converter cannot run with.
func (c *Config) Validate() error {
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}
	if c.Store.RedisPrefix == "" {
		return errors.New("Store RedisPrefix must not be empty")
	}
	if c.Store.TTL < 0 {
		return errors.New("Store TTL must be >= 0")
	}
	if c.Batch.Workers <= 0 {
		return errors.New("Batch Workers must be > 0")
	}
	return nil
}

/*
====================================
LINT
====================================
*/

// LintWarning is a setting that is valid but probably not what was meant.
type LintWarning struct {
	Code    string
	Message string
}

// LintResult is the ordered list of warnings for a Config.
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	codes := make([]string, len(r))
	for i, w := range r {
		codes[i] = w.Code
	}
	return codes
}

// Lint reports questionable settings. It does not replace Validate.
func (c Config) Lint() LintResult {
	var out LintResult
	if c.Store.TTL == 0 {
		out = append(out, LintWarning{
			Code:    "store_ttl_unbounded",
			Message: "converted sessions stay in Redis until deleted",
		})
	}
	if c.Datacenter.TestMode && c.Datacenter.Media {
		out = append(out, LintWarning{
			Code:    "test_mode_media_ignored",
			Message: "the test datacenter list has no media endpoints",
		})
	}
	if c.Batch.Workers > 64 {
		out = append(out, LintWarning{
			Code:    "batch_workers_high",
			Message: "each batch worker holds one SQLite handle or tdata container open",
		})
	}
	if !c.Audit.Enabled {
		out = append(out, LintWarning{
			Code:    "audit_disabled",
			Message: "conversions are not audited",
		})
	}
	return out
}
