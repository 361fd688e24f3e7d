package tgsession

import (
	"errors"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/tgsession/dc"
	"github.com/MrEthical07/tgsession/session"
	"github.com/MrEthical07/tgsession/tdata"
)

// Builder assembles a Converter. A Builder can be built once.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	logger *zerolog.Logger

	resolver  dc.Resolver
	probe     tdata.Probe
	exists    func(string) bool
	auditSink AuditSink

	built bool
}

// New returns a Builder starting from DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithLogger sets the logger. Without one the Converter logs nothing.
func (b *Builder) WithLogger(l zerolog.Logger) *Builder {
	b.logger = &l
	return b
}

// WithResolver replaces the built-in datacenter table.
func (b *Builder) WithResolver(r dc.Resolver) *Builder {
	b.resolver = r
	return b
}

// WithProbe replaces the Telegram Desktop container reader.
func (b *Builder) WithProbe(p tdata.Probe) *Builder {
	b.probe = p
	return b
}

// WithFileExists replaces the check that decides whether an input is a path
// or a string session.
func (b *Builder) WithFileExists(fn func(path string) bool) *Builder {
	b.exists = fn
	return b
}

// WithRedis enables the session sink used by ConvertAndStore.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets the audit sink. Events reach it only when
// Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the conversion latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns the Converter.
func (b *Builder) Build() (*Converter, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Converter{
		config:   cfg,
		log:      zerolog.Nop(),
		resolver: b.resolver,
		probe:    b.probe,
		exists:   b.exists,
	}
	if b.logger != nil {
		c.log = b.logger.With().Str("component", "tgsession").Logger()
	}
	if c.resolver == nil {
		c.resolver = dc.NewTable(cfg.Datacenter.options())
	}
	if c.probe == nil {
		desktop := tdata.Desktop{}
		if cfg.TData.Passcode != "" {
			desktop.Passcode = []byte(cfg.TData.Passcode)
		}
		c.probe = desktop
	}
	if c.exists == nil {
		c.exists = fileExists
	}
	if b.redis != nil {
		c.store = session.NewStore(b.redis, cfg.Store.RedisPrefix, cfg.Store.TTL)
	}

	c.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	c.metrics = NewMetrics(cfg.Metrics)

	b.built = true

	return c, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
