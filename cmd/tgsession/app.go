package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/MrEthical07/tgsession"
	promexport "github.com/MrEthical07/tgsession/metrics/export/prometheus"
)

const envPrefix = "TGSESSION"

// app holds what every subcommand shares. It is filled in by the root
// command's pre-run hook.
type app struct {
	v      *viper.Viper
	log    zerolog.Logger
	conv   *tgsession.Converter
	redis  redis.UniversalClient
	stdout io.Writer
	stderr io.Writer

	printMetrics bool
}

func newApp() *app {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	def := tgsession.DefaultConfig()
	v.SetDefault("log.level", "info")
	v.SetDefault("datacenter.test_mode", def.Datacenter.TestMode)
	v.SetDefault("datacenter.media", def.Datacenter.Media)
	v.SetDefault("tdata.passcode", "")
	v.SetDefault("store.redis_addr", "")
	v.SetDefault("store.prefix", def.Store.RedisPrefix)
	v.SetDefault("store.ttl", def.Store.TTL)
	v.SetDefault("batch.workers", def.Batch.Workers)
	v.SetDefault("audit.enabled", false)

	return &app{
		v:      v,
		log:    zerolog.Nop(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// bind maps a persistent flag onto a config key so flags win over env and
// the config file.
func (a *app) bind(key string, f *pflag.Flag) {
	if f == nil {
		return
	}
	_ = a.v.BindPFlag(key, f)
}

func (a *app) readConfigFile(path string) error {
	if path == "" {
		return nil
	}
	a.v.SetConfigFile(path)
	if err := a.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func (a *app) config() tgsession.Config {
	cfg := tgsession.DefaultConfig()
	cfg.Datacenter.TestMode = a.v.GetBool("datacenter.test_mode")
	cfg.Datacenter.Media = a.v.GetBool("datacenter.media")
	cfg.TData.Passcode = a.v.GetString("tdata.passcode")
	cfg.Store.RedisPrefix = a.v.GetString("store.prefix")
	cfg.Store.TTL = a.v.GetDuration("store.ttl")
	cfg.Batch.Workers = a.v.GetInt("batch.workers")
	cfg.Audit.Enabled = a.v.GetBool("audit.enabled")
	return cfg
}

func (a *app) setup() error {
	level, err := zerolog.ParseLevel(a.v.GetString("log.level"))
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	a.log = zerolog.New(zerolog.ConsoleWriter{Out: a.stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()

	cfg := a.config()
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, w := range cfg.Lint() {
		a.log.Debug().Str("code", w.Code).Msg(w.Message)
	}

	b := tgsession.New().WithConfig(cfg).WithLogger(a.log)
	if addr := a.v.GetString("store.redis_addr"); addr != "" {
		a.redis = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		b = b.WithRedis(a.redis)
	}
	if cfg.Audit.Enabled {
		b = b.WithAuditSink(tgsession.NewJSONWriterSink(a.stderr))
	}

	conv, err := b.Build()
	if err != nil {
		return err
	}
	a.conv = conv
	return nil
}

// finish runs after every command, failed ones included: cobra skips
// post-run hooks when RunE errors.
func (a *app) finish() {
	if a.printMetrics && a.conv != nil {
		fmt.Fprint(a.stderr, promexport.NewPrometheusExporter(a.conv).Render())
	}
	if a.conv != nil {
		a.conv.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func (a *app) context(ctx context.Context) context.Context {
	return a.log.WithContext(ctx)
}
