package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/tgsession"
	"github.com/MrEthical07/tgsession/structcodec"
)

func main() {
	var (
		inputs      = flag.Int("inputs", 10000, "number of string sessions to generate")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (convert + store)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "tgs-load", "stored session key prefix")
	)
	flag.Parse()

	if *inputs <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "inputs, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", mr.Addr())
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	cfg := tgsession.DefaultConfig()
	cfg.Store.RedisPrefix = *prefix
	cfg.Store.TTL = 10 * time.Minute
	conv, err := tgsession.New().WithConfig(cfg).WithRedis(client).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build converter: %v\n", err)
		os.Exit(1)
	}
	defer conv.Close()

	fmt.Printf("generating %d string sessions...\n", *inputs)
	corpus, err := generate(*inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate: %v\n", err)
		os.Exit(1)
	}

	convertStats := runPhase(*ops, *concurrency, 7919, func(r *rand.Rand) error {
		_, err := conv.Convert(ctx, corpus[r.Intn(len(corpus))])
		return err
	})
	storeStats := runPhase(*ops, *concurrency, 6151, func(r *rand.Rand) error {
		_, _, err := conv.ConvertAndStore(ctx, corpus[r.Intn(len(corpus))])
		return err
	})

	fmt.Println("---- results ----")
	printStats("convert", convertStats)
	printStats("convert+store", storeStats)

	snap := conv.MetricsSnapshot()
	fmt.Printf("detected: telethon=%d pyrogram=%d unknown=%d\n",
		snap.Counters[tgsession.MetricDetectTelethon],
		snap.Counters[tgsession.MetricDetectPyrogram],
		snap.Counters[tgsession.MetricDetectUnknown],
	)
}

// generate alternates Telethon and the three Pyrogram layouts.
func generate(n int) ([]string, error) {
	out := make([]string, 0, n)
	variants := []structcodec.Variant{
		structcodec.VariantPyrogram,
		structcodec.VariantPyrogramOld,
		structcodec.VariantPyrogramOld64,
	}
	for i := 0; i < n; i++ {
		var key [structcodec.AuthKeySize]byte
		for j := range key {
			key[j] = byte((i + j*17 + 11) % 251)
		}
		dcID := uint8(i%5 + 1)

		var (
			s   string
			err error
		)
		if i%2 == 0 {
			s, err = structcodec.EncodeTelethon(&structcodec.Telethon{
				DC:      dcID,
				Address: []byte{149, 154, 167, byte(50 + dcID)},
				Port:    443,
				AuthKey: key,
			})
		} else {
			s, err = structcodec.EncodePyrogram(&structcodec.Pyrogram{
				Variant: variants[(i/2)%len(variants)],
				DC:      dcID,
				APIID:   2040,
				AuthKey: key,
				UserID:  uint64(i),
			})
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func runPhase(ops, concurrency int, seed int64, op func(r *rand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*seed))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	return samples[(len(samples)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
