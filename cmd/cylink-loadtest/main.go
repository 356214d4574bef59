package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	cylink "github.com/cylink-sh/cylink-go"
)

func main() {
	var (
		codes       = flag.Int("codes", 10000, "number of short codes to seed")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (hit + miss)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		dedup       = flag.Duration("dedup", 0, "click dedup window; 0 disables")
	)
	flag.Parse()

	if *codes <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "codes, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  *redis.Client
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewClient(&redis.Options{Addr: addr})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	// In-process stub API so the benchmark measures the engine, not a
	// network hop to a real deployment.
	seeded := make(map[string]string, *codes)
	for i := 0; i < *codes; i++ {
		seeded[codeFor(i)] = fmt.Sprintf("https://example.com/dest/%d", i)
	}
	api := httptest.NewServer(stubAPI(seeded))
	defer api.Close()

	engine, err := cylink.New().
		WithConfig(loadtestConfig(api.URL, *dedup)).
		WithRedis(client).
		WithMetricsEnabled(true).
		WithLatencyHistograms(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	fmt.Printf("seeded %d codes, running %d ops per phase at concurrency %d\n", *codes, *ops, *concurrency)

	hitStats := runPhase(ctx, engine, *ops, *concurrency, func(r *rand.Rand) string {
		return codeFor(r.Intn(*codes))
	})
	missStats := runPhase(ctx, engine, *ops, *concurrency, func(r *rand.Rand) string {
		return "missing-" + codeFor(r.Intn(*codes))
	})

	fmt.Println("---- results ----")
	printStats("hit", hitStats)
	printStats("miss", missStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("resolved=%d not_found=%d clicks_enqueued=%d clicks_dropped=%d\n",
		snap.Counters[cylink.MetricResolveSuccess],
		snap.Counters[cylink.MetricResolveNotFound],
		snap.Counters[cylink.MetricClickEnqueued],
		engine.ClicksDropped(),
	)
}

func loadtestConfig(baseURL string, dedup time.Duration) cylink.Config {
	cfg := cylink.Config{
		API: cylink.APIConfig{
			BaseURL:        baseURL,
			RequestTimeout: 10 * time.Second,
		},
		Resolve: cylink.ResolveConfig{
			AttemptTimeout: 5 * time.Second,
			MaxCodeLength:  64,
		},
		Clicks: cylink.ClicksConfig{
			Enabled:       true,
			BufferSize:    1 << 16,
			RecordTimeout: 3 * time.Second,
			DedupWindow:   dedup,
		},
		Metrics: cylink.MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: true,
		},
	}
	return cfg
}

func stubAPI(codes map[string]string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/urls/click/") {
			w.WriteHeader(http.StatusOK)
			return
		}
		code := strings.TrimPrefix(r.URL.Path, "/urls/")
		dest, ok := codes[code]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"original_url": dest})
	})
}

func runPhase(ctx context.Context, engine *cylink.Engine, ops, concurrency int, pick func(*rand.Rand) string) phaseStats {
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
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				code := pick(r)
				t0 := time.Now()
				_, err := engine.Resolve(ctx, code)
				d := time.Since(t0)
				if err != nil && !errors.Is(err, cylink.ErrLinkNotFound) {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
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
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
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

func codeFor(i int) string {
	const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	out := make([]byte, 0, 8)
	for i > 0 || len(out) == 0 {
		out = append(out, alphabet[i%len(alphabet)])
		i /= len(alphabet)
	}
	return string(out)
}
