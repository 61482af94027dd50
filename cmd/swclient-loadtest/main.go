package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/swclient"
	"github.com/MrEthical07/swclient/internal/mockapi"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		apiURL      = flag.String("api-url", "", "backend base URL; if empty an in-process mock backend is used")
		email       = flag.String("email", "manager@smartwork.io", "login email")
		password    = flag.String("password", "password123", "login password")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "operations per phase (session + read + write)")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "swload:", "session key prefix")
	)
	flag.Parse()

	if *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "concurrency and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		rdb     redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = rdb.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = rdb.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	base := *apiURL
	if base == "" {
		backend, err := mockapi.New(mockapi.Config{Secret: []byte("loadtest-secret")})
		if err == nil {
			err = backend.Seed()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "mock backend: %v\n", err)
			os.Exit(1)
		}
		srv := backend.Start()
		defer srv.Close()
		base = srv.URL
		fmt.Printf("using mock backend at %s\n", base)
	}

	cfg := swclient.DefaultConfig()
	cfg.BaseURL = base
	cfg.Session.Backend = swclient.BackendRedis
	cfg.Session.KeyPrefix = *prefix
	cfg.Metrics.EnableLatencyHistograms = true

	client, err := swclient.New().WithConfig(cfg).WithRedis(rdb).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if _, err := client.Auth.Login(ctx, *email, *password); err != nil {
		fmt.Fprintf(os.Stderr, "login failed: %v\n", err)
		os.Exit(1)
	}
	task, err := client.Tasks.Create(ctx, swclient.TaskInput{Title: "load test target", Priority: "low"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "create task failed: %v\n", err)
		os.Exit(1)
	}

	sessionStats := runPhase(*ops, *concurrency, func(int) error {
		if _, ok := client.ActiveSession(ctx); !ok {
			return errors.New("session lost")
		}
		return nil
	})
	readStats := runPhase(*ops, *concurrency, func(int) error {
		_, err := client.Tasks.List(ctx)
		return err
	})
	statuses := []swclient.TaskStatus{swclient.TaskPending, swclient.TaskInProgress, swclient.TaskCompleted}
	writeStats := runPhase(*ops, *concurrency, func(i int) error {
		_, err := client.Tasks.UpdateStatus(ctx, task.ID, statuses[i%len(statuses)])
		return err
	})

	fmt.Println("---- results ----")
	printStats("session", sessionStats)
	printStats("read", readStats)
	printStats("write", writeStats)

	snap := client.MetricsSnapshot()
	fmt.Printf("client: requests=%d success=%d server_fault=%d network=%d\n",
		snap.Counters[swclient.MetricRequest],
		snap.Counters[swclient.MetricRequestSuccess],
		snap.Counters[swclient.MetricServerFault],
		snap.Counters[swclient.MetricNetworkUnavailable],
	)
}

// runPhase runs op ops times across concurrency workers and records latency.
func runPhase(ops, concurrency int, op func(i int) error) phaseStats {
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
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(i)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
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
