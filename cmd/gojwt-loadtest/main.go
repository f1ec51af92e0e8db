// Command gojwt-loadtest measures encode and decode throughput against key sets
// stored in Redis.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	jose "github.com/go-jose/go-jose/v3"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	goJWT "github.com/MrEthical07/goJWT"
	"github.com/MrEthical07/goJWT/generate"
	"github.com/MrEthical07/goJWT/jwa"
	"github.com/MrEthical07/goJWT/keys"
)

type keySet struct {
	name string
	kid  string
}

func main() {
	var (
		sets        = flag.Int("keysets", 64, "number of key sets to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "operations per phase (encode + decode)")
		alg         = flag.String("alg", "ES256", "signing algorithm of the seeded keys")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "gojwt:loadtest", "key set prefix")
		seed        = flag.Uint64("seed", 1, "generator seed")
	)
	flag.Parse()

	if *sets <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "keysets, concurrency, and ops must be > 0")
		os.Exit(2)
	}
	signing, err := jwa.Parse(*alg, jwa.FamilySigning)
	if err != nil || jwa.IsHMAC(signing) {
		fmt.Fprintf(os.Stderr, "alg must be an RSA or EC signing algorithm: %s\n", *alg)
		os.Exit(2)
	}

	ctx := context.Background()
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	client, cleanup := connect(*redisAddr)
	defer cleanup()

	cfg := goJWT.DefaultConfig()
	cfg.KeySets.RedisPrefix = *prefix
	cfg.Metrics.EnableLatencyHistograms = true
	engine, err := goJWT.New().WithConfig(cfg).WithLogger(logger).WithRedis(client).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "engine build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	g := generate.New(*seed)
	states := make([]keySet, *sets)
	fmt.Printf("seeding %d %s key sets...\n", *sets, signing)
	startSeed := time.Now()
	for i := range states {
		s, err := seedKeySet(ctx, engine, g, signing, fmt.Sprintf("set-%d", i))
		if err != nil {
			fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
			os.Exit(1)
		}
		states[i] = s
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	tokens := make([]string, *ops)
	tokenSets := make([]string, *ops)
	encodeStats := runPhase(*ops, *concurrency, func(r *rand.Rand, i int) error {
		s := states[r.IntN(len(states))]
		res, err := engine.Encode(ctx, goJWT.EncodeRequest{
			Header:  fmt.Sprintf(`{"alg":%q,"kid":%q}`, signing, s.kid),
			Payload: fmt.Sprintf(`{"sub":"user-%d","set":%q}`, i, s.name),
			Expiry:  goJWT.ExpiryDirective{Mode: goJWT.ExpiryRelative, Amount: 10, Unit: goJWT.Minutes},
			Keys:    goJWT.KeyMaterial{KeySet: s.name},
		})
		if err != nil {
			return err
		}
		tokens[i] = res.Token
		tokenSets[i] = s.name
		return nil
	})

	decodeStats := runPhase(*ops, *concurrency, func(r *rand.Rand, _ int) error {
		i := r.IntN(len(tokens))
		if tokens[i] == "" {
			return fmt.Errorf("token %d was not produced", i)
		}
		res, err := engine.Decode(ctx, goJWT.DecodeRequest{Token: tokens[i], Keys: goJWT.KeyMaterial{KeySet: tokenSets[i]}})
		if err != nil {
			return err
		}
		if !res.Valid() {
			return fmt.Errorf("violations: %v", res.Violations)
		}
		return nil
	})

	fmt.Println("---- results ----")
	printStats("encode", encodeStats)
	printStats("decode", decodeStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("engine: encode_ok=%d decode_ok=%d failures=%d\n",
		snap.Counters[goJWT.MetricEncodeSuccess],
		snap.Counters[goJWT.MetricDecodeSuccess],
		snap.Counters[goJWT.MetricEncodeFailure]+snap.Counters[goJWT.MetricDecodeFailure],
	)
}

func connect(addr string) (redis.UniversalClient, func()) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		fmt.Printf("using redis at %s\n", addr)
		return client, func() { _ = client.Close() }
	}

	mr, err := miniredis.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
		os.Exit(1)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	fmt.Printf("using miniredis at %s\n", mr.Addr())
	return client, func() {
		_ = client.Close()
		mr.Close()
	}
}

func seedKeySet(ctx context.Context, engine *goJWT.Engine, g *generate.Generator, alg jwa.Algorithm, name string) (keySet, error) {
	pair, err := generate.KeyPair(alg, nil)
	if err != nil {
		return keySet{}, err
	}
	priv, err := keys.ParsePrivatePEM("privateKey", pair.PrivateKey)
	if err != nil {
		return keySet{}, err
	}
	kid := g.KeyID()
	set := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{Key: priv, KeyID: kid, Algorithm: string(alg), Use: "sig"}}}
	if err := engine.PutKeySet(ctx, name, set); err != nil {
		return keySet{}, err
	}
	return keySet{name: name, kid: kid}, nil
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

func runPhase(ops, concurrency int, op func(r *rand.Rand, i int) error) phaseStats {
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
			r := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r, i)
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

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	slices.Sort(samples)
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
