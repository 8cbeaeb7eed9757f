package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	httpx "github.com/wilsharo/lead-filter-api/internal/http"
	"github.com/wilsharo/lead-filter-api/internal/ipqs"
	"github.com/wilsharo/lead-filter-api/internal/lead"
	"github.com/wilsharo/lead-filter-api/internal/metrics"
	"github.com/wilsharo/lead-filter-api/internal/sink"
	"github.com/wilsharo/lead-filter-api/internal/verify"
	"github.com/wilsharo/lead-filter-api/pkg/config"
)

// keyPlaceholder is the sample value from the provisioning docs; treat it
// the same as an unset key.
const keyPlaceholder = "YOUR_IPQUALITYSCORE_API_KEY"

func main() {
	cfg := config.Load()

	m := metrics.NewMetrics()
	metricsSrv := metrics.NewServer(metrics.LoadConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := metricsSrv.Start(ctx); err != nil {
		log.Printf("metrics: start failed: %v", err)
	}

	sinks := buildSinks(cfg.Outputs)
	for _, s := range sinks {
		if err := s.Start(ctx); err != nil {
			log.Fatalf("sink %s: start failed: %v", s.Name(), err)
		}
	}

	verifier := verify.NewVerifier(buildIPQSClient(cfg, m))

	env := httpx.Env{
		Cfg:      cfg,
		Verifier: verifier,
		Velocity: lead.NewMemoryVelocityTracker(),
		Metrics:  m,
		Emit: func(rec lead.Record) {
			for _, s := range sinks {
				if err := s.Enqueue(rec); err != nil {
					log.Printf("sink %s: %v", s.Name(), err)
					m.IncrementSinkErrors(s.Name(), "enqueue")
					continue
				}
				m.IncrementRecordsEmitted(s.Name())
			}
		},
	}
	if cfg.HMACSecret != "" {
		env.HMACAuth = httpx.NewHMACAuth(cfg.HMACSecret)
	}

	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: httpx.NewMux(env),
	}

	go func() {
		log.Printf("leadfilter listening on %s", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel2()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			log.Printf("sink %s: close: %v", s.Name(), err)
		}
	}
}

// buildIPQSClient returns nil when no usable key is configured, which makes
// the verifier fail closed.
func buildIPQSClient(cfg config.Config, m *metrics.Metrics) ipqs.Client {
	if cfg.IPQSAPIKey == "" || cfg.IPQSAPIKey == keyPlaceholder {
		log.Printf("WARNING: IP_QUALITY_SCORE_API_KEY not set, IP checks will fail closed")
		return nil
	}

	var client ipqs.Client = ipqs.NewHTTPClient(cfg.IPQSAPIKey, cfg.IPQSBaseURL, cfg.IPQSStrictness, cfg.IPQSTimeout)

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cached := ipqs.NewCachedClient(client, rdb, cfg.RedisCacheTTL)
		cached.OnHit = func() { m.IncrementIPQSCache("hit") }
		cached.OnMiss = func() { m.IncrementIPQSCache("miss") }
		log.Printf("ipqs: caching lookups in redis at %s (ttl %s)", cfg.RedisAddr, cfg.RedisCacheTTL)
		client = cached
	}
	return client
}

func buildSinks(outputs []string) []sink.Sink {
	var sinks []sink.Sink
	for _, out := range outputs {
		switch out {
		case "log":
			sinks = append(sinks, sink.NewLogSink())
		case "postgres":
			sinks = append(sinks, sink.NewPGSinkFromEnv())
		case "kafka":
			sinks = append(sinks, sink.NewKafkaSinkFromEnv())
		default:
			log.Printf("unknown output %q, skipping", out)
		}
	}
	if len(sinks) == 0 {
		sinks = append(sinks, sink.NewLogSink())
	}
	return sinks
}
