package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stocksim/internal/bootstrap"
	"stocksim/internal/config"
	"stocksim/internal/engine"
	"stocksim/internal/handler"
	"stocksim/internal/httpx"
	"stocksim/internal/quote"
	"stocksim/internal/quote/polygon"
	"stocksim/internal/quote/polygonadapter"
	"stocksim/internal/quote/ratelimit"
	"stocksim/internal/store"
)

func main() {
	// Config
	cfgPath := os.Getenv("CONFIG_FILE")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Universe.ReferenceDate == "" {
		log.Fatal("reference_date is required; set universe.reference_date or REFERENCE_DATE")
	}
	if cfg.Polygon.APIKey == "" {
		log.Println("warning: POLYGON_API_KEY not set; bootstrap fetches will fail as unavailable")
	}

	st, err := openStore(cfg.Store)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close()

	src, err := newSource(cfg)
	if err != nil {
		log.Fatalf("quote source: %v", err)
	}

	eng := engine.New(st)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler.NewRouter(eng, cfg.Server.CORSOrigin),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The server accepts queries immediately; until bootstrap finishes they
	// answer 503. A rate-ceiling-paced bootstrap of 20 symbols takes minutes,
	// so it must not delay listening.
	go func() {
		loader := bootstrap.NewLoader(src, st)
		instruments, err := loader.Run(ctx, cfg.Universe.ReferenceDate, cfg.Universe.Symbols)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("bootstrap failed: %v; queries will keep answering not-ready", err)
			return
		}
		eng.Seed(instruments)
		eng.Start(ctx, time.Duration(cfg.Sim.TickSec)*time.Second)
	}()

	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func openStore(cfg config.Store) (store.Store, error) {
	if cfg.Backend == "sqlite" {
		return store.NewSQLite(cfg.Path)
	}
	return store.NewFile(cfg.Path), nil
}

// newSource builds the Polygon-backed quote source wrapped in the configured
// rate-limit gate. Prefer token bucket with burst if RPM is set, otherwise
// use min-interval.
func newSource(cfg config.Config) (quote.Source, error) {
	httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
	client, err := polygon.NewClient(
		cfg.Polygon.APIKey,
		polygon.WithBaseURL(cfg.Polygon.Endpoint),
		polygon.WithHTTPClient(httpClient),
		polygon.WithHeader(http.Header{
			"User-Agent": []string{"stocksim/1.0"},
		}),
	)
	if err != nil {
		return nil, err
	}

	var src quote.Source = polygonadapter.New(polygonadapter.Config{Name: "Polygon"}, client)
	if cfg.Polygon.MaxCallsPerMinute > 0 {
		rate := float64(cfg.Polygon.MaxCallsPerMinute) / 60.0
		burst := cfg.Polygon.Burst
		if burst <= 0 {
			burst = 1
		}
		src = &ratelimit.TokenBucketSource{S: src, TB: ratelimit.NewTokenBucket(rate, burst)}
	} else if cfg.Polygon.MinCallIntervalSec > 0 {
		interval := time.Duration(cfg.Polygon.MinCallIntervalSec) * time.Second
		src = &ratelimit.MinInterval{S: src, Interval: interval}
	}
	return src, nil
}
