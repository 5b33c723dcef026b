package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/veritasworks/veritas-core/internal/api"
	"github.com/veritasworks/veritas-core/internal/claims"
	"github.com/veritasworks/veritas-core/internal/config"
	"github.com/veritasworks/veritas-core/internal/corroboration"
	"github.com/veritasworks/veritas-core/internal/ingestion"
	"github.com/veritasworks/veritas-core/internal/insights"
	"github.com/veritasworks/veritas-core/internal/projection"
	"github.com/veritasworks/veritas-core/internal/reputation"
	"github.com/veritasworks/veritas-core/internal/similarity"
	"github.com/veritasworks/veritas-core/internal/trust"
	"github.com/veritasworks/veritas-core/internal/validator"
	"github.com/veritasworks/veritas-core/pkg/cache"
	"github.com/veritasworks/veritas-core/pkg/logger"
)

// Process exit codes.
const (
	exitOK        = 0
	exitConfig    = 2
	exitStore     = 3
	exitInvariant = 4
)

const sweepInterval = time.Hour

func main() {
	os.Exit(run())
}

func run() int {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "startup invariant violated: %v\n", r)
			os.Exit(exitInvariant)
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return exitConfig
	}

	log := logger.New(cfg.LogLevel)
	log.Info("starting veritas-core", "environment", cfg.Environment, "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Info("shutdown signal received")
		cancel()
	}()

	// Results cache: Redis when configured, otherwise every lookup misses.
	results := cache.NewNoop()
	if cfg.Cache.Addr != "" {
		results, err = cache.NewRedis(cache.Options{
			Addr:       cfg.Cache.Addr,
			Password:   cfg.Cache.Password,
			DB:         cfg.Cache.DB,
			DefaultTTL: time.Duration(cfg.Cache.TTL) * time.Second,
			TrustTTL:   time.Duration(cfg.Trust.CacheTTLSec) * time.Second,
		}, log)
		if err != nil {
			log.Error("results cache unreachable", "addr", cfg.Cache.Addr, "error", err)
			return exitStore
		}
		log.Info("results cache connected", "addr", cfg.Cache.Addr)
	} else {
		log.Warn("no cache configured, running cacheless")
	}

	// Validation pipeline components.
	tracker := reputation.NewTracker(reputation.Options{
		HalfLifeDays: float64(cfg.Pipeline.ReputationHalfLifeDays),
	}, log)

	var provider similarity.Provider
	if cfg.Similarity.ProviderURL != "" {
		provider = similarity.NewHTTPProvider(cfg.Similarity.ProviderURL,
			time.Duration(cfg.Similarity.Timeout)*time.Millisecond, cfg.Similarity.Retries, log)
		log.Info("external similarity provider configured", "url", cfg.Similarity.ProviderURL)
	}
	local, err := similarity.NewBleveProvider(log)
	if err != nil {
		log.Error("similarity index init failed", "error", err)
		return exitInvariant
	}

	engine := corroboration.NewEngine(corroboration.Options{
		Window: time.Duration(cfg.Pipeline.CorroborationWindowHours) * time.Hour,
	}, provider, local, tracker, log)

	v := validator.NewValidator(validator.Options{
		Deadline: time.Duration(cfg.Pipeline.ValidationDeadlineSec) * time.Second,
	}, claims.NewExtractor(log), engine, trust.NewCalculator(tracker, log), tracker, results, log)

	// Insight store: Postgres when configured, in-memory otherwise.
	var store insights.Store
	if cfg.Postgres.URL != "" {
		connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
		pg, err := insights.ConnectPostgres(connectCtx, cfg.Postgres.URL, log)
		connectCancel()
		if err != nil {
			log.Error("insight store unreachable", "error", err)
			return exitStore
		}
		store = pg
	} else {
		log.Warn("no insight store configured, insights held in memory only")
		store = insights.NewMemoryStore()
	}
	defer store.Close()

	insightSvc := insights.NewService(projection.NewEngine(log), insights.NewDetector(log),
		insights.NewLifecycle(log), store, results, log)

	// Background expiry sweep.
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if n, err := insightSvc.SweepExpired(ctx, now); err != nil {
					log.Warn("expiry sweep failed", "error", err)
				} else if n > 0 {
					log.Info("expired overdue insights", "count", n)
				}
			}
		}
	}()

	// Ingestion pipeline, only when the cleaned-articles store is configured.
	if cfg.Mongo.URL != "" {
		connectCtx, connectCancel := context.WithTimeout(ctx,
			time.Duration(cfg.Mongo.Timeout)*time.Millisecond)
		source, err := ingestion.ConnectMongo(connectCtx, cfg.Mongo.URL, cfg.Mongo.Database, log)
		connectCancel()
		if err != nil {
			log.Error("cleaned-articles store unreachable", "error", err)
			return exitStore
		}

		pipeline := ingestion.NewPipeline(ingestion.Options{
			Workers:        cfg.Pipeline.Workers,
			QueueFactor:    cfg.Pipeline.QueueFactor,
			StoreRetryBase: time.Duration(cfg.Pipeline.StoreRetryBaseMs) * time.Millisecond,
			StoreRetryMax:  cfg.Pipeline.StoreRetryMax,
		}, source, v, log)
		go func() {
			if err := pipeline.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("ingestion pipeline stopped", "error", err)
			}
		}()
	} else {
		log.Warn("no article source configured, ingestion pipeline disabled")
	}

	apiServer := api.NewServer(cfg, log, results, v, insightSvc)
	if err := apiServer.Start(ctx); err != nil {
		log.Error("server failed", "error", err)
		return 1
	}

	log.Info("veritas-core shutdown complete")
	return exitOK
}
