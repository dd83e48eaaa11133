package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/launchsignal/tge-radar/internal/batch"
	"github.com/launchsignal/tge-radar/internal/dedup"
	"github.com/launchsignal/tge-radar/internal/enrich"
	"github.com/launchsignal/tge-radar/internal/ingest"
	"github.com/launchsignal/tge-radar/internal/model"
	"github.com/launchsignal/tge-radar/internal/platform"
	"github.com/launchsignal/tge-radar/internal/store"
	"github.com/launchsignal/tge-radar/internal/task"
	"github.com/launchsignal/tge-radar/pkg/crawler"
	"github.com/launchsignal/tge-radar/pkg/llm"
)

// appEnv holds the initialized store, adapter set and pipeline components
// shared by the crawl/batch/process/serve commands.
type appEnv struct {
	Store        store.Store
	Adapters     *platform.Set
	Registry     *task.Registry
	Orchestrator *batch.Orchestrator
	Scheduler    *enrich.Scheduler
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "tge-radar.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEnv sets up the store, sidecar adapters, classifier, registry,
// orchestrator and enrichment scheduler. Callers should defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	sidecar := crawler.NewClient(cfg.Crawl.BridgeURL)
	adapters := make(map[model.Platform]platform.Adapter, len(cfg.Crawl.Platforms))
	for _, p := range cfg.Crawl.Platforms {
		adapters[model.Platform(p)] = platform.NewBridge(model.Platform(p), sidecar)
	}
	set := platform.NewSet(adapters)

	gate := dedup.NewGate()
	classifier := ingest.NewClassifier(gate, st,
		time.Duration(cfg.Dedup.ProjectWindowHours)*time.Hour)
	registry := task.NewRegistry(set, classifier,
		time.Duration(cfg.Crawl.TimeoutSecs)*time.Second)

	llmClient := llm.NewClient(llm.Config{
		APIKey:            cfg.LLM.Key,
		Model:             cfg.LLM.Model,
		MaxTokens:         int64(cfg.LLM.MaxTokens),
		Temperature:       cfg.LLM.Temperature,
		Timeout:           time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		RequestsPerMinute: cfg.LLM.RequestsPerMin,
	})
	scheduler := enrich.NewScheduler(st, enrich.NewPipeline(llmClient),
		cfg.Enrich.BatchSize, cfg.Enrich.MaxConcurrent)

	orchestrator := batch.NewOrchestrator(registry, set, scheduler)

	zap.L().Info("environment initialized",
		zap.String("store", cfg.Store.Driver),
		zap.Int("platforms", len(adapters)),
		zap.String("model", cfg.LLM.Model),
	)

	return &appEnv{
		Store:        st,
		Adapters:     set,
		Registry:     registry,
		Orchestrator: orchestrator,
		Scheduler:    scheduler,
	}, nil
}
