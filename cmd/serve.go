package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/launchsignal/tge-radar/internal/batch"
	"github.com/launchsignal/tge-radar/internal/model"
	"github.com/launchsignal/tge-radar/internal/task"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		// Scheduled full-platform batch crawl.
		var scheduler *cron.Cron
		if cfg.Schedule.CrawlCron != "" {
			scheduler = cron.New()
			_, err := scheduler.AddFunc(cfg.Schedule.CrawlCron, func() {
				b, err := env.Orchestrator.CreateBatch(ctx, nil, nil, cfg.Crawl.MaxCountPerPlatform, true)
				if err != nil {
					zap.L().Error("scheduled batch creation failed", zap.Error(err))
					return
				}
				if err := env.Orchestrator.Run(ctx, b.ID); err != nil {
					zap.L().Error("scheduled batch run failed",
						zap.String("batch_id", b.ID),
						zap.Error(err),
					)
				}
			})
			if err != nil {
				return eris.Wrapf(err, "invalid crawl cron %q", cfg.Schedule.CrawlCron)
			}
			scheduler.Start()
			defer scheduler.Stop()
			zap.L().Info("scheduled crawls enabled", zap.String("cron", cfg.Schedule.CrawlCron))
		}

		r := newRouter(env)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(env *appEnv) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/tasks", handleCreateTask(env))
		r.Get("/tasks", handleListTasks(env))
		r.Get("/tasks/{id}", handleGetTask(env))
		r.Delete("/tasks/{id}", handleCancelTask(env))

		r.Post("/batches", handleCreateBatch(env))
		r.Get("/batches/{id}", handleGetBatch(env))

		r.Post("/process", handleProcess(env))
		r.Get("/stats", handleStats(env))
	})

	return r
}

func handleCreateTask(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Platform string   `json:"platform"`
			Keywords []string `json:"keywords"`
			MaxCount int      `json:"max_count"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Platform == "" {
			writeError(w, http.StatusBadRequest, "platform is required")
			return
		}
		if req.MaxCount <= 0 {
			req.MaxCount = cfg.Crawl.MaxCountPerPlatform
		}

		t, err := env.Registry.Submit(model.Platform(req.Platform), req.Keywords, req.MaxCount)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		// Crawls run in the background; clients poll GET /api/tasks/{id}.
		// The request context dies with the response, so detach it.
		bgCtx := context.WithoutCancel(r.Context())
		go func() {
			if _, err := env.Registry.Execute(bgCtx, t.ID); err != nil {
				zap.L().Error("task execution failed",
					zap.String("task_id", t.ID),
					zap.Error(err),
				)
			}
		}()

		writeJSON(w, http.StatusAccepted, t)
	}
}

func handleListTasks(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit := 50
		if v := q.Get("limit"); v != "" {
			fmt.Sscanf(v, "%d", &limit)
		}
		tasks := env.Registry.List(
			model.TaskStatus(q.Get("status")),
			model.Platform(q.Get("platform")),
			limit,
		)
		writeJSON(w, http.StatusOK, tasks)
	}
}

func handleGetTask(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		t, err := env.Registry.Get(id)
		if err != nil {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}

		resp := map[string]any{"task": t}
		if result, err := env.Registry.Result(id); err == nil {
			resp["result"] = result
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleCancelTask(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		if err := env.Registry.Cancel(id); err != nil {
			if errors.Is(err, task.ErrNotFound) {
				writeError(w, http.StatusNotFound, "task not found")
				return
			}
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled", "task_id": id})
	}
}

func handleCreateBatch(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Platforms        []string `json:"platforms"`
			Keywords         []string `json:"keywords"`
			MaxPerPlatform   int      `json:"max_count_per_platform"`
			EnableEnrichment bool     `json:"enable_enrichment"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		platforms := make([]model.Platform, 0, len(req.Platforms))
		for _, p := range req.Platforms {
			platforms = append(platforms, model.Platform(p))
		}
		if req.MaxPerPlatform <= 0 {
			req.MaxPerPlatform = cfg.Crawl.MaxCountPerPlatform
		}

		b, err := env.Orchestrator.CreateBatch(r.Context(), platforms, req.Keywords, req.MaxPerPlatform, req.EnableEnrichment)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		bgCtx := context.WithoutCancel(r.Context())
		go func() {
			if err := env.Orchestrator.Run(bgCtx, b.ID); err != nil {
				zap.L().Error("batch run failed",
					zap.String("batch_id", b.ID),
					zap.Error(err),
				)
			}
		}()

		writeJSON(w, http.StatusAccepted, b)
	}
}

func handleGetBatch(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := env.Orchestrator.Status(chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, batch.ErrNotFound) {
				writeError(w, http.StatusNotFound, "batch not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func handleProcess(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Force bool `json:"force"`
		}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		}

		stats, err := env.Scheduler.ProcessPending(r.Context(), req.Force)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func handleStats(env *appEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := env.Scheduler.ProcessingStats(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
