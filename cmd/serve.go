package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/osint-enrich/internal/enrich"
	"github.com/sells-group/osint-enrich/internal/job"
	"github.com/sells-group/osint-enrich/internal/model"
	"github.com/sells-group/osint-enrich/internal/store"
)

const serviceVersion = "2.0.0"

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the job control server",
	Long:  "Serves endpoints to start enrichment jobs, poll live progress, and check health.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runner := enrich.NewRunner(buildEnricher(cfg))
		js := &jobServer{
			store:    st,
			driver:   job.NewDriver(st, runner, nil, cfg.Report.Dir),
			progress: enrich.NewProgress(0),
			defaults: model.JobParams{
				BatchSize:  cfg.Processing.BatchSize,
				MaxWorkers: cfg.Processing.MaxWorkers,
			},
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: buildRouter(ctx, js),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// jobDriver is the slice of job.Driver the server exercises.
type jobDriver interface {
	Start(ctx context.Context, params model.JobParams) (*model.Job, error)
	Complete(ctx context.Context, jb *model.Job, progress *enrich.Progress) (*model.JobReport, error)
}

// jobServer holds the single-job-at-a-time state behind the HTTP
// surface. One job may run at once; /process returns 409 while busy.
type jobServer struct {
	store    store.Store
	driver   jobDriver
	progress *enrich.Progress
	defaults model.JobParams

	mu        sync.Mutex
	running   bool
	currentID string
}

// tryStart claims the running slot. Returns false when a job is active.
func (s *jobServer) tryStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return false
	}
	s.running = true
	return true
}

func (s *jobServer) setCurrent(id string) {
	s.mu.Lock()
	s.currentID = id
	s.mu.Unlock()
}

func (s *jobServer) finish() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *jobServer) state() (running bool, currentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running, s.currentID
}

// buildRouter wires the HTTP surface. jobCtx bounds background jobs so
// server shutdown cancels a running batch.
func buildRouter(jobCtx context.Context, s *jobServer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/", s.handleInfo)
	r.Get("/health", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Post("/process", s.handleProcess(jobCtx))

	return r
}

func (s *jobServer) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "osint-enrich",
		"version": serviceVersion,
		"endpoints": map[string]string{
			"health":  "/health",
			"status":  "/status",
			"process": "/process",
		},
	})
}

func (s *jobServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		zap.L().Error("health check failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().UTC(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"version":   serviceVersion,
		"timestamp": time.Now().UTC(),
	})
}

func (s *jobServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	running, currentID := s.state()
	status := "idle"
	if running {
		status = "running"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      status,
		"current_job": currentID,
		"progress":    s.progress.Snapshot(),
	})
}

// processRequest uses pointers so an omitted field falls back to the
// configured default while an explicit zero is rejected.
type processRequest struct {
	BatchSize  *int `json:"batch_size"`
	MaxWorkers *int `json:"max_workers"`
}

func (s *jobServer) handleProcess(jobCtx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req processRequest
		if r.Body != nil && r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
		}

		params := s.defaults
		if req.BatchSize != nil {
			params.BatchSize = *req.BatchSize
		}
		if req.MaxWorkers != nil {
			params.MaxWorkers = *req.MaxWorkers
		}
		if params.BatchSize <= 0 || params.MaxWorkers <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "batch_size and max_workers must be positive",
			})
			return
		}

		if !s.tryStart() {
			_, currentID := s.state()
			writeJSON(w, http.StatusConflict, map[string]string{
				"error":       "processing already in progress",
				"current_job": currentID,
			})
			return
		}

		jb, err := s.driver.Start(r.Context(), params)
		if err != nil {
			s.finish()
			zap.L().Error("job start failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to start job"})
			return
		}
		s.setCurrent(jb.ID)

		go func() {
			defer s.finish()
			if _, err := s.driver.Complete(jobCtx, jb, s.progress); err != nil {
				zap.L().Error("job failed", zap.String("job_id", jb.ID), zap.Error(err))
			}
		}()

		writeJSON(w, http.StatusAccepted, map[string]any{
			"status": "accepted",
			"job_id": jb.ID,
			"params": params,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
