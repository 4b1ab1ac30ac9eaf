package httpapi

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"
)

// Config holds server configuration (teacher's internal/server.Config shape).
type Config struct {
	Addr string
}

// Server is the HTTP facade over an engine.Engine.
type Server struct {
	config  Config
	eng     engineHandle
	runs    *RunRegistry
	httpSrv *http.Server
	logger  *log.Logger
}

// New creates a Server. logging follows the teacher's own convention
// (log.New(os.Stderr, ...)), not a third-party structured logger — see
// DESIGN.md.
func New(cfg Config, eng EngineLike) *Server {
	s := &Server{
		config: cfg,
		eng:    engineHandle{eng: eng},
		runs:   NewRunRegistry(),
		logger: log.New(os.Stderr, "[flowdag-server] ", log.LstdFlags),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /runs", s.handleSubmitRun)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /runs/{id}/events", s.handleRunEvents)
	mux.HandleFunc("GET /functions", s.handleListFunctions)

	s.httpSrv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks, serving until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
