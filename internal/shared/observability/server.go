package observability

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthFunc reports component health for the /health endpoint.
type HealthFunc func(ctx context.Context) map[string]string

type Server struct {
	addr   string
	health HealthFunc
	server *http.Server
}

func NewServer(addr string, health HealthFunc) *Server {
	return &Server{addr: addr, health: health}
}

// Handler returns the mux serving /metrics and /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "up"}
		if s.health != nil {
			for k, v := range s.health(r.Context()) {
				status[k] = v
			}
		}
		w.Header().Set("Content-Type", "application/json")
		if status["status"] != "up" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(status)
	})
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("observability server starting", "addr", s.addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("observability server failed", "error", err)
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
