package monitor

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/turtacn/hestia/pkg/logger"
)

// StatusSource is what the status endpoints report on.
type StatusSource interface {
	// Ready reports whether the start phase has completed.
	Ready() bool
	// StatusReport returns a JSON-encodable view of the lifecycle.
	StatusReport() any
}

// NewRouter serves:
//   - GET /metrics - Prometheus exposition from gatherer
//   - GET /healthz - 200 while running, 503 otherwise
//   - GET /status  - JSON lifecycle snapshot
func NewRouter(src StatusSource, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if !src.Ready() {
			http.Error(w, "not running", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(src.StatusReport()); err != nil {
			logger.Log.Error("Status encode failed", "err", err)
		}
	})

	return r
}

// StartServer serves h on addr in the background. Callers shut it down through the
// returned server.
func StartServer(addr string, h http.Handler) *http.Server {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Log.Info("Status server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Status server failed", "err", err)
		}
	}()
	return srv
}

// Personal.AI order the ending
