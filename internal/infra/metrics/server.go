package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// JobCounter reports how many jobs are currently in flight. The health
// payload exposes it so operators see load without scraping /metrics.
type JobCounter interface {
	ActiveCount() int
}

func newServeMux(jobs JobCounter) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":      "ok",
			"active_jobs": jobs.ActiveCount(),
		})
	})
	return mux
}

// StartMetricsServer serves /metrics and /healthz on a port separate from
// the public API. The caller shuts the returned server down.
func StartMetricsServer(port int, jobs JobCounter, logger *zap.Logger) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           newServeMux(jobs),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("metrics server listening", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", zap.Error(err))
		}
	}()

	return srv
}
