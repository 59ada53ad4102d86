package observability

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer builds the metrics and health listener
func NewServer(addr string, checks map[string]HealthCheckFunc) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", HealthCheckHandler())
	mux.HandleFunc("/ready", ReadinessHandler(checks))

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartServer serves in the background until the server is shut down
func StartServer(server *http.Server) {
	logger := GetLogger()

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Metrics listener started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Metrics listener failed")
		}
	}()
}
