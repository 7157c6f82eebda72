package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Outcome label values.
const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
	OutcomeOK      = "ok"
	OutcomeDenied  = "denied"
	OutcomeUsage   = "usage"
)

var (
	DigestSubActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "digestbot", Name: "digest_subactions_total", Help: "Digest sub-action outcomes by role."},
		[]string{"role", "outcome"},
	)
	DigestRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "digestbot", Name: "digest_runs_total", Help: "Daily digest ticks by outcome."},
		[]string{"outcome"},
	)
	Commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "digestbot", Name: "commands_total", Help: "Handled chat commands by outcome."},
		[]string{"command", "outcome"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DigestSubActions)
	reg.MustRegister(DigestRuns)
	reg.MustRegister(Commands)
}

// Server exposes /metrics for a registry.
type Server struct {
	srv    *http.Server
	logger *logrus.Entry
}

func NewServer(addr string, gatherer prometheus.Gatherer, logger *logrus.Entry) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &Server{
		srv:    &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		logger: logger,
	}
}

func (s *Server) Start() {
	go func() {
		s.logger.WithField("addr", s.srv.Addr).Info("Metrics server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.WithError(err).Error("Metrics server stopped")
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler returns the HTTP handler, used in tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
