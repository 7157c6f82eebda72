package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"writer_digest_bot/internal/infra/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerExposesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterCollectors(reg)
	Commands.WithLabelValues("ping", OutcomeOK).Inc()

	srv := NewServer(":0", reg, logger.Discard())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `digestbot_commands_total{command="ping",outcome="ok"}`)
}

func TestHealthz(t *testing.T) {
	srv := NewServer(":0", prometheus.NewRegistry(), logger.Discard())
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "ok", rec.Body.String())
}
