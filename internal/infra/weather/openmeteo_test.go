package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"writer_digest_bot/internal/domain/digest"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, status int, body string) (*httptest.Server, *url.URL) {
	t.Helper()
	got := &url.URL{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = *r.URL
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestToday(t *testing.T) {
	srv, reqURL := testServer(t, http.StatusOK, `{
		"daily": {
			"time": ["2026-10-14", "2026-10-15"],
			"weathercode": [3, 61],
			"temperature_2m_max": [22.4, 19.0],
			"temperature_2m_min": [15.1, 13.2]
		}
	}`)

	c := NewClient(srv.Client(), srv.URL+"/v1/forecast", 35.6895, 139.6917, "Asia/Tokyo")
	f, err := c.Today(context.Background())
	require.NoError(t, err)

	want := &digest.Forecast{MaxTemp: 22.4, MinTemp: 15.1, WeatherCode: 3, HasCode: true}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("forecast mismatch (-want +got):\n%s", diff)
	}

	q := reqURL.Query()
	assert.Equal(t, "/v1/forecast", reqURL.Path)
	assert.Equal(t, "35.6895", q.Get("latitude"))
	assert.Equal(t, "139.6917", q.Get("longitude"))
	assert.Equal(t, "Asia/Tokyo", q.Get("timezone"))
	assert.Equal(t, "weathercode,temperature_2m_max,temperature_2m_min", q.Get("daily"))
}

func TestTodayMissingField(t *testing.T) {
	srv, _ := testServer(t, http.StatusOK, `{"daily": {"time": ["2026-10-14"], "temperature_2m_max": [22.4]}}`)

	c := NewClient(srv.Client(), srv.URL, 0, 0, "UTC")
	_, err := c.Today(context.Background())
	require.ErrorIs(t, err, ErrMissingField)
}

func TestTodayNullValue(t *testing.T) {
	srv, _ := testServer(t, http.StatusOK, `{"daily": {"temperature_2m_max": [null], "temperature_2m_min": [10]}}`)

	c := NewClient(srv.Client(), srv.URL, 0, 0, "UTC")
	_, err := c.Today(context.Background())
	require.ErrorIs(t, err, ErrMissingField)
}

func TestTodayHTTPError(t *testing.T) {
	srv, _ := testServer(t, http.StatusBadGateway, "upstream down")

	c := NewClient(srv.Client(), srv.URL, 0, 0, "UTC")
	_, err := c.Today(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream down")
}

func TestTodayMalformedJSON(t *testing.T) {
	srv, _ := testServer(t, http.StatusOK, `{"daily": [`)

	c := NewClient(srv.Client(), srv.URL, 0, 0, "UTC")
	_, err := c.Today(context.Background())
	require.Error(t, err)
}
