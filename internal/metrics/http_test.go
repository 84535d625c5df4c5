package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTPMetrics(t *testing.T) (*HTTPMetrics, http.Handler) {
	t.Helper()
	m := NewHTTPMetrics("test")
	require.NoError(t, m.Register(prometheus.NewRegistry()))

	router := chi.NewRouter()
	router.Use(m.Middleware)
	router.Get("/v1/transaction/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	router.Get("/status", func(w http.ResponseWriter, _ *http.Request) {})
	return m, router
}

func TestHTTPMetrics_UsesRoutePattern(t *testing.T) {
	m, router := newTestHTTPMetrics(t)

	for _, id := range []string{"a", "b", "c"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/transaction/"+id, nil))
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/v1/transaction/{id}", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requests))
}

func TestHTTPMetrics_ImplicitOK(t *testing.T) {
	m, router := newTestHTTPMetrics(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/status", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("GET", "/status", "200")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestHTTPMetrics_RegisterTwiceFails(t *testing.T) {
	m := NewHTTPMetrics("test")
	registry := prometheus.NewRegistry()

	require.NoError(t, m.Register(registry))
	assert.Error(t, m.Register(registry))
}
