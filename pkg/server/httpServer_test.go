package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/staff-console/pkg/metrics"
	"github.com/iota-uz/staff-console/pkg/server"
)

type pingController struct{}

func (pingController) Key() string { return "/ping" }

func (pingController) Register(r *mux.Router) {
	r.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("pong ", 500)))
	}).Methods(http.MethodGet)
}

func tag(name string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Seen", name)
			next.ServeHTTP(w, r)
		})
	}
}

func serve(h http.Handler, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHTTPServer_Handler(t *testing.T) {
	registry := prometheus.NewRegistry()
	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "ping_hits_total", Help: "pings"})
	registry.MustRegister(hits)
	hits.Add(3)

	hs := server.NewHTTPServer(
		[]server.Controller{pingController{}, metrics.NewPrometheusController("/metrics", registry)},
		[]mux.MiddlewareFunc{tag("mw")},
		nil, nil,
	)
	hs.Wrap = append(hs.Wrap, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Seen", "wrap")
			next.ServeHTTP(w, r)
		})
	})
	h := hs.Handler()

	rec := serve(h, http.MethodGet, "/ping", http.Header{"Accept-Encoding": {"gzip"}})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	require.Equal(t, []string{"wrap", "mw"}, rec.Header().Values("X-Seen"))

	rec = serve(h, http.MethodGet, "/missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, []string{"wrap", "mw"}, rec.Header().Values("X-Seen"))

	rec = serve(h, http.MethodPost, "/ping", nil)
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = serve(h, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ping_hits_total 3")
}
