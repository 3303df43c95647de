// Package mockapi is an in-memory Django-style API used for local
// development and end-to-end tests of the console.
package mockapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"golang.org/x/crypto/bcrypt"

	"github.com/iota-uz/staff-console/pkg/configuration"
	"github.com/iota-uz/staff-console/pkg/httpapi"
	"github.com/iota-uz/staff-console/pkg/metrics"
	"github.com/iota-uz/staff-console/pkg/middleware"
	"github.com/iota-uz/staff-console/pkg/server"
	"github.com/iota-uz/staff-console/pkg/types"
)

type Options struct {
	// Prefix is the mount point of the API, e.g. "/api".
	Prefix          string
	CSRFCookieName  string
	CSRFHeaderName  string
	RequestIDHeader string
	MaxUploadSize   int64
	// RateLimit is the per-client request budget per second; 0 disables it.
	RateLimit   int
	MetricsPath string
	BcryptCost  int
	Seed        SeedOptions
	Logger      *logrus.Logger
	Now         func() time.Time
}

func (o *Options) setDefaults() {
	if o.Prefix == "" {
		o.Prefix = "/api"
	}
	o.Prefix = "/" + strings.Trim(o.Prefix, "/")
	if o.CSRFCookieName == "" {
		o.CSRFCookieName = "csrftoken"
	}
	if o.CSRFHeaderName == "" {
		o.CSRFHeaderName = "X-CSRFToken"
	}
	if o.RequestIDHeader == "" {
		o.RequestIDHeader = "X-Request-ID"
	}
	if o.MaxUploadSize == 0 {
		o.MaxUploadSize = 16 << 20
	}
	if o.MetricsPath == "" {
		o.MetricsPath = "/debug/prometheus"
	}
	if o.BcryptCost == 0 {
		o.BcryptCost = bcrypt.DefaultCost
	}
	if o.Logger == nil {
		o.Logger = logrus.StandardLogger()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// OptionsFromConfig maps the environment configuration onto server options.
func OptionsFromConfig(conf *configuration.Configuration) Options {
	opts := Options{
		CSRFCookieName:  conf.API.CSRFCookieName,
		CSRFHeaderName:  conf.API.CSRFHeaderName,
		RequestIDHeader: conf.API.RequestIDHeader,
		MaxUploadSize:   conf.API.MaxUploadSize,
		MetricsPath:     conf.MockAPI.MetricsPath,
		Seed:            SeedOptions{Employees: conf.MockAPI.SeedEmployees},
		Logger:          conf.Logger(),
	}
	if conf.RateLimit.Enabled {
		opts.RateLimit = conf.RateLimit.GlobalRPS
	}
	return opts
}

type Server struct {
	opts     Options
	store    *Store
	registry *prometheus.Registry
	requests *prometheus.CounterVec
}

// New builds a seeded server.
func New(opts Options) (*Server, error) {
	opts.setDefaults()
	s := &Server{
		opts:     opts,
		store:    NewStore(),
		registry: prometheus.NewRegistry(),
	}
	s.requests = promauto.With(s.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: "mockapi",
		Name:      "requests_total",
		Help:      "Requests served by route and status class.",
	}, []string{"route", "method", "class"})

	seed := opts.Seed
	if seed.Today.IsZero() {
		now := opts.Now()
		seed.Today = types.NewDate(now.Year(), now.Month(), now.Day())
	}
	if err := Seed(s.store, seed, opts.BcryptCost); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Store() *Store {
	return s.store
}

func (s *Server) today() types.Date {
	now := s.opts.Now()
	return types.NewDate(now.Year(), now.Month(), now.Day())
}

func (s *Server) Key() string {
	return s.opts.Prefix
}

// Register mounts the API routes.
func (s *Server) Register(r *mux.Router) {
	api := r.PathPrefix(s.opts.Prefix).Subrouter()
	api.Use(s.csrf, s.tokenAuth(map[string]bool{
		s.opts.Prefix + "/auth/login/":       true,
		s.opts.Prefix + "/users/registrate/": true,
	}), s.countRequests)

	api.HandleFunc("/auth/login/", s.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout/", s.logout).Methods(http.MethodPost)
	api.HandleFunc("/users/registrate/", s.register).Methods(http.MethodPost)

	store := s.store
	api.HandleFunc("/employees/", list(store.Employees, store.RenderEmployee)).Methods(http.MethodGet)
	api.HandleFunc("/employees/", s.createEmployee).Methods(http.MethodPost)
	api.HandleFunc("/employees/{id}/", get(store.Employees, store.RenderEmployee)).Methods(http.MethodGet)
	api.HandleFunc("/employees/{id}/", s.patchEmployee()).Methods(http.MethodPatch)
	api.HandleFunc("/employees/{id}/", remove(store.Employees)).Methods(http.MethodDelete)

	api.HandleFunc("/organizations/", list(store.Organizations, store.RenderOrganization)).Methods(http.MethodGet)
	api.HandleFunc("/organizations/", s.createOrganization).Methods(http.MethodPost)
	api.HandleFunc("/organizations/{id}/", get(store.Organizations, store.RenderOrganization)).Methods(http.MethodGet)
	api.HandleFunc("/organizations/{id}/", s.patchOrganization()).Methods(http.MethodPatch)
	api.HandleFunc("/organizations/{id}/", remove(store.Organizations)).Methods(http.MethodDelete)

	api.HandleFunc("/tasks/", list(store.Tasks, store.RenderTask)).Methods(http.MethodGet)
	api.HandleFunc("/tasks/", s.createTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}/", get(store.Tasks, store.RenderTask)).Methods(http.MethodGet)
	api.HandleFunc("/tasks/{id}/", s.patchTask()).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{id}/", remove(store.Tasks)).Methods(http.MethodDelete)

	identity := func(a types.Attachment) types.Attachment { return a }
	api.HandleFunc("/attachments/", s.uploadAttachment).Methods(http.MethodPost)
	api.HandleFunc("/attachments/{id}/", get(store.Attachments, identity)).Methods(http.MethodGet)
	api.HandleFunc("/attachments/{id}/", remove(store.Attachments)).Methods(http.MethodDelete)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		s.requests.WithLabelValues(route, r.Method, strconv.Itoa(status/100)+"xx").Inc()
	})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "not found", nil)
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
}

// HTTPServer wraps the API routes in request logging, gzip, rate limiting
// and CORS, next to the metrics endpoint.
func (s *Server) HTTPServer() *server.HTTPServer {
	logOpts := middleware.DefaultLoggerOptions()
	logOpts.RequestIDHeader = s.opts.RequestIDHeader
	hs := server.NewHTTPServer(
		[]server.Controller{
			s,
			metrics.NewPrometheusController(s.opts.MetricsPath, prometheus.Gatherers{s.registry, prometheus.DefaultGatherer}),
		},
		[]mux.MiddlewareFunc{middleware.WithLogger(s.opts.Logger, logOpts)},
		http.HandlerFunc(notFound),
		http.HandlerFunc(methodNotAllowed),
	)
	if s.opts.RateLimit > 0 {
		rate := limiter.Rate{Period: time.Second, Limit: int64(s.opts.RateLimit)}
		limit := stdlib.NewMiddleware(limiter.New(memory.NewStore(), rate),
			stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, _ *http.Request) {
				_ = httpapi.WriteError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
			}))
		hs.Wrap = append(hs.Wrap, limit.Handler)
	}
	hs.Wrap = append(hs.Wrap, cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", s.opts.CSRFHeaderName, s.opts.RequestIDHeader},
		ExposedHeaders:   []string{s.opts.RequestIDHeader},
		AllowCredentials: true,
	}).Handler)
	return hs
}

func (s *Server) Handler() http.Handler {
	return s.HTTPServer().Handler()
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.opts.Logger.WithField("component", "mockapi").WithField("addr", addr).Info("mock api listening")
	return s.HTTPServer().Start(ctx, addr)
}
