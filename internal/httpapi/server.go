// Package httpapi exposes the listings, alert triage and unified search over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/DeafMist/legal-radar/internal/alerts"
	applog "github.com/DeafMist/legal-radar/internal/logger"
	"github.com/DeafMist/legal-radar/internal/metrics"
	"github.com/DeafMist/legal-radar/internal/models"
	"github.com/DeafMist/legal-radar/internal/query"
	"github.com/DeafMist/legal-radar/internal/search"
	"github.com/DeafMist/legal-radar/internal/sources"
)

// NewsService lists and fetches news.
type NewsService interface {
	List(ctx context.Context, req query.SearchRequest) ([]models.NewsItem, int64, error)
	Get(ctx context.Context, id string) (models.NewsItem, error)
}

// ReportService lists and fetches reports.
type ReportService interface {
	List(ctx context.Context, req query.SearchRequest) ([]models.ReportEntry, int64, error)
	Get(ctx context.Context, id string) (models.ReportEntry, error)
}

// AlertService triages gazette alerts.
type AlertService interface {
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context) ([]models.GazetteAlert, error)
	Processed(ctx context.Context, req query.SearchRequest) ([]models.GazetteAlert, error)
	Detail(ctx context.Context, id string) (sources.Detail, error)
	Transition(ctx context.Context, id string, action alerts.Action) (alerts.Transition, error)
}

// SearchService runs the unified search.
type SearchService interface {
	Search(ctx context.Context, req query.SearchRequest) (search.Result, error)
	Summary(ctx context.Context) (search.Summary, error)
}

// SummaryCache stores the rendered summary. A miss is (nil, false, nil).
type SummaryCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Deps are the collaborators of the server. Cache and Health are optional.
type Deps struct {
	News    NewsService
	Reports ReportService
	Alerts  AlertService
	Search  SearchService
	Cache   SummaryCache
	Health  func(ctx context.Context) error
}

// Options tune paging and timeouts.
type Options struct {
	DefaultPage    int
	MaxPage        int
	RequestTimeout time.Duration
}

// Server holds the handlers.
type Server struct {
	deps Deps
	opts Options
	log  *slog.Logger
}

// New creates a server. Zero options fall back to 20/100/5s.
func New(deps Deps, opts Options, logger *slog.Logger) *Server {
	if opts.DefaultPage <= 0 {
		opts.DefaultPage = 20
	}
	if opts.MaxPage < opts.DefaultPage {
		opts.MaxPage = max(100, opts.DefaultPage)
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 5 * time.Second
	}
	return &Server{deps: deps, opts: opts, log: applog.OrDiscard(logger)}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/news", s.handleNewsList)
	r.Get("/news/{id}", s.handleNewsGet)
	r.Get("/reports", s.handleReportsList)
	r.Get("/reports/{id}", s.handleReportsGet)

	r.Route("/alerts", func(r chi.Router) {
		r.Get("/", s.handleAlertsList)
		r.Get("/count", s.handleAlertsCount)
		r.Get("/processed", s.handleAlertsProcessed)
		r.Get("/{id}", s.handleAlertDetail)
		r.Post("/{id}/action", s.handleAlertAction)
	})

	r.Get("/search", s.handleSearch)
	r.Get("/summary", s.handleSummary)
	r.Get("/all", s.handleSummary)

	return r
}

func (s *Server) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.opts.RequestTimeout)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Health == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.deps.Health(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
