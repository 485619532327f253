package apihttp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"mediadownloader/web/internal/download"
	"mediadownloader/web/internal/loader"
	"mediadownloader/web/internal/notify"
	"mediadownloader/web/internal/selection"
)

type PageLoader interface {
	Home(ctx context.Context) loader.Result[loader.HomeProps]
	Search(ctx context.Context, query url.Values) loader.Result[loader.SearchProps]
	Details(ctx context.Context, channel, id string, query url.Values) loader.Result[loader.DetailsProps]
	Downloads(ctx context.Context) loader.Result[loader.DownloadsProps]
	HistoryEnabled() bool
}

type DownloadService interface {
	Submit(ctx context.Context, target download.Target, sel selection.Selection, sink notify.Sink) download.Outcome
}

type Server struct {
	pages          PageLoader
	downloads      DownloadService
	flash          notify.FlashStore
	logger         *slog.Logger
	publicAPIURL   string
	rateLimitRPS   float64
	rateLimitBurst int
	views          *views
}

type ServerOption func(*Server)

func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

func WithFlashStore(store notify.FlashStore) ServerOption {
	return func(s *Server) {
		s.flash = store
	}
}

// WithPublicAPIURL sets the browser-facing API base URL exposed to pages.
func WithPublicAPIURL(baseURL string) ServerOption {
	return func(s *Server) {
		s.publicAPIURL = baseURL
	}
}

func WithRateLimit(rps float64, burst int) ServerOption {
	return func(s *Server) {
		if rps > 0 && burst > 0 {
			s.rateLimitRPS = rps
			s.rateLimitBurst = burst
		}
	}
}

func NewServer(pages PageLoader, downloads DownloadService, options ...ServerOption) *Server {
	server := &Server{
		pages:          pages,
		downloads:      downloads,
		logger:         slog.Default(),
		rateLimitRPS:   20,
		rateLimitBurst: 40,
		views:          mustParseViews(),
	}
	for _, option := range options {
		if option != nil {
			option(server)
		}
	}
	if server.logger == nil {
		server.logger = slog.Default()
	}
	if server.flash == nil {
		server.flash = notify.NewMemoryFlashStore(0)
	}
	return server
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.Handle("GET /static/", staticHandler())
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /search", s.handleSearch)
	mux.HandleFunc("GET /channels/{channel}/media/{id}", s.handleDetails)
	mux.HandleFunc("POST /channels/{channel}/media/{id}/download", s.handleDownload)
	mux.HandleFunc("GET /downloads", s.handleDownloads)
	mux.HandleFunc("/", s.handleNotFound)
	traced := otelhttp.NewHandler(loggingMiddleware(s.logger, mux), "media-downloader-web",
		otelhttp.WithFilter(func(r *http.Request) bool {
			p := r.URL.Path
			return p != "/metrics" && p != "/health"
		}),
	)
	return recoveryMiddleware(s.logger, s, rateLimitMiddleware(s.rateLimitRPS, s.rateLimitBurst, metricsMiddleware(traced)))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
