package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"catalogsite/internal/config"
	"catalogsite/internal/contact"
	"catalogsite/internal/i18n"
	"catalogsite/internal/index"
	"catalogsite/internal/metrics"
	"catalogsite/internal/search"
)

type Searcher interface {
	Search(ctx context.Context, locale, query string, p search.Page) (search.Result, error)
}

type IndexService interface {
	Load(ctx context.Context, locale string) ([]search.Item, error)
	Rebuild(ctx context.Context, locales []string) ([]index.SnapshotInfo, error)
}

type SnapshotLister interface {
	List(ctx context.Context) ([]index.SnapshotInfo, error)
}

type ContactSubmitter interface {
	Submit(ctx context.Context, form contact.Form, ip string) (string, error)
}

// Content is the CMS-backed locale metadata.
type Content interface {
	Locales(ctx context.Context) []i18n.Locale
	Translations(ctx context.Context, locale string) (map[string]string, error)
}

// HealthCheck reports whether one dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Search    Searcher
	Index     IndexService
	Snapshots SnapshotLister
	Contact   ContactSubmitter
	Content   Content
	Checks    map[string]HealthCheck
}

type Server struct {
	Config    config.Config
	Locales   i18n.Locales
	Resolver  *i18n.Resolver
	Search    Searcher
	Index     IndexService
	Snapshots SnapshotLister
	Contact   ContactSubmitter
	Content   Content
	Checks    map[string]HealthCheck

	trustedProxies []net.IPNet
	now            func() time.Time
}

func NewServer(cfg config.Config, deps Deps) (*Server, error) {
	if deps.Search == nil || deps.Index == nil {
		return nil, errors.New("server: search and index services are required")
	}

	locales, err := i18n.NewLocales(cfg.SupportedLocales, cfg.DefaultLocale)
	if err != nil {
		return nil, err
	}
	resolver := i18n.NewResolver(locales)
	resolver.OnRedirect = func(locale string) {
		metrics.LocaleRedirects.WithLabelValues(locale).Inc()
	}

	return &Server{
		Config:         cfg,
		Locales:        locales,
		Resolver:       resolver,
		Search:         deps.Search,
		Index:          deps.Index,
		Snapshots:      deps.Snapshots,
		Contact:        deps.Contact,
		Content:        deps.Content,
		Checks:         deps.Checks,
		trustedProxies: parseProxyCIDRs(cfg.TrustedProxies),
		now:            time.Now,
	}, nil
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	formatter := &middleware.DefaultLogFormatter{
		Logger:  log.New(log.Writer(), "", log.Flags()),
		NoColor: true,
	}
	r.Use(middleware.RequestLogger(formatter))
	r.Use(middleware.Recoverer)
	r.Use(secureHeaders)
	r.Use(s.Resolver.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	s.route(r, http.MethodGet, "/api/search", s.handleSearch)
	s.route(r, http.MethodGet, "/api/search-index", s.handleSearchIndex)
	s.route(r, http.MethodPost, "/api/rebuild-index", s.handleRebuildIndex)
	s.route(r, http.MethodGet, "/api/index-status", s.handleIndexStatus)
	s.route(r, http.MethodPost, "/api/contact", s.handleContact)
	s.route(r, http.MethodGet, "/api/locales", s.handleLocales)
	s.route(r, http.MethodGet, "/api/locale/switch", s.handleLocaleSwitch)
	s.route(r, http.MethodGet, "/locales/{file}", s.handleTranslations)
	s.route(r, http.MethodGet, "/sitemap.xml", s.handleSitemap)
	s.route(r, http.MethodGet, "/healthz", s.handleHealth)
	s.route(r, http.MethodGet, "/metrics", promhttp.Handler().ServeHTTP)

	return r
}

func (s *Server) route(r chi.Router, method, path string, h http.HandlerFunc) {
	r.With(s.requireAccess(accessFor(method, path))).MethodFunc(method, path, h)
}

// requestLocale prefers an explicit supported ?locale=, then the request's
// path prefix or Accept-Language.
func (s *Server) requestLocale(r *http.Request) string {
	if code := r.URL.Query().Get("locale"); s.Locales.Contains(code) {
		return code
	}
	return s.Locales.LocaleFromRequest(r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.Checks))
	for name, check := range s.Checks {
		if err := check(ctx); err != nil {
			log.Printf("healthz: %s: %v", name, err)
			checks[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	writeJSON(w, status, map[string]any{"status": state, "checks": checks})
}
