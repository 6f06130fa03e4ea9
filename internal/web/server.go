package web

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/vbonduro/lostfound/internal/photostore"
	"github.com/vbonduro/lostfound/internal/service"
	"github.com/vbonduro/lostfound/internal/ui"
)

type Options struct {
	// RateLimitRPS and RateLimitBurst bound mutating requests per client IP.
	// A zero RPS disables the limit.
	RateLimitRPS   float64
	RateLimitBurst int
}

type Server struct {
	service    *service.ItemService
	templates  embed.FS
	photoStore photostore.PhotoStore
	limiter    *rateLimiter
	mux        *http.ServeMux
	tmplFuncs  template.FuncMap
	logger     *slog.Logger
	now        func() time.Time
}

// NewServer wires the HTTP routes. ps may be nil when photos are not stored
// by this application; /photos/{key} then always answers 404.
func NewServer(svc *service.ItemService, tmpl embed.FS, ps photostore.PhotoStore, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		service:    svc,
		templates:  tmpl,
		photoStore: ps,
		mux:        http.NewServeMux(),
		logger:     logger,
		now:        time.Now,
		tmplFuncs: template.FuncMap{
			"formatDate": ui.FormatDate,
			"formatTime": ui.FormatTime,
			"dateInput":  ui.FormatDateForInput,
			"truncate":   ui.Truncate,
			"noItems":    ui.NoItemsMessage,
			"lower":      strings.ToLower,
			"imageSrc":   imageSrc,
		},
	}
	if opts.RateLimitRPS > 0 {
		s.limiter = newRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.HandleFunc("GET /lost", s.handleReportForm)
	s.mux.HandleFunc("GET /found", s.handleReportForm)
	s.mux.HandleFunc("GET /dashboard", s.handleDashboard)
	s.mux.HandleFunc("GET /go/{page}", s.handleNavigate)

	s.mux.HandleFunc("POST /items", s.handleCreateItem)
	s.mux.HandleFunc("GET /items/{id}/edit", s.handleEditForm)
	s.mux.HandleFunc("POST /items/{id}/edit", s.handleEditItem)
	s.mux.HandleFunc("GET /items/{id}/delete", s.handleDeleteConfirm)
	s.mux.HandleFunc("POST /items/{id}/delete", s.handleDeleteItem)
	s.mux.HandleFunc("DELETE /items/{id}", s.handleDeleteItemHX)

	s.mux.HandleFunc("POST /photos/preview", s.handlePreviewPhoto)
	s.mux.HandleFunc("GET /photos/{key}", s.handleGetPhoto)

	s.mux.HandleFunc("GET /api/items", s.handleAPIListItems)
	s.mux.HandleFunc("GET /api/items/{id}", s.handleAPIGetItem)

	s.mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		s.logger.Warn("unknown page", "path", r.URL.Path)
		http.Redirect(w, r, ui.PageHome.Path(), http.StatusSeeOther)
	})
}

// securityHeaders sets the browser security headers on every response.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy",
			"default-src 'self'; "+
				"script-src 'self' 'unsafe-inline' https://unpkg.com; "+
				"style-src 'self' 'unsafe-inline' https://fonts.googleapis.com; "+
				"font-src https://fonts.gstatic.com; "+
				"img-src 'self' data: https:; "+
				"connect-src 'self'")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder wraps http.ResponseWriter to capture the written status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var h http.Handler = s.mux
	if s.limiter != nil {
		h = s.limiter.Middleware(h)
	}
	requestLogger(s.logger, securityHeaders(h)).ServeHTTP(w, r)
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("starting server", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return srv.ListenAndServe()
}

// renderPage parses and executes a full-page template set with a 200 status.
func (s *Server) renderPage(w http.ResponseWriter, data any, files ...string) error {
	return s.renderPageStatus(w, http.StatusOK, data, files...)
}

// renderPageStatus renders into a buffer first so a template failure never
// leaves a half-written page behind.
func (s *Server) renderPageStatus(w http.ResponseWriter, status int, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

// renderPartial parses and executes a single named partial template.
// The file must contain exactly one {{define "name"}}...{{end}} block.
func (s *Server) renderPartial(w http.ResponseWriter, file string, data any) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, file)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// ParseFS registers both the file-basename template and any {{define}} blocks.
	basename := file
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		basename = file[idx+1:]
	}
	for _, t := range tmpl.Templates() {
		if n := t.Name(); n != "" && n != basename {
			return t.Execute(w, data)
		}
	}
	return tmpl.ExecuteTemplate(w, basename, data)
}

// imageSrc marks a photo reference as safe for an img src. Inline image data
// and https or /photos/ URLs pass; anything else renders as an empty src.
func imageSrc(ref string) template.URL {
	switch {
	case strings.HasPrefix(ref, "data:image/"),
		strings.HasPrefix(ref, "https://"),
		strings.HasPrefix(ref, "/photos/"):
		return template.URL(ref)
	}
	return ""
}
