package web

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"signupdesk/internal/adapters/http/middleware"
	"signupdesk/internal/adapters/http/perf"
	"signupdesk/internal/application/controller"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Options configures the local UI server.
type Options struct {
	CSRFKey            []byte // 32 bytes
	SecureCookies      bool
	TrustedOrigins     []string
	SlowRequestMs      int
	RateLimitPerSecond int // 0 disables rate limiting
}

// server carries handler dependencies.
type server struct {
	ctrl      *controller.Controller
	collector *perf.Collector
	pages     *pageSet
}

// NewMux wires HTTP handlers for the client UI.
// PRE: ctrl has been started; opts.CSRFKey is 32 bytes
func NewMux(ctrl *controller.Controller, collector *perf.Collector, opts Options) (http.Handler, error) {
	pages, err := parsePages(templateFS)
	if err != nil {
		return nil, err
	}
	s := &server{ctrl: ctrl, collector: collector, pages: pages}

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(static)))
	s.registerRoutes(mux)

	middlewares := []func(http.Handler) http.Handler{
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.TrustedOrigins, opts.SecureCookies),
	}
	if opts.RateLimitPerSecond > 0 {
		middlewares = append(middlewares, middleware.RateLimit(middleware.NewRateLimiter(opts.RateLimitPerSecond, time.Second)))
	}
	middlewares = append(middlewares, middleware.Timing(collector, opts.SlowRequestMs))

	// Timing -> RateLimit -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux, middlewares...), nil
}

func (s *server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /refresh", s.handleRefresh)
	mux.HandleFunc("GET /login", s.handleLoginOpen)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("POST /login/close", s.handleLoginClose)
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /unregister", s.handleUnregister)
	mux.HandleFunc("GET /message", s.handleMessage)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /perf", s.handlePerf)
}
