package server

import (
	"context"
	"net/http"
	"time"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/config"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/handlers"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/metrics"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/middleware"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

type registrar interface {
	Register(mux *http.ServeMux)
}

// Routes registers every handler on a fresh mux.
func Routes(deps *handlers.Deps, m *metrics.Metrics, startedAt time.Time) *http.ServeMux {
	mux := http.NewServeMux()
	for _, h := range []registrar{
		handlers.NewHealthHandler(startedAt, deps),
		handlers.NewAuthHandler(deps),
		handlers.NewGoogleHandler(deps),
		handlers.NewUserHandler(deps),
		handlers.NewPaymentHandler(deps),
		handlers.NewLedgerHandler(deps),
		handlers.NewMealHandler(deps),
		handlers.NewMessageHandler(deps),
		handlers.NewSettingsHandler(deps),
		handlers.NewDashboardHandler(deps),
		handlers.NewReportHandler(deps),
		handlers.NewMediaHandler(deps),
	} {
		h.Register(mux)
	}
	mux.Handle("GET /metrics", m.Handler())
	return mux
}

// Handler wraps the routes in the middleware chain. Logging is outermost so
// every response, including CSRF and CORS rejections, gets a request id.
func Handler(cfg config.Config, deps *handlers.Deps, m *metrics.Metrics) http.Handler {
	mux := Routes(deps, m, time.Now())

	var h http.Handler = mux
	if cfg.CSRFEnabled {
		h = middleware.CSRF([]byte(cfg.CSRFKey), cfg.CookieSecure, cfg.CORSOrigins, h)
	}
	h = middleware.CORS(cfg.CORSOrigins, h)
	h = middleware.Metrics(m, mux, h)
	return middleware.Logging(deps.Logger, h)
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps *handlers.Deps, m *metrics.Metrics) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           Handler(cfg, deps, m),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
