package api

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/outreach-platform/internal/auth"
	"github.com/ignite/outreach-platform/internal/config"
	"github.com/ignite/outreach-platform/internal/service/account"
	"github.com/ignite/outreach-platform/internal/service/aicampaign"
	"github.com/ignite/outreach-platform/internal/service/emailsettings"
	"github.com/ignite/outreach-platform/internal/service/prospect"
	"github.com/ignite/outreach-platform/internal/service/team"
	"github.com/ignite/outreach-platform/internal/service/template"
)

// Handlers bundles the service dependencies the HTTP handlers call into.
type Handlers struct {
	Auth      *auth.Manager
	Accounts  *account.Service
	Settings  *emailsettings.Service
	Teams     *team.Service
	Templates *template.Service
	Prospects *prospect.Service
	Campaigns *aicampaign.Service
}

// Server is the HTTP API server.
type Server struct {
	cfg      *config.Config
	handler  http.Handler
	handlers *Handlers
	server   *http.Server
}

// NewServer wires routes, middleware, and rate limiting around the given
// handlers. redisClient may be nil; the rate limiter then passes everything.
func NewServer(cfg *config.Config, h *Handlers, redisClient *redis.Client) *Server {
	var limiter *rateLimiter
	if cfg.RateLimit.Enabled {
		limiter = newRateLimiter(redisClient, cfg.RateLimit.RequestsPerMinute)
	}
	return &Server{
		cfg:      cfg,
		handler:  setupRoutes(h, limiter),
		handlers: h,
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       2 * time.Minute,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.handler
}
