package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/botworks/club-server/identity"
	"github.com/botworks/club-server/internal/config"
	"github.com/botworks/club-server/internal/metrics"
	"github.com/botworks/club-server/notifications"
	"github.com/botworks/club-server/roles"
	"github.com/botworks/club-server/token"
)

// Deps holds the collaborators the server glues together. Verifier may be
// nil when the identity provider is not configured; login then fails with a
// server error rather than a silent default.
type Deps struct {
	Verifier      identity.Verifier
	Tokens        *token.Manager
	Resolver      *roles.Resolver
	Notifications *notifications.Service
	Metrics       *metrics.Collector
}

type Server struct {
	env      string // Environment (e.g. "DEV", "production")
	mux      *http.ServeMux
	routes   []string
	config   config.Config
	logger   zerolog.Logger
	verifier identity.Verifier
	tokens   *token.Manager
	resolver *roles.Resolver
	notifs   *notifications.Service
	metrics  *metrics.Collector
	limiter  *ipRateLimiter
}

func New(config config.Config, logger zerolog.Logger, deps Deps) (*Server, error) {
	if deps.Tokens == nil {
		return nil, fmt.Errorf("[Server New] token manager is required")
	}
	if deps.Resolver == nil {
		return nil, fmt.Errorf("[Server New] role resolver is required")
	}
	if deps.Notifications == nil {
		return nil, fmt.Errorf("[Server New] notification service is required")
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewCollector()
	}

	s := &Server{
		mux:      http.NewServeMux(),
		config:   config,
		logger:   logger,
		verifier: deps.Verifier,
		tokens:   deps.Tokens,
		resolver: deps.Resolver,
		notifs:   deps.Notifications,
		metrics:  deps.Metrics,
		limiter:  newIPRateLimiter(),
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// secureCookies reports whether cookies get the Secure attribute. Local
// development runs over plain http.
func (s *Server) secureCookies() bool {
	return s.env != "DEV"
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			s.logger.Debug().Str("method", parts[0]).Str("path", parts[1]).Msg("route")
		} else {
			s.logger.Debug().Str("path", parts[0]).Msg("route")
		}
	}
}
