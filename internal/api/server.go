package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JustinTDCT/mediacat/internal/analytics"
	"github.com/JustinTDCT/mediacat/internal/auth"
	"github.com/JustinTDCT/mediacat/internal/authz"
	"github.com/JustinTDCT/mediacat/internal/config"
	"github.com/JustinTDCT/mediacat/internal/httputil"
	"github.com/JustinTDCT/mediacat/internal/logging"
	"github.com/JustinTDCT/mediacat/internal/media"
	"github.com/JustinTDCT/mediacat/internal/metrics"
	"github.com/JustinTDCT/mediacat/internal/users"
	"github.com/JustinTDCT/mediacat/internal/watchhistory"
)

type UserStore interface {
	auth.UserStore
	users.Store
}

// Deps are the stores and services the HTTP layer needs. The Postgres
// repositories satisfy every store interface.
type Deps struct {
	Sessions  *auth.Sessions
	Enforcer  *authz.Enforcer
	Users     UserStore
	Media     media.Store
	Streams   media.StreamStore
	Subtitles media.SubtitleStore
	Watch     watchhistory.Store
	Stats     analytics.Counter
}

type Server struct {
	config *config.Config
	deps   Deps
	router chi.Router
	http   *http.Server
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		config: cfg,
		deps:   deps,
		router: chi.NewRouter(),
	}
	s.setupRoutes()
	s.http = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router
	rl := s.config.RateLimit

	r.Use(requestID)
	r.Use(accessLog)
	r.Use(recoverer)
	r.Use(securityHeaders)
	if len(s.config.CORS.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	if s.config.Metrics.Enabled {
		r.Use(metrics.Middleware)
		r.Method(http.MethodGet, s.config.Metrics.Path, promhttp.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteStatus(w, http.StatusOK)
	})

	session := auth.RequireAuth(s.deps.Sessions)
	access := s.deps.Enforcer

	r.Route("/api", func(r chi.Router) {
		r.With(s.limit("auth", rl.Auth)).
			Mount("/auth", auth.NewHandler(s.deps.Users, s.deps.Sessions).Router())

		r.With(s.limit("users", rl.Users), session, access.Require(authz.ObjUsers, authz.ActManage)).
			Mount("/users", users.NewHandler(s.deps.Users).Router())

		r.With(s.limit("stats", rl.Stats), session, access.Require(authz.ObjStats, authz.ActRead)).
			Mount("/stats", analytics.NewHandler(s.deps.Stats).Router())

		r.Route("/media", func(r chi.Router) {
			r.Use(session)
			watchhistory.NewHandler(s.deps.Watch).Register(r, access)
			media.NewHandler(s.deps.Media, s.deps.Streams, s.deps.Subtitles).
				Register(r, s.deps.Enforcer, s.limit("media_write", rl.MediaWrite))
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteError(w, http.StatusNotFound, "NOT_FOUND", "Not found")
		})
	})

	if s.config.Server.StaticDir != "" {
		r.NotFound(spaHandler(s.config.Server.StaticDir))
	}
}

// Start serves until Shutdown is called. TLS is used when a certificate
// pair is configured.
func (s *Server) Start() error {
	var err error
	if s.config.Server.TLSEnabled() {
		logging.Info().Str("addr", s.http.Addr).Msg("listening (tls)")
		err = s.http.ListenAndServeTLS(s.config.Server.TLSCertFile, s.config.Server.TLSKeyFile)
	} else {
		logging.Info().Str("addr", s.http.Addr).Msg("listening")
		err = s.http.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	timeout := s.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.http.Shutdown(ctx)
}
