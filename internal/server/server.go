package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/crypteax/crypteax-be/internal/auth"
	"github.com/crypteax/crypteax-be/internal/config"
	"github.com/crypteax/crypteax-be/internal/http/handlers"
	"github.com/crypteax/crypteax-be/internal/metrics"
	"github.com/crypteax/crypteax-be/internal/middleware"
	"github.com/crypteax/crypteax-be/internal/nonce"
	"github.com/crypteax/crypteax-be/internal/profile"
	"github.com/crypteax/crypteax-be/internal/storage"
)

// Deps are the long-lived collaborators the HTTP layer is built on.
type Deps struct {
	Store    storage.UserStore
	Nonces   *nonce.Store
	Verifier auth.SignatureVerifier
	Registry *prometheus.Registry
	// Checks are probed by /health, keyed by dependency name.
	Checks map[string]storage.Pinger
	Logger zerolog.Logger
}

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// NewRouter wires middleware and routes over deps.
func NewRouter(cfg config.Config, deps Deps) http.Handler {
	codec := auth.NewSessionCodec(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.TTL)
	authn := auth.NewAuthenticator(deps.Store, deps.Verifier, deps.Nonces, metrics.New(deps.Registry), deps.Logger)
	profiles := profile.NewService(deps.Store, deps.Logger)
	cookies := handlers.CookieConfig{
		Secure:     cfg.Session.CookieSecure,
		SessionTTL: cfg.Session.TTL,
		NonceTTL:   cfg.Redis.NonceTTL,
	}

	health := handlers.NewHealthHandler(time.Now(), deps.Checks)
	authHandler := handlers.NewAuthHandler(authn, deps.Nonces, codec, deps.Store, cookies, cfg.Debug, deps.Logger)
	profileHandler := handlers.NewProfileHandler(profiles, codec, cookies, cfg.Debug, deps.Logger)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		middleware.Logging(deps.Logger),
		chimw.Recoverer,
		middleware.CORS(cfg.CORSOrigins),
	)

	health.Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(limiter.Middleware)
		r.Route("/auth", authHandler.Register)
		r.Route("/users", profileHandler.RegisterUsers)
		r.Route("/admin", profileHandler.RegisterAdmin)
	})
	return r
}

// New wires up middleware, routes, and returns a ready server.
func New(cfg config.Config, deps Deps) *Server {
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           NewRouter(cfg, deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Contract-wallet verification may wait on a remote RPC.
		WriteTimeout: cfg.Wallet.VerifyTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
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
