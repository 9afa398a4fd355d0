package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const defaultTimeout = 60 * time.Second

type routerConfig struct {
	middlewares []func(http.Handler) http.Handler
	sessionMW   func(http.Handler) http.Handler

	public *PublicHandlers
	auth   *AuthHandlers
	client *ClientPanelHandlers
	dev    *DevPanelHandlers
	health *HealthHandlers
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

// WithMiddlewares appends additional global middleware to the router.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithSessionMiddleware sets the middleware guarding the panel groups.
func WithSessionMiddleware(mw func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) { cfg.sessionMW = mw }
}

// WithPublicHandlers mounts the public menu route.
func WithPublicHandlers(h *PublicHandlers) Option {
	return func(cfg *routerConfig) { cfg.public = h }
}

// WithAuthHandlers mounts login and logout.
func WithAuthHandlers(h *AuthHandlers) Option {
	return func(cfg *routerConfig) { cfg.auth = h }
}

// WithClientPanelHandlers mounts the client panel group.
func WithClientPanelHandlers(h *ClientPanelHandlers) Option {
	return func(cfg *routerConfig) { cfg.client = h }
}

// WithDevPanelHandlers mounts the developer panel group.
func WithDevPanelHandlers(h *DevPanelHandlers) Option {
	return func(cfg *routerConfig) { cfg.dev = h }
}

// WithHealthHandlers replaces the default health handlers.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) { cfg.health = h }
}

// NewRouter constructs the chi router. Unknown paths redirect to the public
// page rather than answering 404, mirroring the site's catch-all route.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{
		middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Timeout(defaultTimeout),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.health == nil {
		cfg.health = NewHealthHandlers(nil)
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/", http.StatusFound)
	})

	r.Get("/healthz", cfg.health.Healthz)
	r.Get("/readyz", cfg.health.Readyz)

	if cfg.public != nil {
		r.Get("/", cfg.public.Menu)
	}
	if cfg.auth != nil {
		r.Post("/admin/login", cfg.auth.Login)
		r.Post("/admin/logout", cfg.auth.Logout)
	}

	mountPanel := func(path string, gate func(http.Handler) http.Handler, routes func(chi.Router)) {
		r.Route(path, func(group chi.Router) {
			if cfg.sessionMW != nil {
				group.Use(cfg.sessionMW)
			}
			group.Use(gate)
			routes(group)
		})
	}
	if cfg.client != nil {
		mountPanel(ClientPanelPath, cfg.client.RequireClient, cfg.client.Routes)
	}
	if cfg.dev != nil {
		mountPanel(DeveloperPanelPath, cfg.dev.RequireDeveloper, cfg.dev.Routes)
	}

	return r
}
