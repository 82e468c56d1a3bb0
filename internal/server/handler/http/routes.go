package http

import (
	"net/http"
	"time"

	"github.com/atinyakov/HydroPal/internal/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// RouterOptions holds the transport settings of NewRouter.
type RouterOptions struct {
	// FrontendURL is the single origin allowed by CORS.
	FrontendURL string
	// RateLimit is the number of requests per minute and IP accepted on
	// register and login. Zero disables limiting.
	RateLimit int
}

// Handlers groups the route handlers mounted by NewRouter.
type Handlers struct {
	Auth   *AuthHandler
	Data   *DataHandler
	Water  *WaterHandler
	Health *HealthHandler
}

// NewRouter constructs the HTTP handler serving the HydroPal API.
//
// Routes:
//
//	GET    /api                     → Health
//	GET    /metrics                 → Prometheus exposition
//	POST   /api/auth/register       → Auth.Register (rate limited)
//	POST   /api/auth/login          → Auth.Login (rate limited)
//	GET    /api/auth/profile        → Auth.Profile
//	POST   /api/auth/water          → Water.Log
//	GET    /api/auth/water/today    → Water.Today
//	DELETE /api/auth/water/today    → Water.Clear
//	GET    /api/auth/water/ranking  → Water.Ranking
//	GET    /api/auth/water/monthly  → Water.Monthly
//	GET    /api/data                → Data.List
//	POST   /api/data                → Data.Create
//	GET    /api/data/{id}           → Data.Get
//	PUT    /api/data/{id}           → Data.Update
//	DELETE /api/data/{id}           → Data.Delete
//
// Everything except health, metrics, register and login requires a bearer
// token checked by verifier.
func NewRouter(
	h Handlers,
	verifier middleware.TokenVerifier,
	opts RouterOptions,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.WithRequestLogging(logger))
	r.Use(middleware.Metrics)
	r.Use(middleware.Recover(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.FrontendURL},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Handle("/metrics", promhttp.Handler())

	auth := middleware.BearerAuth(verifier)

	r.Route("/api", func(r chi.Router) {
		// Only allow request bodies with Content-Type: application/json
		r.Use(middleware.RequireJSON("application/json"))

		r.Get("/", h.Health.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if opts.RateLimit > 0 {
					r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
				}
				r.Post("/register", h.Auth.Register)
				r.Post("/login", h.Auth.Login)
			})

			r.Group(func(r chi.Router) {
				r.Use(auth)
				r.Get("/profile", h.Auth.Profile)
				r.Post("/water", h.Water.Log)
				r.Get("/water/today", h.Water.Today)
				r.Delete("/water/today", h.Water.Clear)
				r.Get("/water/ranking", h.Water.Ranking)
				r.Get("/water/monthly", h.Water.Monthly)
			})
		})

		r.Route("/data", func(r chi.Router) {
			r.Use(auth)
			r.Get("/", h.Data.List)
			r.Post("/", h.Data.Create)
			r.Get("/{id}", h.Data.Get)
			r.Put("/{id}", h.Data.Update)
			r.Delete("/{id}", h.Data.Delete)
		})
	})

	return r
}
