package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rm/user-service/app"
	"github.com/rm/user-service/config"
	"github.com/rm/user-service/handlers"
	"github.com/rm/user-service/internal/observability"
	"github.com/rm/user-service/middleware"
	"github.com/rm/user-service/utils"
)

// ServiceName is reported by the API docs listing
const ServiceName = "user-service"

// DocsPath serves the route listing
const DocsPath = "/v2/api-docs"

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()
	cfg := deps.Config
	logger := deps.Logger

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(observability.RequestLogger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.AuditMeta)

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept", "Authorization", "Content-Type",
			middleware.HeaderUserUID, middleware.HeaderUserRoles,
		},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Identity is resolved for every request; the role gate is applied per group below
	r.Use(deps.AuthMiddleware.Authenticate)

	health := handlers.NewHealthHandler(deps.DB, logger)
	if deps.AuditService != nil {
		health.WithAuditStats(deps.AuditService)
	}
	docs := handlers.NewDocsHandler(ServiceName, r, logger)
	users := handlers.NewUserHandler(deps.UserService, logger)
	gate := deps.AuthMiddleware.RequireRole(cfg.Auth.RequiredRole)

	// Health check endpoints
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)
	r.Get(DocsPath, docs.HandleDocs)

	// A caller cannot hold a bearer credential before signing in
	if cfg.Auth.Mode == config.AuthModeBearer {
		r.Post("/auth/signin", users.HandleSignIn)
		r.Post("/auth/signup", users.HandleSignUp)
	}

	r.Group(func(r chi.Router) {
		r.Use(gate)

		r.Route("/auth", func(r chi.Router) {
			r.Get("/uid/{uid}", users.HandleUIDExists)
			r.Get("/email/{email}", users.HandleEmailExists)
			if cfg.Auth.Mode != config.AuthModeBearer {
				r.Post("/signin", users.HandleSignIn)
				r.Post("/signup", users.HandleSignUp)
			}
		})

		r.Get("/id/{id}", users.HandleGetUser)
		r.Put("/id/{id}", users.HandleUpdateUser)
		r.Delete("/id/{id}", users.HandleDeleteUser)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteMethodNotAllowed(w)
	})

	return r
}
