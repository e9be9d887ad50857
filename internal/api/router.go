package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/kmorrow/todo-list-api/internal/api/handlers"
	"github.com/kmorrow/todo-list-api/internal/api/middleware"
	"github.com/kmorrow/todo-list-api/internal/config"
	"github.com/kmorrow/todo-list-api/internal/service"
	"github.com/kmorrow/todo-list-api/internal/websocket"
)

// availableEndpoints is echoed on unknown routes so clients can discover the
// surface without docs.
var availableEndpoints = []string{
	"POST /api/auth/register",
	"POST /api/auth/login",
	"POST /api/auth/refresh",
	"POST /api/auth/logout",
	"POST /api/auth/logout-all",
	"GET /api/auth/me",
	"PUT /api/auth/me",
	"PUT /api/auth/change-password",
	"GET /api/todos",
	"GET /api/todos/stats",
	"GET /api/todos/{id}",
	"POST /api/todos",
	"PUT /api/todos/{id}",
	"PATCH /api/todos/{id}/toggle",
	"DELETE /api/todos/{id}",
	"DELETE /api/todos",
	"PATCH /api/todos/bulk-update",
	"GET /api/todos/search/{query}",
	"GET /api/todos/ws",
	"GET /api/health",
}

func NewRouter(services *service.Services, hub *websocket.Hub, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	todoHandler := handlers.NewTodoHandler(services.Todo)
	wsHandler := handlers.NewWebSocketHandler(hub, services.Auth)

	requireAuth := middleware.RequireAuth(services.Auth)
	todoOwnership := middleware.Ownership("id", func(ctx context.Context, id uuid.UUID) (middleware.Owned, error) {
		return services.Todo.GetByID(ctx, id)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Protected auth routes
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", authHandler.Logout)
				r.Post("/logout-all", authHandler.LogoutAll)
				r.Get("/me", authHandler.Me)
				r.Put("/me", authHandler.UpdateMe)
				r.Put("/change-password", authHandler.ChangePassword)
			})
		})

		r.Route("/todos", func(r chi.Router) {
			// The feed authenticates via query token, not the middleware.
			r.Get("/ws", wsHandler.Handle)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)

				r.Get("/", todoHandler.List)
				r.Post("/", todoHandler.Create)
				r.Delete("/", todoHandler.BulkDelete)
				r.Get("/stats", todoHandler.Stats)
				r.Patch("/bulk-update", todoHandler.BulkUpdate)
				r.Get("/search/{query}", todoHandler.Search)

				r.Group(func(r chi.Router) {
					r.Use(todoOwnership)
					r.Get("/{id}", todoHandler.Get)
					r.Put("/{id}", todoHandler.Update)
					r.Patch("/{id}/toggle", todoHandler.Toggle)
					r.Delete("/{id}", todoHandler.Delete)
				})
			})
		})
	})

	r.NotFound(handlers.NotFound(availableEndpoints))

	return r
}
