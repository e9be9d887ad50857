package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kmorrow/todo-list-api/internal/domain"
	"github.com/kmorrow/todo-list-api/internal/service"
)

type contextKey string

const (
	UserKey     contextKey = "user"
	ResourceKey contextKey = "resource"
)

// Owned is any resource that can report its owning user. Ownership
// middleware compares it against the authenticated caller.
type Owned interface {
	OwnerID() uuid.UUID
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// RequireAuth rejects requests without a valid bearer access token issued to
// an active user. Resolving the user refreshes last_active_at.
func RequireAuth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "Authorization header required")
				return
			}

			user, err := authService.Authenticate(r.Context(), token)
			if err != nil {
				log.Printf("ERROR [middleware.RequireAuth] authentication failed: %v", err)
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves an identity when a valid token is present and lets
// the request through unauthenticated otherwise.
func OptionalAuth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if user, err := authService.Authenticate(r.Context(), token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), UserKey, user))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Ownership loads the resource named by the URL parameter, 404s when it does
// not resolve, 403s when the caller is not its owner, and otherwise attaches
// it to the request context. It must run after RequireAuth.
func Ownership(param string, load func(ctx context.Context, id uuid.UUID) (Owned, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				unauthorized(w, "Authentication required")
				return
			}

			id, err := uuid.Parse(chi.URLParam(r, param))
			if err != nil {
				notFound(w)
				return
			}

			resource, err := load(r.Context(), id)
			if err != nil {
				notFound(w)
				return
			}

			if resource.OwnerID() != user.ID {
				log.Printf("ERROR [middleware.Ownership] user %s denied access to resource %s", user.ID, id)
				forbidden(w)
				return
			}

			ctx := context.WithValue(r.Context(), ResourceKey, resource)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok
}

func GetTodo(ctx context.Context) (*domain.Todo, bool) {
	todo, ok := ctx.Value(ResourceKey).(*domain.Todo)
	return todo, ok
}

func unauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, message)
}

func forbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, "You do not have access to this resource")
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "Resource not found")
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
