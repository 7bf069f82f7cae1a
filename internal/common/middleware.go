package common

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"
)

type contextKey string

const userIDKey contextKey = "user_id"

// ActivityRecorder refreshes a user's last-active timestamp.
type ActivityRecorder interface {
	TouchLastActive(ctx context.Context, userID string, at time.Time) error
}

// AuthMiddleware validates the bearer token, injects the user id into the
// request context and records activity for the online heuristic.
func AuthMiddleware(tokens TokenVerifier, activity ActivityRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := BearerToken(r)
			if tokenString == "" {
				WriteError(w, NewUnauthorizedError("Authorization required"))
				return
			}

			claims, err := tokens.ValidToken(tokenString)
			if err != nil {
				WriteError(w, NewUnauthorizedError("Invalid or expired token"))
				return
			}

			if activity != nil {
				if err := activity.TouchLastActive(r.Context(), claims.UserID, time.Now()); err != nil {
					log.Printf("Failed to record activity for user %s: %v", claims.UserID, err)
				}
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), claims.UserID)))
		})
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>", falling
// back to the token query parameter used by file links and websocket clients.
func BearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// CORSMiddleware adds CORS headers
func CORSMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}
