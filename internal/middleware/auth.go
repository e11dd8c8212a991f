package middleware

import (
	"net/http"
	"strings"

	"github.com/lifequest/lifequest/internal/ctxkeys"
	"github.com/lifequest/lifequest/internal/handler"
	"github.com/lifequest/lifequest/internal/service"
)

// AuthMiddleware resolves a bearer token to a user and adds it to the context.
// Requests without a valid token continue anonymously; RequireAuth rejects them.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := authService.UserIDFromToken(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authService.User(r.Context(), userID)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// Security: Remove password hash from context
			user.PasswordHash = nil

			next.ServeHTTP(w, r.WithContext(ctxkeys.WithUser(r.Context(), user)))
		})
	}
}

// RequireAuth rejects requests that carry no authenticated user
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			w.Header().Set("WWW-Authenticate", "Bearer")
			handler.WriteError(w, r, http.StatusUnauthorized, "unauthorized", "Not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
