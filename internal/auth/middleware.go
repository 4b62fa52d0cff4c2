package auth

import (
	"net/http"
	"strings"

	"github.com/lokafin/lokafin/internal/platform/httpx"
	"github.com/lokafin/lokafin/internal/shared"
)

// Middleware rejects requests without a valid bearer token and places the
// acting identity in the request context for audit stamping.
func (s *Service) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}
		claims, err := s.ParseToken(raw)
		if err != nil {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or expired token")
			return
		}
		ctx := shared.ContextWithActor(r.Context(), shared.Actor{ID: claims.UserID, Login: claims.Login})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
