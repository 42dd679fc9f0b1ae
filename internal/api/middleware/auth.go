package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
)

// Principal identifies the caller as established by the upstream gateway.
// Session and credential handling live outside this service; the gateway
// injects the authenticated user via headers.
type Principal struct {
	UserID int64
	Role   string
}

type contextKey struct{}

// Authenticate reads X-User-ID and X-User-Role into the request context.
// Absent or malformed headers leave the request anonymous.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64); err == nil && id > 0 {
			p := Principal{UserID: id, Role: r.Header.Get("X-User-Role")}
			if p.Role == "" {
				p.Role = models.RoleUser
			}
			r = r.WithContext(context.WithValue(r.Context(), contextKey{}, p))
		}
		next.ServeHTTP(w, r)
	})
}

// PrincipalFrom extracts the caller, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// RequireUser rejects anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFrom(r.Context()); !ok {
			http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects everyone but administrators.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			http.Error(w, `{"error":"authentication required"}`, http.StatusUnauthorized)
			return
		}
		if p.Role != models.RoleAdmin {
			http.Error(w, `{"error":"admin only"}`, http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
