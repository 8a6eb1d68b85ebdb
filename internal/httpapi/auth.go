package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/joelson-hub/Pianelsenhas/internal/auth"
	"github.com/joelson-hub/Pianelsenhas/internal/models"
	"github.com/joelson-hub/Pianelsenhas/internal/store"
)

type principalKey struct{}

// Principal is the authenticated caller attached to the request context
// by AuthMiddleware.
type Principal struct {
	UserID   string
	Username string
	Role     string
	UnitID   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CanAccessUnit is the single scoping rule: admins reach every unit,
// attendants only the unit they are assigned to. An attendant without
// an assignment reaches nothing.
func (p Principal) CanAccessUnit(unitID string) bool {
	if p.IsAdmin() {
		return true
	}
	return p.UnitID != "" && p.UnitID == unitID
}

func principalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(Principal)
	return principal, ok
}

// isPublicEndpoint lists the routes reachable without a token: health,
// login, and the read-only display surface consumed by waiting-room
// screens.
func isPublicEndpoint(r *http.Request) bool {
	path := r.URL.Path
	switch {
	case path == "/healthz":
		return true
	case path == "/api/auth/login":
		return true
	case r.Method == http.MethodGet && path == "/api/tickets/current-display":
		return true
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/api/display/settings/"):
		return true
	}
	return false
}

// AuthMiddleware verifies the bearer token and re-checks the account
// against the store, so disabling a user takes effect before the token
// expires.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicEndpoint(r) {
			next.ServeHTTP(w, r)
			return
		}

		raw := bearerToken(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		claims, err := h.tokens.Verify(raw)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				writeError(w, http.StatusUnauthorized, "unauthorized", "token expired")
				return
			}
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		user, err := h.store.GetUser(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				writeError(w, http.StatusUnauthorized, "unauthorized", "unknown user")
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		if !user.Active {
			writeError(w, http.StatusUnauthorized, "unauthorized", "account disabled")
			return
		}

		principal := Principal{
			UserID:   user.UserID,
			Username: user.Username,
			Role:     user.Role,
		}
		if user.UnitID != nil {
			principal.UnitID = *user.UnitID
		}

		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
