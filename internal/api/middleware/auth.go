package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/realtorist/realtorist-api/internal/api/shared"
	"github.com/realtorist/realtorist-api/internal/service/auth"
)

// AccessTokenQueryParam is the query parameter that may carry the token.
// It takes precedence over the Authorization header.
const AccessTokenQueryParam = "access_token"

// Authenticator checks an access token against the stored admin account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// AuthMiddleware gates admin routes behind a valid access token.
type AuthMiddleware struct {
	authenticator Authenticator
}

// NewAuthMiddleware creates a new AuthMiddleware.
func NewAuthMiddleware(authenticator Authenticator) *AuthMiddleware {
	return &AuthMiddleware{authenticator: authenticator}
}

// Authenticate rejects requests without a valid token with 401 and adds the
// admin email to the context of the rest.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Failed to authenticate: token is missing")
			return
		}

		claims, err := m.authenticator.Authenticate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
					"Failed to authenticate: token expired", err)
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid),
				errors.Is(err, auth.ErrRevokedToken),
				errors.Is(err, auth.ErrMissingToken),
				errors.Is(err, auth.ErrAccountNotConfigured):
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
					"Failed to authenticate: invalid token", err, shared.WithElevatedLogLevel())
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
					"Authentication error", err)
			}
			return
		}

		ctx := shared.SetAdminEmail(r.Context(), claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenFromRequest returns the access token from the query string or, failing
// that, the Authorization header. The header may hold "Bearer <token>" or the
// bare token.
func TokenFromRequest(r *http.Request) string {
	if token := strings.TrimSpace(r.URL.Query().Get(AccessTokenQueryParam)); token != "" {
		return token
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ""
	}
	if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(rest)
	}
	return header
}
