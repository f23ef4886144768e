package middlewares

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/voicebridge/apiv1/utils"
)

const SESSION_COOKIE = "vb_token"

type TokenVerifier interface {
	VerifyAccessToken(tokenString string) (*utils.AccessClaims, error)
}

type ctxKey struct{}

// GetTokenFromAuthorizationHeader extracts the token of a "Bearer <token>" header.
func GetTokenFromAuthorizationHeader(authHeader string) (string, error) {
	if len(authHeader) == 0 {
		return "", utils.ErrInvalidToken
	}
	bearerToken := strings.SplitN(authHeader, " ", 2)
	if len(bearerToken) < 2 || !strings.EqualFold(bearerToken[0], "bearer") || bearerToken[1] == "" {
		return "", utils.ErrInvalidToken
	}
	return strings.TrimSpace(bearerToken[1]), nil
}

// TokenFromRequest looks at the Authorization header first, then the session cookie.
func TokenFromRequest(r *http.Request) (string, error) {
	if token, err := GetTokenFromAuthorizationHeader(r.Header.Get("Authorization")); err == nil {
		return token, nil
	}
	if c, err := r.Cookie(SESSION_COOKIE); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", utils.ErrInvalidToken
}

// IsAccessTokenAuthorized rejects requests without a valid access token and
// stores the claims in the request context for the next handler.
func IsAccessTokenAuthorized(verifier TokenVerifier, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			accessTokenString, err := TokenFromRequest(r)
			if err == nil {
				var claims *utils.AccessClaims
				claims, err = verifier.VerifyAccessToken(accessTokenString)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
					return
				}
			}
			log.InfoContext(r.Context(), "rejected unauthorized request",
				slog.String("op", "middlewares.IsAccessTokenAuthorized"),
				slog.String("path", r.URL.Path),
				utils.Err(err),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": utils.UNAUTHORIZED_ERROR})
		})
	}
}

func WithClaims(ctx context.Context, claims *utils.AccessClaims) context.Context {
	return context.WithValue(ctx, ctxKey{}, claims)
}

func ClaimsFromContext(ctx context.Context) (*utils.AccessClaims, bool) {
	claims, ok := ctx.Value(ctxKey{}).(*utils.AccessClaims)
	return claims, ok
}
