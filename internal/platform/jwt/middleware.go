package jwtmw

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"portfolio_backend/internal/platform/http/respond"
	"portfolio_backend/internal/shared/apperr"
)

const (
	// CookieName is the session cookie set on login, register and reset.
	CookieName = "token"

	ContextUserID = "userID"
	ContextClaims = "claims"
)

// SessionVerifier validates a raw token, including revocation.
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (Claims, error)
}

// TokensFromRequest returns the session cookie and the Bearer token, in that
// order, skipping empty and repeated values.
func TokensFromRequest(c *gin.Context) []string {
	var tokens []string
	if v, err := c.Cookie(CookieName); err == nil && v != "" {
		tokens = append(tokens, v)
	}
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		if v := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")); v != "" && (len(tokens) == 0 || tokens[0] != v) {
			tokens = append(tokens, v)
		}
	}
	return tokens
}

// AuthRequired rejects requests without a valid session with 401. A cookie that
// fails to verify does not hide a valid Bearer token.
func AuthRequired(v SessionVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokens := TokensFromRequest(c)
		if len(tokens) == 0 {
			respond.Error(c, apperr.Unauthenticated("User not Authenticated!", nil))
			return
		}

		var firstErr error
		for _, token := range tokens {
			claims, err := v.VerifySession(c.Request.Context(), token)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextClaims, claims)
			c.Next()
			return
		}
		respond.Error(c, firstErr)
	}
}

// ClaimsFrom returns the claims stored by AuthRequired.
func ClaimsFrom(c *gin.Context) (Claims, bool) {
	v, ok := c.Get(ContextClaims)
	if !ok {
		return Claims{}, false
	}
	claims, ok := v.(Claims)
	return claims, ok
}
