package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/auth"
)

// Context keys set by PopulateUser.
const (
	CtxUser  = "currentUser"
	CtxToken = "bearerToken"
)

// PopulateUser attaches the raw bearer token and its decoded claims to the
// request context when an Authorization header is present. The claims are NOT
// signature-checked here; they are convenience values for display endpoints.
// Anything that mutates state or gates access must re-verify the token.
func PopulateUser(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := BearerToken(c); ok {
			c.Set(CtxToken, token)
			if claims := issuer.DecodeUnverified(token); claims != nil {
				c.Set(CtxUser, claims)
			}
		}
		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header, reporting
// false for a missing header or a non-Bearer scheme.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return "", false
	}
	return token, true
}

// CurrentUser returns the unverified claims set by PopulateUser, if any.
func CurrentUser(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
