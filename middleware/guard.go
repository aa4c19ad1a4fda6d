package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/auth"
	"github.com/SebastianArthurKull/go-jwt-with-token-refresh/models"
)

// Registry maps routes to the role sets allowed to call them. Routes with no
// entry are public. It is populated during wiring and read-only afterwards.
type Registry struct {
	rules map[string]map[models.Role]bool
}

func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]map[models.Role]bool)}
}

// Require declares that method+path may only be called by the given roles.
// The path must match the route pattern as registered with the router
// (e.g. "/admin/users/:id").
func (r *Registry) Require(method, path string, roles ...models.Role) {
	set := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		set[role] = true
	}
	r.rules[method+" "+path] = set
}

func (r *Registry) rolesFor(method, path string) (map[models.Role]bool, bool) {
	set, ok := r.rules[method+" "+path]
	return set, ok
}

// Guard is the authorization decision for every request. Public routes pass
// through untouched. For guarded routes it re-verifies the bearer token
// against the access key and checks the account's live role from the store —
// the role baked into the token is never trusted, so demotions apply
// immediately. Every failure collapses into the same deny response; callers
// cannot tell a bad signature from a role mismatch.
func Guard(reg *Registry, issuer *auth.TokenIssuer, store auth.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		required, guarded := reg.rolesFor(c.Request.Method, c.FullPath())
		if !guarded || len(required) == 0 {
			c.Next()
			return
		}

		token, ok := BearerToken(c)
		if !ok {
			deny(c)
			return
		}

		claims, err := issuer.Verify(token, auth.AccessKey)
		if err != nil {
			deny(c)
			return
		}

		user, err := store.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			deny(c)
			return
		}

		if !required[user.Role] {
			deny(c)
			return
		}

		c.Next()
	}
}

func deny(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
}
