package httpx

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/yummigo-orders/internal/auth"
)

const identityKey = "identity"

// Auth requires a valid bearer token and stores the caller on the context.
func Auth(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			JSONError(c, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		id, err := v.Verify(strings.TrimSpace(raw))
		if err != nil {
			JSONError(c, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// RequireRole lets through callers holding one of roles.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			JSONError(c, http.StatusUnauthorized, "unauthorized", "missing identity")
			return
		}
		for _, r := range roles {
			if id.Is(r) {
				c.Next()
				return
			}
		}
		JSONError(c, http.StatusForbidden, "forbidden", "role "+string(id.Role)+" not allowed")
	}
}

func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}
