package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// APIKeyAuth guards a route group with a shared key. keys may hold several
// comma-separated values so an old key keeps working during rotation. The key
// is read from X-API-Key or an "Authorization: Bearer" header. An empty keys
// string disables the check.
func APIKeyAuth(keys string) gin.HandlerFunc {
	accepted := splitKeys(keys)
	return func(c *gin.Context) {
		if len(accepted) == 0 {
			c.Next()
			return
		}
		provided := presentedKey(c)
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "missing X-API-Key header"})
			return
		}
		if !matchesAny(provided, accepted) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "invalid API key"})
			return
		}
		c.Next()
	}
}

func splitKeys(raw string) [][]byte {
	var out [][]byte
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, []byte(k))
		}
	}
	return out
}

func presentedKey(c *gin.Context) string {
	if k := strings.TrimSpace(c.GetHeader("X-API-Key")); k != "" {
		return k
	}
	auth := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(auth) > len("bearer ") && strings.EqualFold(auth[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(auth[len("bearer "):])
	}
	return ""
}

// matchesAny compares against every key so timing does not reveal which
// position matched.
func matchesAny(provided string, accepted [][]byte) bool {
	p := []byte(provided)
	ok := 0
	for _, k := range accepted {
		ok |= subtle.ConstantTimeCompare(p, k)
	}
	return ok == 1
}
