package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/quickmart/quickmart/internal/httpx"
	"github.com/quickmart/quickmart/internal/user"
)

const identityKey = "authIdentity"

// Identity is what handlers see of the authenticated caller.
type Identity struct {
	ID    string
	Role  string
	Email string
	Name  string
	Phone string
	Addr  string
}

// Authenticate validates the bearer token, loads the user and rejects
// deactivated accounts.
func Authenticate(users user.Repository, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httpx.Fail(c, http.StatusUnauthorized, "Not authorized, no token provided")
			c.Abort()
			return
		}
		uid, err := ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			httpx.Fail(c, http.StatusUnauthorized, "Not authorized")
			c.Abort()
			return
		}
		u, err := users.GetByID(c.Request.Context(), uid)
		if err != nil {
			httpx.Fail(c, http.StatusUnauthorized, "User not found")
			c.Abort()
			return
		}
		if !u.IsActive {
			httpx.Fail(c, http.StatusUnauthorized, "User account is deactivated")
			c.Abort()
			return
		}
		c.Set(identityKey, Identity{
			ID:    u.ID,
			Role:  u.Role,
			Email: u.Email,
			Name:  u.Name,
			Phone: u.Phone,
			Addr:  u.Address,
		})
		c.Next()
	}
}

// RequireRoles rejects callers whose role is not in the allowed set.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := FromContext(c)
		if !ok || !lo.Contains(roles, id.Role) {
			httpx.Fail(c, http.StatusForbidden, "Role "+id.Role+" is not authorized to access this resource")
			c.Abort()
			return
		}
		c.Next()
	}
}

func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
