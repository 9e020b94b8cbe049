package httpapi

import (
	"strings"

	"github.com/gin-gonic/gin"

	"mercadito-backend/pkg/models"
)

const (
	ctxUserID = "userId"
	ctxRole   = "role"
)

// RequireAuth verifies the bearer token and stores the caller's identity on
// the context for the handlers downstream.
func (s *Server) RequireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(401, gin.H{"error": "missing token"})
		return
	}
	claims, err := s.tokens.Parse(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		c.AbortWithStatusJSON(401, gin.H{"error": err.Error()})
		return
	}
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxRole, claims.Role)
	c.Next()
}

// RequireAdmin gates the administrative surface. Moderators share it.
func (s *Server) RequireAdmin(c *gin.Context) {
	role := c.GetString(ctxRole)
	if role != models.RoleAdmin && role != models.RoleModerator {
		c.AbortWithStatusJSON(403, gin.H{"error": "admin access required"})
		return
	}
	c.Next()
}
