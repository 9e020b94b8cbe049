package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"mercadito-backend/pkg/apierr"
)

// fail maps a service error to its HTTP status. Unexpected errors are logged
// with full detail and answered with a generic body so nothing internal
// leaks to the caller.
func (s *Server) fail(c *gin.Context, err error) {
	status := apierr.Status(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("internal error",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// objectIDParam parses an ObjectID path parameter; a malformed id is a 400.
func (s *Server) objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid " + name})
		return primitive.NilObjectID, false
	}
	return id, true
}
