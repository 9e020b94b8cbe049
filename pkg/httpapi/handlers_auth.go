package httpapi

import (
	"github.com/gin-gonic/gin"

	"mercadito-backend/pkg/auth"
)

func (s *Server) register(c *gin.Context) {
	var req auth.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid input"})
		return
	}
	user, err := s.auth.Register(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, gin.H{"message": "user registered, verification code sent", "user": user})
}

func (s *Server) verify(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid input"})
		return
	}
	if err := s.auth.Verify(c.Request.Context(), req.Email, req.Code); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "email verified"})
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid input"})
		return
	}
	token, user, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"token": token, "user": user})
}

func (s *Server) requestPasswordReset(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid input"})
		return
	}
	if err := s.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "if the account exists, a reset mail has been sent"})
}

func (s *Server) verifyResetLink(c *gin.Context) {
	if err := s.auth.VerifyResetToken(c.Request.Context(), c.Param("token")); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "reset token is valid"})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid input"})
		return
	}
	if err := s.auth.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "password updated"})
}

func (s *Server) listUsers(c *gin.Context) {
	users, err := s.auth.ListUsers(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, users)
}

func (s *Server) getUser(c *gin.Context) {
	id, ok := s.objectIDParam(c, "userId")
	if !ok {
		return
	}
	user, err := s.auth.GetUser(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, user)
}

func (s *Server) updateUser(c *gin.Context) {
	id, ok := s.objectIDParam(c, "userId")
	if !ok {
		return
	}
	var req auth.UserUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid input"})
		return
	}
	user, err := s.auth.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, user)
}

func (s *Server) updateUserPassword(c *gin.Context) {
	id, ok := s.objectIDParam(c, "userId")
	if !ok {
		return
	}
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid input"})
		return
	}
	if err := s.auth.UpdatePassword(c.Request.Context(), id, req.Password); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "password updated"})
}

func (s *Server) deleteUser(c *gin.Context) {
	id, ok := s.objectIDParam(c, "userId")
	if !ok {
		return
	}
	if err := s.auth.DeleteUser(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "user deleted"})
}
