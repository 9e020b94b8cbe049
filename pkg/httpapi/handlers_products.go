package httpapi

import (
	"github.com/gin-gonic/gin"

	"mercadito-backend/pkg/catalog"
)

func (s *Server) listProducts(c *gin.Context) {
	products, err := s.catalog.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, products)
}

func (s *Server) getProduct(c *gin.Context) {
	id, ok := s.objectIDParam(c, "id")
	if !ok {
		return
	}
	product, err := s.catalog.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, product)
}

func (s *Server) createProduct(c *gin.Context) {
	var req catalog.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid input"})
		return
	}
	product, err := s.catalog.Create(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, product)
}

func (s *Server) updateProduct(c *gin.Context) {
	id, ok := s.objectIDParam(c, "id")
	if !ok {
		return
	}
	var req catalog.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid input"})
		return
	}
	product, err := s.catalog.Update(c.Request.Context(), id, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, product)
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, ok := s.objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := s.catalog.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "product deleted"})
}
