package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"mercadito-backend/pkg/orders"
)

func (s *Server) createOrder(c *gin.Context) {
	var req orders.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid input"})
		return
	}
	order, err := s.orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(201, gin.H{"message": "order created", "order": order})
}

func (s *Server) listOrdersByCustomer(c *gin.Context) {
	customerID, ok := s.objectIDParam(c, "customerId")
	if !ok {
		return
	}
	list, err := s.orders.ListByCustomer(c.Request.Context(), customerID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, list)
}

func (s *Server) listAllOrders(c *gin.Context) {
	list, err := s.orders.ListAll(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, list)
}

func (s *Server) getOrderDetails(c *gin.Context) {
	orderID, ok := s.objectIDParam(c, "orderId")
	if !ok {
		return
	}
	order, err := s.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, order)
}

func (s *Server) editOrder(c *gin.Context) {
	orderID, ok := s.objectIDParam(c, "orderId")
	if !ok {
		return
	}
	callerID, err := primitive.ObjectIDFromHex(c.GetString(ctxUserID))
	if err != nil {
		c.JSON(401, gin.H{"error": "invalid token subject"})
		return
	}
	var patch orders.EditPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(400, gin.H{"error": "invalid input"})
		return
	}
	order, err := s.orders.EditOrder(c.Request.Context(), orderID, callerID, patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "order updated", "order": order})
}

func (s *Server) updateOrderStatus(c *gin.Context) {
	orderID, ok := s.objectIDParam(c, "orderId")
	if !ok {
		return
	}
	var req struct {
		Status                string     `json:"status" binding:"required"`
		EstimatedDeliveryDate *time.Time `json:"estimatedDeliveryDate"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "invalid input"})
		return
	}
	order, err := s.orders.UpdateStatus(c.Request.Context(), orderID, req.Status, req.EstimatedDeliveryDate)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "order status updated", "order": order})
}

func (s *Server) deleteOrder(c *gin.Context) {
	orderID, ok := s.objectIDParam(c, "orderId")
	if !ok {
		return
	}
	if err := s.orders.DeleteOrder(c.Request.Context(), orderID); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, gin.H{"message": "order deleted"})
}

func (s *Server) salesSummary(c *gin.Context) {
	summary, err := s.orders.SalesSummary(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(200, summary)
}
