// Package httpapi wires the services to the HTTP surface: gin router,
// bearer-token middleware and the error-to-status mapping.
package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mercadito-backend/pkg/auth"
	"mercadito-backend/pkg/catalog"
	"mercadito-backend/pkg/config"
	"mercadito-backend/pkg/orders"
)

type Server struct {
	auth    *auth.Service
	catalog *catalog.Service
	orders  *orders.Service
	tokens  *auth.TokenManager
	logger  *zap.Logger
}

func NewServer(authSvc *auth.Service, catalogSvc *catalog.Service, orderSvc *orders.Service, tokens *auth.TokenManager, logger *zap.Logger) *Server {
	return &Server{
		auth:    authSvc,
		catalog: catalogSvc,
		orders:  orderSvc,
		tokens:  tokens,
		logger:  logger,
	}
}

func (s *Server) Router(cfg *config.ServerConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())

	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", s.register)
		authRoutes.POST("/verify", s.verify)
		authRoutes.POST("/login", s.login)
		authRoutes.POST("/request-password-reset", s.requestPasswordReset)
		authRoutes.GET("/verify-link/:token", s.verifyResetLink)
		authRoutes.POST("/reset-password", s.resetPassword)

		users := authRoutes.Group("/users", s.RequireAuth, s.RequireAdmin)
		{
			users.GET("", s.listUsers)
			users.GET("/:userId", s.getUser)
			users.PUT("/:userId", s.updateUser)
			users.PATCH("/:userId/password", s.updateUserPassword)
			users.DELETE("/:userId", s.deleteUser)
		}
	}

	products := api.Group("/products")
	{
		products.GET("", s.listProducts)
		products.GET("/:id", s.getProduct)

		admin := products.Group("", s.RequireAuth, s.RequireAdmin)
		{
			admin.POST("", s.createProduct)
			admin.PUT("/:id", s.updateProduct)
			admin.DELETE("/:id", s.deleteProduct)
		}
	}

	orderRoutes := api.Group("/orders", s.RequireAuth)
	{
		orderRoutes.POST("", s.createOrder)
		orderRoutes.GET("/details/:orderId", s.getOrderDetails)
		orderRoutes.GET("/:customerId", s.listOrdersByCustomer)
		orderRoutes.PUT("/update/:orderId", s.editOrder)

		admin := orderRoutes.Group("", s.RequireAdmin)
		{
			admin.GET("", s.listAllOrders)
			admin.GET("/summary", s.salesSummary)
			admin.PATCH("/updateDateStatus/:orderId", s.updateOrderStatus)
			admin.DELETE("/:orderId", s.deleteOrder)
		}
	}

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
