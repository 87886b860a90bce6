package api

import (
	"errors"
	"net/http"
	"vip-order-api/internal/metrics"
	"vip-order-api/internal/middleware"
	"vip-order-api/internal/models"
	"vip-order-api/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine) {
	// Initialize session service for the auth middleware
	middleware.InitSessionService(services.NewSessionService(services.NewOAuthClient()))

	r.Use(middleware.RequestIDMiddleware())

	// API route group
	api := r.Group("/api")
	{
		// Login routes (no session required)
		auth := api.Group("/auth")
		{
			auth.POST("/login", Login)
		}

		// User routes (session required)
		user := api.Group("/user")
		user.Use(middleware.SessionAuthMiddleware())
		{
			user.GET("/me", GetCurrentUser)
			user.GET("/vip", GetVIPStatus)
			user.POST("/logout", Logout)
		}

		// Order routes (session required)
		order := api.Group("/order")
		order.Use(middleware.SessionAuthMiddleware())
		{
			order.POST("/create", CreateOrder)
			order.GET("/query", QueryOrder)
			order.GET("/list", ListOrders)
		}

		// Payment gateway callback (no authentication, the gateway calls this)
		payment := api.Group("/payment")
		{
			payment.POST("/notify", PaymentNotifyHandler)
		}
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "vip-order-service",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// errorStatus maps service errors to an HTTP status and a stable
// machine-readable code for clients.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidProduct):
		return http.StatusBadRequest, "INVALID_PRODUCT"
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests, "RATE_LIMITED"
	case errors.Is(err, services.ErrOrderNotFound):
		return http.StatusNotFound, "ORDER_NOT_FOUND"
	case errors.Is(err, services.ErrOAuthExchange):
		return http.StatusUnauthorized, "OAUTH_FAILED"
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, services.ErrUpstreamOrder):
		return http.StatusBadGateway, "GATEWAY_ERROR"
	case errors.Is(err, services.ErrStoreUnavailable):
		return http.StatusInternalServerError, "STORE_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// currentUser returns the authenticated user set by the middleware.
func currentUser(c *gin.Context) *models.User {
	if v, exists := c.Get("user"); exists {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// newOrderService wires an order service with its gateway, cache and
// alerting dependencies.
func newOrderService() *services.OrderService {
	return services.NewOrderService(
		services.NewPaymentGatewayClient(),
		services.NewRedisService(),
		services.NewAlertMailer(),
	)
}
