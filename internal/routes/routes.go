package routes

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"lumira_back_end/internal/checkout"
	"lumira_back_end/internal/handlers/payement"
	"lumira_back_end/internal/handlers/user"
	"lumira_back_end/internal/middleware"
)

// RegisterRoutes branche le service checkout dans les handlers et
// déclare toute la surface HTTP
func RegisterRoutes(r *gin.Engine, svc *checkout.Service) {
	payement.Init(svc)
	user.Init(svc)

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins(),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// Parcours de commande (client authentifié)
	authed := api.Group("")
	authed.Use(middleware.AuthRequired())
	{
		authed.POST("/checkout", middleware.CheckoutRateLimit(), payement.Checkout)
		authed.POST("/checkout/cancelled", payement.CheckoutCancelled)
		authed.POST("/checkout/validate-coupon", payement.ValidateCoupon)

		authed.POST("/orders", payement.CreateOrder)
		authed.GET("/orders", user.GetMyOrders)
		authed.GET("/orders/:id", user.GetOrderByID)
		authed.GET("/orders/:id/payments", payement.GetOrderPayments)

		authed.POST("/payments", payement.CreatePayment)

		authed.GET("/cart", user.GetCart)
		authed.DELETE("/cart/clear", user.ClearCart)

		authed.GET("/notifications", user.GetNotifications)
		authed.PUT("/notifications/:id/read", user.MarkNotificationRead)
		authed.GET("/notifications/ws", user.NotificationWebSocket)
	}

	// Back-office (admin seulement)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(), middleware.RequireAdmin)
	{
		admin.GET("/orders", payement.GetAllOrders)
		admin.PUT("/orders/:id", payement.UpdateOrderStatus)
		admin.GET("/orders/stats", payement.GetOrderStats)

		admin.POST("/coupons", payement.CreateCoupon)
		admin.GET("/coupons", payement.GetAllCoupons)
		admin.PUT("/coupons/:code", payement.UpdateCoupon)
		admin.DELETE("/coupons/:code", payement.DeleteCoupon)
	}
}

func allowedOrigins() []string {
	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		return []string{"http://localhost:3000"}
	}
	return strings.Split(origins, ",")
}
