package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"lumira_back_end/internal/checkout"
	"lumira_back_end/internal/config"
	"lumira_back_end/internal/database"
	"lumira_back_end/internal/gateway"
	"lumira_back_end/internal/routes"
	"lumira_back_end/internal/store"
	"lumira_back_end/internal/utils"
)

func main() {
	config.Load()

	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	if keyID == "" || keySecret == "" {
		log.Fatal("❌ Impossible d'initialiser Razorpay : clés manquantes")
	}
	log.Println("✅ Razorpay initialisé")

	database.ConnectDatabases()

	// Ping pour établir la connexion Redis avant le premier appel
	warmupRedisCache()

	svc := &checkout.Service{
		Products:      store.ScyllaProducts{},
		Carts:         store.RedisCarts{Client: database.Redis},
		Coupons:       store.ScyllaCoupons{},
		Orders:        store.ScyllaOrders{},
		Payments:      store.ScyllaPayments{},
		Notifs:        store.ScyllaNotifications{},
		Users:         store.ScyllaUsers{},
		Gateway:       gateway.NewRazorpay(keyID, keySecret),
		Mailer:        utils.NewMailer(),
		GatewaySecret: keySecret,
		Currency:      config.Currency(),
		FreeThreshold: config.FreeShippingThreshold(),
		ShippingFee:   config.ShippingFee(),
		DepositRate:   config.DepositRate(),
	}

	r := gin.Default()
	routes.RegisterRoutes(r, svc)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Serveur Lumira lancé sur le port", port)
	r.Run(":" + port)
}

// warmupRedisCache pré-chauffe le cache Redis pour éviter la latence du premier appel
func warmupRedisCache() {
	ctx := context.Background()
	if err := database.Redis.Ping(ctx).Err(); err == nil {
		log.Println("✅ Cache Redis pré-chauffé")
	}
}
