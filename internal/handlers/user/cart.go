package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lumira_back_end/internal/checkout"
	"lumira_back_end/internal/models"
)

// svc est injecté au démarrage par routes.Setup
var svc *checkout.Service

func Init(s *checkout.Service) {
	svc = s
}

// GetCart renvoie le panier courant stocké dans Redis
func GetCart(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return
	}

	items, err := svc.Carts.Get(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}
	if items == nil {
		items = []models.CartItem{} // panier vide
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ClearCart vide le panier. Idempotent : vider un panier déjà vide
// répond 200 aussi.
func ClearCart(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "non authentifié"})
		return
	}

	if err := svc.Carts.Clear(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur vidage panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Panier vidé"})
}
