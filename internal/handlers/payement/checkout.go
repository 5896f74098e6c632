package payement

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"lumira_back_end/internal/checkout"
	"lumira_back_end/internal/models"
)

// Checkout ouvre une session de paiement : lecture du panier, devis,
// déclaration du montant dû à la passerelle. Aucune écriture en base.
func Checkout(c *gin.Context) {
	var req struct {
		PaymentMethod string `json:"payment_method" binding:"required"`
		CouponCode    string `json:"coupon_code"` // Optionnel
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	session, err := svc.BeginCheckout(c.Request.Context(), userID, checkout.BeginCheckoutInput{
		PaymentMethod: req.PaymentMethod,
		CouponCode:    req.CouponCode,
	})
	if err != nil {
		writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// CheckoutCancelled : le client a fermé le widget de paiement. Rien n'a
// été débité ni écrit, le panier reste intact pour retenter.
func CheckoutCancelled(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	log.Printf("⚠️ Paiement abandonné par %s", userID)
	c.JSON(http.StatusOK, gin.H{
		"cancelled": true,
		"message":   "Paiement annulé, votre panier est conservé",
	})
}

// ValidateCoupon vérifie un code pour l'affichage panier, sans le consommer
func ValidateCoupon(c *gin.Context) {
	var req struct {
		Code  string            `json:"code" binding:"required"`
		Items []models.CartItem `json:"items" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	result := svc.ValidateCoupon(c.Request.Context(), req.Code, req.Items)
	c.JSON(http.StatusOK, result)
}
