package payement

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lumira_back_end/internal/checkout"
	"lumira_back_end/internal/models"
)

// CreateOrder réconcilie le retour de succès de la passerelle en
// commande persistée. Rejouer le même paiement renvoie la commande
// existante au lieu d'en créer une seconde.
func CreateOrder(c *gin.Context) {
	var req struct {
		Items            []models.OrderItem     `json:"items" binding:"required"`
		ShippingAddress  models.ShippingAddress `json:"shipping_address" binding:"required"`
		PaymentMethod    string                 `json:"payment_method" binding:"required"`
		Subtotal         float64                `json:"subtotal"`
		Shipping         float64                `json:"shipping"`
		Discount         float64                `json:"discount"`
		CouponCode       string                 `json:"coupon_code"`
		Total            float64                `json:"total"` // 0 légitime si un coupon couvre tout
		GatewayOrderID   string                 `json:"razorpay_order_id" binding:"required"`
		GatewayPaymentID string                 `json:"razorpay_payment_id" binding:"required"`
		GatewaySignature string                 `json:"razorpay_signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	email := c.GetString("email")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Utilisateur non authentifié"})
		return
	}

	order, err := svc.PlaceOrder(c.Request.Context(), userID, email, checkout.PlaceOrderInput{
		Items:            req.Items,
		ShippingAddress:  req.ShippingAddress,
		PaymentMethod:    req.PaymentMethod,
		Subtotal:         req.Subtotal,
		Shipping:         req.Shipping,
		Discount:         req.Discount,
		CouponCode:       req.CouponCode,
		Total:            req.Total,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		GatewaySignature: req.GatewaySignature,
	})
	if err != nil {
		// Cas critique : débité mais non enregistré. On renvoie l'id de
		// paiement pour que le support retrouve la trace, et le client ne
		// doit surtout PAS repayer.
		if errors.Is(err, checkout.ErrOrderPersistPostPayment) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":      "Votre paiement a bien été encaissé mais la commande n'a pas pu être enregistrée. Ne payez pas à nouveau : contactez le support avec votre référence de paiement.",
				"support":    true,
				"payment_id": req.GatewayPaymentID,
			})
			return
		}
		writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Commande enregistrée",
		"order":   order,
	})
}
