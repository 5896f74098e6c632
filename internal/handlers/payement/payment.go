package payement

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lumira_back_end/internal/checkout"
)

// CreatePayment trace un encaissement supplémentaire sur une commande
// existante : solde réglé à la livraison, complément après acompte.
func CreatePayment(c *gin.Context) {
	var req struct {
		OrderID          string  `json:"order_id" binding:"required"`
		Amount           float64 `json:"amount" binding:"required"`
		Method           string  `json:"method" binding:"required"`
		Status           string  `json:"status" binding:"required"`
		GatewayOrderID   string  `json:"razorpay_order_id"`
		GatewayPaymentID string  `json:"razorpay_payment_id"`
		GatewaySignature string  `json:"razorpay_signature"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	payment, err := svc.RecordPayment(c.Request.Context(), checkout.RecordPaymentInput{
		OrderID:          req.OrderID,
		Amount:           req.Amount,
		Method:           req.Method,
		Status:           req.Status,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		GatewaySignature: req.GatewaySignature,
	})
	if err != nil {
		writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Paiement enregistré",
		"payment": payment,
	})
}

// GetOrderPayments liste les paiements d'une commande (acompte, solde)
func GetOrderPayments(c *gin.Context) {
	orderID := c.Param("id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de commande requis"})
		return
	}

	order, err := svc.Orders.GetByID(c.Request.Context(), orderID)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}

	// un client ne voit que ses propres commandes
	if role := c.GetString("role"); role != "admin" && order.UserID != c.GetString("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès refusé"})
		return
	}

	payments, err := svc.Payments.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
