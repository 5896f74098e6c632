package payement

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lumira_back_end/internal/models"
)

// UpdateOrderStatus permet à un admin de mettre à jour les statuts d'une
// commande. Mise à jour partielle : seuls les champs fournis sont écrits,
// deux admins sur des champs différents ne s'écrasent pas.
func UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identifiant de commande requis"})
		return
	}

	var req struct {
		Status        *string `json:"status"`
		PaymentStatus *string `json:"payment_status"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	if req.Status == nil && req.PaymentStatus == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":            "Aucune mise à jour fournie",
			"valid_statuses":   []string{models.FulfillmentPending, models.FulfillmentProcessing, models.FulfillmentShipped, models.FulfillmentDelivered, models.FulfillmentCancelled},
			"payment_statuses": []string{models.PaymentPending, models.PaymentPartial, models.PaymentCompleted, models.PaymentFailed},
		})
		return
	}

	order, err := svc.UpdateOrderStatus(c.Request.Context(), orderID, req.Status, req.PaymentStatus)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Commande mise à jour",
		"order":   order,
	})
}

// GetAllOrders liste toutes les commandes pour le back-office
func GetAllOrders(c *gin.Context) {
	orders, err := svc.Orders.ListAll(c.Request.Context())
	if err != nil {
		writeCheckoutError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"count":  len(orders),
	})
}

// GetOrderStats agrège quelques chiffres pour le tableau de bord admin
func GetOrderStats(c *gin.Context) {
	orders, err := svc.Orders.ListAll(c.Request.Context())
	if err != nil {
		writeCheckoutError(c, err)
		return
	}

	var revenue float64
	byStatus := map[string]int{}
	deposits := 0
	for _, order := range orders {
		byStatus[order.FulfillmentStatus]++
		if order.FulfillmentStatus != models.FulfillmentCancelled {
			revenue += order.Total
		}
		if order.PaymentMethod == models.MethodDeposit {
			deposits++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"total_orders":   len(orders),
		"total_revenue":  revenue,
		"by_status":      byStatus,
		"deposit_orders": deposits,
	})
}
