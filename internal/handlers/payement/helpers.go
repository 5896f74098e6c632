package payement

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lumira_back_end/internal/checkout"
	"lumira_back_end/internal/store"
)

// svc est injecté au démarrage par routes.Setup
var svc *checkout.Service

func Init(s *checkout.Service) {
	svc = s
}

// writeCheckoutError traduit la taxonomie d'erreurs du service en
// réponse HTTP. Tout ce qui n'est pas reconnu devient un 500 générique.
func writeCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, checkout.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
	case errors.Is(err, checkout.ErrCouponInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrStockInsufficient):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, checkout.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature de paiement invalide"})
	case errors.Is(err, checkout.ErrGatewayUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Paiement momentanément indisponible, veuillez réessayer"})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Ressource introuvable"})
	case errors.Is(err, store.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "La commande a été modifiée entre-temps, rechargez et réessayez"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur serveur"})
	}
}
