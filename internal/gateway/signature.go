package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature recalcule côté serveur la signature que Razorpay remet
// au client après paiement : HMAC-SHA256 de "<order_id>|<payment_id>"
// avec le secret partagé. On ne fait jamais confiance à la signature
// soumise par le client sans ce recalcul.
func VerifySignature(gatewayOrderID, gatewayPaymentID, signature, secret string) bool {
	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
