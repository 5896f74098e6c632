package models

import "time"

// Payment : trace d'encaissement rattachée à une commande. Une commande
// "deposit" porte deux paiements : l'acompte Razorpay encaissé en ligne
// et le solde "cash" en attente jusqu'à la livraison.
type Payment struct {
	ID               string    `json:"id"`
	OrderID          string    `json:"order_id"`
	Amount           float64   `json:"amount"`
	Method           string    `json:"method"`
	GatewayPaymentID string    `json:"razorpay_payment_id,omitempty"`
	GatewaySignature string    `json:"razorpay_signature,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}
