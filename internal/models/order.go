package models

import "time"

// Statuts de traitement (expédition) d'une commande
const (
	FulfillmentPending    = "pending"
	FulfillmentProcessing = "processing"
	FulfillmentShipped    = "shipped"
	FulfillmentDelivered  = "delivered"
	FulfillmentCancelled  = "cancelled"
)

// Statuts de paiement — axe indépendant du statut d'expédition
const (
	PaymentPending   = "pending"
	PaymentPartial   = "partial"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Méthodes de paiement
const (
	MethodFull    = "full"    // paiement intégral en ligne
	MethodDeposit = "deposit" // acompte de 10%, solde à la livraison
	MethodCash    = "cash"    // solde encaissé à la livraison
)

type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// OrderItem : ligne de commande avec prix figé au moment de l'achat.
// Les changements de prix catalogue ultérieurs ne touchent jamais
// une commande existante.
type OrderItem struct {
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
	Size       string  `json:"size,omitempty"`
	Color      string  `json:"color,omitempty"`
	Format     string  `json:"format,omitempty"`
	FrameColor string  `json:"frame_color,omitempty"`
}

type Order struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Items             []OrderItem     `json:"items"`
	ShippingAddress   ShippingAddress `json:"shipping_address"`
	PaymentMethod     string          `json:"payment_method"`
	Subtotal          float64         `json:"subtotal"`
	Shipping          float64         `json:"shipping"`
	Discount          float64         `json:"discount"`
	CouponCode        string          `json:"coupon_code,omitempty"`
	Total             float64         `json:"total"`
	FulfillmentStatus string          `json:"status"`
	PaymentStatus     string          `json:"payment_status"`
	PaymentID         string          `json:"payment_id,omitempty"` // id passerelle du paiement initiateur
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ValidFulfillmentStatus vérifie qu'un statut d'expédition est connu
func ValidFulfillmentStatus(s string) bool {
	switch s {
	case FulfillmentPending, FulfillmentProcessing, FulfillmentShipped,
		FulfillmentDelivered, FulfillmentCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus vérifie qu'un statut de paiement est connu
func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}
