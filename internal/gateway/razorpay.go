package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayClient implémente Client au-dessus du SDK officiel
type RazorpayClient struct {
	api   *razorpay.Client
	keyID string
}

func NewRazorpay(keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		api:   razorpay.NewClient(keyID, keySecret),
		keyID: keyID,
	}
}

func (c *RazorpayClient) PublicKey() string {
	return c.keyID
}

// CreateOrder crée la commande Razorpay. Le SDK ne prend pas de
// context ; le paramètre est conservé pour honorer l'interface.
func (c *RazorpayClient) CreateOrder(_ context.Context, amount int64, currency, receipt string, notes map[string]interface{}) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}

	body, err := c.api.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("création commande passerelle: %w", err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return nil, fmt.Errorf("réponse passerelle sans identifiant de commande")
	}

	return &Order{ID: id, Amount: amount, Currency: currency}, nil
}
