// Package gateway encapsule la passerelle de paiement. Le reste du code
// ne voit que l'interface Client : les tests injectent un faux client,
// la prod utilise Razorpay.
package gateway

import "context"

// Order : commande créée côté passerelle, avant encaissement. Le client
// web ouvre ensuite le widget de paiement avec cet identifiant.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // en centimes
	Currency string `json:"currency"`
}

type Client interface {
	// CreateOrder déclare le montant à encaisser auprès de la passerelle.
	// Aucune mutation côté boutique : en cas d'échec, rien n'existe.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]interface{}) (*Order, error)

	// PublicKey : clé publiable transmise au widget côté client
	PublicKey() string
}
