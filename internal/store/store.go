// Package store isole l'accès aux données du cœur checkout : le service
// ne dépend que des interfaces, les implémentations Scylla/Redis vivent
// ici et les tests injectent des doubles.
package store

import (
	"context"
	"errors"

	"github.com/gocql/gocql"

	"lumira_back_end/internal/models"
)

var (
	ErrNotFound = errors.New("enregistrement introuvable")
	// ErrVersionConflict : écriture conditionnelle refusée, la commande a
	// été modifiée entre la lecture et l'écriture
	ErrVersionConflict = errors.New("conflit de mise à jour concurrente")
)

// StatusUpdate : mise à jour partielle des statuts d'une commande.
// Seuls les champs non nil sont écrits (merge champ par champ).
type StatusUpdate struct {
	FulfillmentStatus *string
	PaymentStatus     *string
}

type OrderStore interface {
	Insert(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	// GetByGatewayPayment : clé d'idempotence naturelle — un paiement
	// passerelle donné ne crée jamais deux commandes
	GetByGatewayPayment(ctx context.Context, gatewayPaymentID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	// Merge applique upd sur la commande avec une écriture conditionnelle
	// sur updated_at ; retourne ErrVersionConflict si la ligne a bougé
	Merge(ctx context.Context, id string, upd StatusUpdate) (*models.Order, error)
}

type PaymentStore interface {
	Insert(ctx context.Context, payment *models.Payment) error
	ListByOrder(ctx context.Context, orderID string) ([]models.Payment, error)
}

type CartStore interface {
	Get(ctx context.Context, userID string) ([]models.CartItem, error)
	// Clear vide le panier ; idempotent, vider un panier absent ne fait rien
	Clear(ctx context.Context, userID string) error
}

type CouponStore interface {
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	// IncrementUsage comptabilise une utilisation après commande ; best-effort
	IncrementUsage(ctx context.Context, code string) error
}

type NotificationStore interface {
	Insert(ctx context.Context, notif *models.Notification) error
	ListByUser(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID string, id gocql.UUID) error
}

type UserStore interface {
	GetEmail(ctx context.Context, userID string) (string, error)
	ListAdmins(ctx context.Context) ([]models.User, error)
}

type ProductStore interface {
	Get(ctx context.Context, productID string) (*models.Product, error)
}
