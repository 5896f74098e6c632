package checkout

import "errors"

// Taxonomie des échecs du parcours de commande. Les handlers HTTP
// s'appuient sur errors.Is pour choisir le statut et le message.
var (
	// ErrValidation : requête incomplète ou incohérente, rejetée avant
	// tout appel externe
	ErrValidation = errors.New("données de commande invalides")

	// ErrEmptyCart : checkout demandé sur un panier vide
	ErrEmptyCart = errors.New("panier vide")

	// ErrCouponInvalid : code inconnu, inactif, expiré ou sous le minimum
	ErrCouponInvalid = errors.New("coupon invalide")

	// ErrStockInsufficient : une ligne du panier dépasse le stock courant
	ErrStockInsufficient = errors.New("stock insuffisant")

	// ErrGatewayUnavailable : la passerelle n'a pas pu créer la commande
	// de paiement ; aucune mutation, l'utilisateur peut réessayer
	ErrGatewayUnavailable = errors.New("passerelle de paiement indisponible")

	// ErrInvalidSignature : la signature renvoyée par le client ne
	// correspond pas au recalcul HMAC serveur ; rien n'est persisté
	ErrInvalidSignature = errors.New("signature de paiement invalide")

	// ErrOrderPersistPostPayment : le paiement est encaissé mais la
	// commande n'a pas pu être enregistrée. Le seul échec qu'on ne
	// retente JAMAIS automatiquement : re-payer doublerait le débit.
	// L'utilisateur doit contacter le support avec son id de paiement.
	ErrOrderPersistPostPayment = errors.New("paiement encaissé mais commande non enregistrée")
)
