// Package checkout porte le cœur du parcours de commande : calcul du
// montant à encaisser, routage plein tarif / acompte, réconciliation du
// retour passerelle en commande + paiements, puis diffusion best-effort
// des notifications et vidage du panier.
package checkout

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"

	"lumira_back_end/internal/gateway"
	"lumira_back_end/internal/models"
	"lumira_back_end/internal/pricing"
	"lumira_back_end/internal/store"
)

// Mailer : envoi des emails de commande. L'implémentation SMTP vit dans
// utils ; les tests injectent un enregistreur.
type Mailer interface {
	SendOrderConfirmation(order *models.Order, customerEmail string) error
	SendOrderStatus(order *models.Order, customerEmail, newStatus string) error
}

type Service struct {
	Products store.ProductStore
	Carts    store.CartStore
	Coupons  store.CouponStore
	Orders   store.OrderStore
	Payments store.PaymentStore
	Notifs   store.NotificationStore
	Users    store.UserStore
	Gateway  gateway.Client
	Mailer   Mailer

	// Secret partagé de la passerelle : signature HMAC du retour paiement
	GatewaySecret string

	Currency      string
	FreeThreshold float64
	ShippingFee   float64
	DepositRate   float64
}

// =============================================
// ROUTAGE DU PAIEMENT (aucune mutation)
// =============================================

type BeginCheckoutInput struct {
	PaymentMethod string
	CouponCode    string
}

// CheckoutSession : tout ce dont le widget de paiement côté client a
// besoin pour s'ouvrir. Rien n'a encore été écrit en base.
type CheckoutSession struct {
	GatewayOrderID string        `json:"gateway_order_id"`
	PublicKey      string        `json:"key_id"`
	AmountDue      int64         `json:"amount_due"` // centimes
	Currency       string        `json:"currency"`
	PaymentMethod  string        `json:"payment_method"`
	Quote          pricing.Quote `json:"quote"`
	ItemsCount     int           `json:"items_count"`
}

// BeginCheckout lit le panier, fige nom/prix depuis le catalogue,
// calcule le devis et déclare à la passerelle le montant dû maintenant :
// total pour "full", acompte arrondi pour "deposit".
func (s *Service) BeginCheckout(ctx context.Context, userID string, in BeginCheckoutInput) (*CheckoutSession, error) {
	if in.PaymentMethod != models.MethodFull && in.PaymentMethod != models.MethodDeposit {
		return nil, fmt.Errorf("%w: méthode de paiement inconnue %q", ErrValidation, in.PaymentMethod)
	}

	items, err := s.Carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	// Snapshot prix/nom et contrôle de stock, ligne par ligne
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantité invalide pour %s", ErrValidation, item.ProductID)
		}

		product, err := s.Products.Get(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: produit introuvable %s", ErrValidation, item.ProductID)
		}
		if product.Stock < item.Quantity {
			return nil, fmt.Errorf("%w: %s (disponible: %d, demandé: %d)",
				ErrStockInsufficient, product.Name, product.Stock, item.Quantity)
		}

		items[i].Name = product.Name
		items[i].Price = product.Price
	}

	coupon, err := s.resolveCoupon(ctx, in.CouponCode, pricing.Subtotal(items))
	if err != nil {
		return nil, err
	}

	quote := pricing.Compute(items, coupon, s.FreeThreshold, s.ShippingFee)

	amountDue := quote.Total
	if in.PaymentMethod == models.MethodDeposit {
		amountDue = pricing.Advance(quote.Total, s.DepositRate)
	}

	notes := map[string]interface{}{
		"user_id":        userID,
		"payment_method": in.PaymentMethod,
	}
	if coupon != nil {
		notes["coupon_code"] = coupon.Code
	}

	gwOrder, err := s.Gateway.CreateOrder(ctx, toMinorUnits(amountDue), s.Currency, uuid.NewString(), notes)
	if err != nil {
		log.Printf("❌ Erreur passerelle: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}

	log.Printf("💳 Checkout créé: %s (%.2f€ dû maintenant, méthode %s) pour %s",
		gwOrder.ID, amountDue, in.PaymentMethod, userID)

	return &CheckoutSession{
		GatewayOrderID: gwOrder.ID,
		PublicKey:      s.Gateway.PublicKey(),
		AmountDue:      gwOrder.Amount,
		Currency:       gwOrder.Currency,
		PaymentMethod:  in.PaymentMethod,
		Quote:          quote,
		ItemsCount:     len(items),
	}, nil
}

// resolveCoupon vérifie l'existence, l'activité et la fenêtre de
// validité d'un code. Le calcul du montant de réduction reste dans
// pricing pour n'exister qu'une fois.
func (s *Service) resolveCoupon(ctx context.Context, code string, subtotal float64) (*models.Coupon, error) {
	if code == "" {
		return nil, nil
	}

	coupon, err := s.Coupons.GetByCode(ctx, strings.ToUpper(code))
	if err != nil {
		return nil, fmt.Errorf("%w: code inconnu", ErrCouponInvalid)
	}

	now := time.Now()
	switch {
	case !coupon.IsActive:
		return nil, fmt.Errorf("%w: ce coupon n'est plus actif", ErrCouponInvalid)
	case now.Before(coupon.StartsAt):
		return nil, fmt.Errorf("%w: ce coupon n'est pas encore valide", ErrCouponInvalid)
	case now.After(coupon.ExpiresAt):
		return nil, fmt.Errorf("%w: ce coupon a expiré", ErrCouponInvalid)
	case coupon.MaxUses > 0 && coupon.UsedCount >= coupon.MaxUses:
		return nil, fmt.Errorf("%w: ce coupon a atteint sa limite d'utilisation", ErrCouponInvalid)
	case subtotal < coupon.MinAmount:
		return nil, fmt.Errorf("%w: montant minimum requis %.2f€", ErrCouponInvalid, coupon.MinAmount)
	}

	return coupon, nil
}

// ValidateCoupon : variante informative pour l'affichage panier
func (s *Service) ValidateCoupon(ctx context.Context, code string, items []models.CartItem) models.CouponValidation {
	coupon, err := s.resolveCoupon(ctx, code, pricing.Subtotal(items))
	if err != nil {
		return models.CouponValidation{IsValid: false, ErrorMessage: err.Error()}
	}
	if coupon == nil {
		return models.CouponValidation{IsValid: false, ErrorMessage: "code coupon requis"}
	}

	quote := pricing.Compute(items, coupon, s.FreeThreshold, s.ShippingFee)
	return models.CouponValidation{
		IsValid:  true,
		Discount: quote.Discount,
		Type:     coupon.Type,
		Code:     coupon.Code,
	}
}

// =============================================
// RÉCONCILIATION (l'unique écrivain à la création)
// =============================================

type PlaceOrderInput struct {
	Items           []models.OrderItem
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
	Subtotal        float64
	Shipping        float64
	Discount        float64
	CouponCode      string
	Total           float64

	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
}

// PlaceOrder est appelé après le callback de succès de la passerelle.
// Ordre strict : vérification signature → idempotence → commande →
// paiement(s) → panier → notifications. Tout ce qui suit l'écriture de
// la commande est best-effort et ne la remet jamais en cause.
func (s *Service) PlaceOrder(ctx context.Context, userID, userEmail string, in PlaceOrderInput) (*models.Order, error) {
	if err := validatePlaceOrder(in); err != nil {
		return nil, err
	}

	// 1. Recalcul HMAC serveur — on ne fait pas confiance au client
	if !gateway.VerifySignature(in.GatewayOrderID, in.GatewayPaymentID, in.GatewaySignature, s.GatewaySecret) {
		log.Printf("❌ Signature paiement invalide pour %s (user %s)", in.GatewayPaymentID, userID)
		return nil, ErrInvalidSignature
	}

	// 2. Idempotence : un même paiement passerelle ne crée jamais deux
	// commandes, même si le callback est rejoué
	if existing, err := s.Orders.GetByGatewayPayment(ctx, in.GatewayPaymentID); err == nil {
		log.Printf("🔁 Commande déjà enregistrée pour le paiement %s, on renvoie l'existante", in.GatewayPaymentID)
		return existing, nil
	} else if err != store.ErrNotFound {
		return nil, err
	}

	paymentStatus := models.PaymentCompleted
	charged := in.Total
	if in.PaymentMethod == models.MethodDeposit {
		paymentStatus = models.PaymentPartial
		charged = pricing.Advance(in.Total, s.DepositRate)
	}

	now := time.Now()
	order := &models.Order{
		ID:                uuid.NewString(),
		UserID:            userID,
		Items:             in.Items,
		ShippingAddress:   in.ShippingAddress,
		PaymentMethod:     in.PaymentMethod,
		Subtotal:          in.Subtotal,
		Shipping:          in.Shipping,
		Discount:          in.Discount,
		CouponCode:        in.CouponCode,
		Total:             in.Total,
		FulfillmentStatus: models.FulfillmentPending,
		PaymentStatus:     paymentStatus,
		PaymentID:         in.GatewayPaymentID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	// 3. Persistance de la commande — l'échec ici est le cas le plus
	// grave du sous-système : le client a payé, rien ne doit être
	// retenté en aveugle
	if err := s.Orders.Insert(ctx, order); err != nil {
		log.Printf("🚨 Paiement %s encaissé mais commande non persistée: %v", in.GatewayPaymentID, err)
		return nil, fmt.Errorf("%w (paiement %s): %v", ErrOrderPersistPostPayment, in.GatewayPaymentID, err)
	}
	log.Printf("✅ Commande %s enregistrée (%.2f€, %s) pour %s", order.ID, order.Total, paymentStatus, userID)

	// 4. Trace du paiement encaissé, signature conservée pour audit
	advance := &models.Payment{
		ID:               uuid.NewString(),
		OrderID:          order.ID,
		Amount:           charged,
		Method:           in.PaymentMethod,
		GatewayPaymentID: in.GatewayPaymentID,
		GatewaySignature: in.GatewaySignature,
		Status:           models.PaymentCompleted,
		CreatedAt:        now,
	}
	if err := s.Payments.Insert(ctx, advance); err != nil {
		log.Printf("❌ Erreur enregistrement paiement %s (commande %s créée): %v", in.GatewayPaymentID, order.ID, err)
	}

	// Le solde dû à la livraison existe comme créance explicite,
	// pas seulement comme soustraction d'affichage
	if in.PaymentMethod == models.MethodDeposit {
		balance := &models.Payment{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			Amount:    in.Total - charged,
			Method:    models.MethodCash,
			Status:    models.PaymentPending,
			CreatedAt: now,
		}
		if err := s.Payments.Insert(ctx, balance); err != nil {
			log.Printf("❌ Erreur enregistrement solde à livrer pour %s: %v", order.ID, err)
		}
	}

	if in.CouponCode != "" {
		if err := s.Coupons.IncrementUsage(ctx, in.CouponCode); err != nil {
			log.Printf("⚠️ Erreur comptage utilisation coupon %s: %v", in.CouponCode, err)
		}
	}

	// 5. Panier vidé APRÈS la commande, jamais avant
	if err := s.Carts.Clear(ctx, userID); err != nil {
		log.Printf("⚠️ Erreur vidage panier pour %s (commande %s conservée): %v", userID, order.ID, err)
	} else {
		log.Printf("🧹 Panier vidé pour %s", userID)
	}

	// 6. Diffusion best-effort
	s.notifyOrderPlaced(ctx, order, userEmail)

	return order, nil
}

func validatePlaceOrder(in PlaceOrderInput) error {
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: aucune ligne de commande", ErrValidation)
	}
	for _, item := range in.Items {
		if item.ProductID == "" || item.Quantity <= 0 || item.Price < 0 {
			return fmt.Errorf("%w: ligne de commande incomplète", ErrValidation)
		}
	}

	addr := in.ShippingAddress
	if addr.FullName == "" || addr.Street == "" || addr.City == "" || addr.PostalCode == "" || addr.Country == "" {
		return fmt.Errorf("%w: adresse de livraison incomplète", ErrValidation)
	}

	if in.PaymentMethod != models.MethodFull && in.PaymentMethod != models.MethodDeposit {
		return fmt.Errorf("%w: méthode de paiement inconnue %q", ErrValidation, in.PaymentMethod)
	}

	if in.Subtotal < 0 || in.Shipping < 0 || in.Discount < 0 {
		return fmt.Errorf("%w: montants négatifs", ErrValidation)
	}
	if math.Abs(in.Subtotal+in.Shipping-in.Discount-in.Total) > 0.01 {
		return fmt.Errorf("%w: total incohérent (%.2f ≠ %.2f + %.2f − %.2f)",
			ErrValidation, in.Total, in.Subtotal, in.Shipping, in.Discount)
	}

	return nil
}

// =============================================
// PAIEMENT ADDITIONNEL
// =============================================

type RecordPaymentInput struct {
	OrderID          string
	Amount           float64
	Method           string
	Status           string
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
}

// RecordPayment trace un encaissement supplémentaire sur une commande
// existante et aligne son statut de paiement. Aucune notification :
// seul un changement de statut d'expédition en déclenche une.
func (s *Service) RecordPayment(ctx context.Context, in RecordPaymentInput) (*models.Payment, error) {
	if in.Amount <= 0 || !models.ValidPaymentStatus(in.Status) {
		return nil, fmt.Errorf("%w: paiement incohérent", ErrValidation)
	}

	if _, err := s.Orders.GetByID(ctx, in.OrderID); err != nil {
		return nil, err
	}

	// Un encaissement passerelle doit porter une signature vérifiable
	if in.GatewayPaymentID != "" &&
		!gateway.VerifySignature(in.GatewayOrderID, in.GatewayPaymentID, in.GatewaySignature, s.GatewaySecret) {
		return nil, ErrInvalidSignature
	}

	payment := &models.Payment{
		ID:               uuid.NewString(),
		OrderID:          in.OrderID,
		Amount:           in.Amount,
		Method:           in.Method,
		GatewayPaymentID: in.GatewayPaymentID,
		GatewaySignature: in.GatewaySignature,
		Status:           in.Status,
		CreatedAt:        time.Now(),
	}
	if err := s.Payments.Insert(ctx, payment); err != nil {
		return nil, err
	}

	newStatus := in.Status
	if _, err := s.Orders.Merge(ctx, in.OrderID, store.StatusUpdate{PaymentStatus: &newStatus}); err != nil {
		log.Printf("⚠️ Paiement %s tracé mais statut commande non aligné: %v", payment.ID, err)
	}

	return payment, nil
}

// =============================================
// MISE À JOUR ADMIN DES STATUTS
// =============================================

// UpdateOrderStatus applique un merge champ par champ : seul ce qui est
// fourni est écrit. Un changement de statut d'expédition notifie le
// client ; un changement de statut de paiement seul reste silencieux.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID string, fulfillment, payment *string) (*models.Order, error) {
	if fulfillment == nil && payment == nil {
		return nil, fmt.Errorf("%w: aucune mise à jour fournie", ErrValidation)
	}
	if fulfillment != nil && !models.ValidFulfillmentStatus(*fulfillment) {
		return nil, fmt.Errorf("%w: statut d'expédition inconnu %q", ErrValidation, *fulfillment)
	}
	if payment != nil && !models.ValidPaymentStatus(*payment) {
		return nil, fmt.Errorf("%w: statut de paiement inconnu %q", ErrValidation, *payment)
	}

	previous, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.Orders.Merge(ctx, orderID, store.StatusUpdate{
		FulfillmentStatus: fulfillment,
		PaymentStatus:     payment,
	})
	if err != nil {
		return nil, err
	}

	if fulfillment != nil && *fulfillment != previous.FulfillmentStatus {
		s.notifyStatusChange(ctx, order, *fulfillment)
	}

	return order, nil
}

// =============================================
// DIFFUSION BEST-EFFORT
// =============================================

// notifyOrderPlaced : notification client, une notification par admin,
// email récapitulatif aux opérations. Les trois canaux sont
// indépendants ; un échec est loggé puis oublié.
func (s *Service) notifyOrderPlaced(ctx context.Context, order *models.Order, customerEmail string) {
	customer := &models.Notification{
		ID:     gocql.TimeUUID(),
		UserID: order.UserID,
		Type:   models.NotifOrderPlaced,
		Title:  "Commande confirmée",
		Message: fmt.Sprintf("Votre commande #%s de %.2f€ a bien été enregistrée. Merci !",
			shortID(order.ID), order.Total),
		Data:      map[string]string{"order_id": order.ID, "total": fmt.Sprintf("%.2f", order.Total)},
		CreatedAt: time.Now(),
	}
	if err := s.Notifs.Insert(ctx, customer); err != nil {
		log.Printf("⚠️ Erreur notification client pour %s: %v", order.ID, err)
	}

	admins, err := s.Users.ListAdmins(ctx)
	if err != nil {
		log.Printf("⚠️ Erreur récupération admins: %v", err)
	}
	for _, admin := range admins {
		notif := &models.Notification{
			ID:     gocql.TimeUUID(),
			UserID: admin.ID,
			Type:   models.NotifNewOrder,
			Title:  "Nouvelle commande",
			Message: fmt.Sprintf("Commande #%s de %.2f€ (%s) à préparer",
				shortID(order.ID), order.Total, order.PaymentMethod),
			Data:      map[string]string{"order_id": order.ID},
			CreatedAt: time.Now(),
		}
		if err := s.Notifs.Insert(ctx, notif); err != nil {
			log.Printf("⚠️ Erreur notification admin %s pour %s: %v", admin.ID, order.ID, err)
		}
	}

	if err := s.Mailer.SendOrderConfirmation(order, customerEmail); err != nil {
		log.Printf("⚠️ Erreur email récapitulatif pour %s: %v", order.ID, err)
	}
}

// notifyStatusChange prévient le client du nouveau statut d'expédition
func (s *Service) notifyStatusChange(ctx context.Context, order *models.Order, newStatus string) {
	notif := &models.Notification{
		ID:        gocql.TimeUUID(),
		UserID:    order.UserID,
		Type:      models.NotifOrderStatus,
		Title:     statusTitle(newStatus),
		Message:   statusMessage(order, newStatus),
		Data:      map[string]string{"order_id": order.ID, "status": newStatus},
		CreatedAt: time.Now(),
	}
	if err := s.Notifs.Insert(ctx, notif); err != nil {
		log.Printf("⚠️ Erreur notification statut pour %s: %v", order.ID, err)
	}

	email, err := s.Users.GetEmail(ctx, order.UserID)
	if err != nil || email == "" {
		log.Printf("⚠️ Email client introuvable pour %s: %v", order.UserID, err)
		return
	}
	if err := s.Mailer.SendOrderStatus(order, email, newStatus); err != nil {
		log.Printf("⚠️ Erreur email statut pour %s: %v", order.ID, err)
	}
}

func statusTitle(status string) string {
	switch status {
	case models.FulfillmentProcessing:
		return "Commande en préparation"
	case models.FulfillmentShipped:
		return "Commande expédiée"
	case models.FulfillmentDelivered:
		return "Commande livrée"
	case models.FulfillmentCancelled:
		return "Commande annulée"
	default:
		return "Mise à jour de votre commande"
	}
}

func statusMessage(order *models.Order, status string) string {
	switch status {
	case models.FulfillmentProcessing:
		return fmt.Sprintf("Votre commande #%s est en cours de préparation.", shortID(order.ID))
	case models.FulfillmentShipped:
		return fmt.Sprintf("Bonne nouvelle ! Votre commande #%s a été expédiée.", shortID(order.ID))
	case models.FulfillmentDelivered:
		return fmt.Sprintf("Votre commande #%s a été livrée. Merci de votre confiance !", shortID(order.ID))
	case models.FulfillmentCancelled:
		return fmt.Sprintf("Votre commande #%s a été annulée.", shortID(order.ID))
	default:
		return fmt.Sprintf("Le statut de votre commande #%s a été mis à jour.", shortID(order.ID))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
