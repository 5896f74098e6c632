package checkout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumira_back_end/internal/models"
	"lumira_back_end/internal/store"
)

const testSecret = "secret_test_lumira"

func sign(gatewayOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

type fixture struct {
	svc      *Service
	products *fakeProducts
	carts    *fakeCarts
	coupons  *fakeCoupons
	orders   *fakeOrders
	payments *fakePayments
	notifs   *fakeNotifs
	users    *fakeUsers
	gw       *fakeGateway
	mailer   *fakeMailer
}

func newFixture() *fixture {
	f := &fixture{
		products: &fakeProducts{products: map[string]*models.Product{
			"p1": {Name: "Affiche Aurora 50x70", Price: 1000, Stock: 10},
			"p2": {Name: "Cadre chêne 30x40", Price: 400, Stock: 3},
		}},
		carts:    &fakeCarts{items: map[string][]models.CartItem{}},
		coupons:  &fakeCoupons{coupons: map[string]*models.Coupon{}},
		orders:   newFakeOrders(),
		payments: &fakePayments{},
		notifs:   &fakeNotifs{insertErr: map[string]error{}},
		users:    &fakeUsers{emails: map[string]string{"u1": "client@example.com"}},
		gw:       &fakeGateway{},
		mailer:   &fakeMailer{},
	}
	f.svc = &Service{
		Products:      f.products,
		Carts:         f.carts,
		Coupons:       f.coupons,
		Orders:        f.orders,
		Payments:      f.payments,
		Notifs:        f.notifs,
		Users:         f.users,
		Gateway:       f.gw,
		Mailer:        f.mailer,
		GatewaySecret: testSecret,
		Currency:      "EUR",
		FreeThreshold: 1000,
		ShippingFee:   49,
		DepositRate:   0.10,
	}
	return f
}

func placeInput(method string) PlaceOrderInput {
	return PlaceOrderInput{
		Items: []models.OrderItem{
			{ProductID: "p1", Name: "Affiche Aurora 50x70", Price: 1000, Quantity: 2},
		},
		ShippingAddress: models.ShippingAddress{
			FullName:   "Claire Dupont",
			Street:     "12 rue des Lilas",
			City:       "Lyon",
			PostalCode: "69003",
			Country:    "France",
		},
		PaymentMethod:    method,
		Subtotal:         2000,
		Shipping:         0,
		Discount:         0,
		Total:            2000,
		GatewayOrderID:   "order_gw_test",
		GatewayPaymentID: "pay_abc123",
		GatewaySignature: sign("order_gw_test", "pay_abc123"),
	}
}

// =============================================
// BeginCheckout
// =============================================

func TestBeginCheckoutFullAmount(t *testing.T) {
	f := newFixture()
	f.carts.items["u1"] = []models.CartItem{{ProductID: "p1", Quantity: 2}}

	session, err := f.svc.BeginCheckout(context.Background(), "u1", BeginCheckoutInput{PaymentMethod: models.MethodFull})
	require.NoError(t, err)

	// 2000€ > seuil, livraison offerte
	assert.Equal(t, int64(200000), session.AmountDue)
	assert.Equal(t, float64(0), session.Quote.Shipping)
	assert.Equal(t, "EUR", session.Currency)
	assert.Equal(t, "rzp_test_key", session.PublicKey)
}

func TestBeginCheckoutDepositAmount(t *testing.T) {
	f := newFixture()
	f.carts.items["u1"] = []models.CartItem{{ProductID: "p1", Quantity: 2}}

	session, err := f.svc.BeginCheckout(context.Background(), "u1", BeginCheckoutInput{PaymentMethod: models.MethodDeposit})
	require.NoError(t, err)

	// acompte de 10% sur 2000€ = 200€
	assert.Equal(t, int64(20000), session.AmountDue)
	assert.Equal(t, float64(2000), session.Quote.Total)
}

func TestBeginCheckoutEmptyCart(t *testing.T) {
	f := newFixture()

	_, err := f.svc.BeginCheckout(context.Background(), "u1", BeginCheckoutInput{PaymentMethod: models.MethodFull})
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestBeginCheckoutInsufficientStock(t *testing.T) {
	f := newFixture()
	f.carts.items["u1"] = []models.CartItem{{ProductID: "p2", Quantity: 5}}

	_, err := f.svc.BeginCheckout(context.Background(), "u1", BeginCheckoutInput{PaymentMethod: models.MethodFull})
	assert.ErrorIs(t, err, ErrStockInsufficient)
}

func TestBeginCheckoutPriceFromCatalog(t *testing.T) {
	f := newFixture()
	// le client envoie un prix mensonger, le catalogue fait foi
	f.carts.items["u1"] = []models.CartItem{{ProductID: "p1", Price: 1, Quantity: 1}}

	session, err := f.svc.BeginCheckout(context.Background(), "u1", BeginCheckoutInput{PaymentMethod: models.MethodFull})
	require.NoError(t, err)
	assert.Equal(t, float64(1000), session.Quote.Subtotal)
}

func TestBeginCheckoutGatewayFailureNoMutation(t *testing.T) {
	f := newFixture()
	f.carts.items["u1"] = []models.CartItem{{ProductID: "p1", Quantity: 2}}
	f.gw.fail = true

	_, err := f.svc.BeginCheckout(context.Background(), "u1", BeginCheckoutInput{PaymentMethod: models.MethodFull})
	require.ErrorIs(t, err, ErrGatewayUnavailable)

	// strictement aucune écriture : panier intact, aucune commande,
	// aucun paiement, aucune notification
	assert.Empty(t, f.carts.clearCalls)
	assert.Empty(t, f.orders.byID)
	assert.Empty(t, f.payments.inserted)
	assert.Empty(t, f.notifs.inserted)
}

func TestBeginCheckoutExpiredCoupon(t *testing.T) {
	f := newFixture()
	f.carts.items["u1"] = []models.CartItem{{ProductID: "p1", Quantity: 2}}
	f.coupons.coupons["VIEUX10"] = &models.Coupon{
		Code: "VIEUX10", Type: "percentage", Value: 10, IsActive: true,
		StartsAt:  time.Now().Add(-48 * time.Hour),
		ExpiresAt: time.Now().Add(-24 * time.Hour),
	}

	_, err := f.svc.BeginCheckout(context.Background(), "u1", BeginCheckoutInput{
		PaymentMethod: models.MethodFull,
		CouponCode:    "vieux10",
	})
	assert.ErrorIs(t, err, ErrCouponInvalid)
}

// =============================================
// PlaceOrder
// =============================================

func TestPlaceOrderFull(t *testing.T) {
	f := newFixture()
	f.carts.items["u1"] = []models.CartItem{{ProductID: "p1", Quantity: 2}}

	order, err := f.svc.PlaceOrder(context.Background(), "u1", "client@example.com", placeInput(models.MethodFull))
	require.NoError(t, err)

	assert.Equal(t, models.FulfillmentPending, order.FulfillmentStatus)
	assert.Equal(t, models.PaymentCompleted, order.PaymentStatus)
	assert.Equal(t, "pay_abc123", order.PaymentID)

	require.Len(t, f.payments.inserted, 1)
	assert.Equal(t, float64(2000), f.payments.inserted[0].Amount)
	assert.Equal(t, models.PaymentCompleted, f.payments.inserted[0].Status)

	assert.Equal(t, []string{"u1"}, f.carts.clearCalls)
}

func TestPlaceOrderDepositCreatesBalanceLeg(t *testing.T) {
	f := newFixture()

	order, err := f.svc.PlaceOrder(context.Background(), "u1", "client@example.com", placeInput(models.MethodDeposit))
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPartial, order.PaymentStatus)

	// deux traces : l'acompte encaissé et le solde dû à la livraison
	require.Len(t, f.payments.inserted, 2)
	advance, balance := f.payments.inserted[0], f.payments.inserted[1]
	assert.Equal(t, float64(200), advance.Amount)
	assert.Equal(t, models.PaymentCompleted, advance.Status)
	assert.Equal(t, float64(1800), balance.Amount)
	assert.Equal(t, models.MethodCash, balance.Method)
	assert.Equal(t, models.PaymentPending, balance.Status)
	assert.Empty(t, balance.GatewayPaymentID)
}

func TestPlaceOrderRejectsBadSignature(t *testing.T) {
	f := newFixture()
	in := placeInput(models.MethodFull)
	in.GatewaySignature = "deadbeef"

	_, err := f.svc.PlaceOrder(context.Background(), "u1", "client@example.com", in)
	require.ErrorIs(t, err, ErrInvalidSignature)

	assert.Empty(t, f.orders.byID)
	assert.Empty(t, f.payments.inserted)
	assert.Empty(t, f.carts.clearCalls)
}

func TestPlaceOrderIdempotentOnReplay(t *testing.T) {
	f := newFixture()
	in := placeInput(models.MethodFull)

	first, err := f.svc.PlaceOrder(context.Background(), "u1", "client@example.com", in)
	require.NoError(t, err)

	// le callback est rejoué avec le même paiement passerelle
	second, err := f.svc.PlaceOrder(context.Background(), "u1", "client@example.com", in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, f.orders.byID, 1)
	assert.Len(t, f.payments.inserted, 1)
}

func TestPlaceOrderPersistFailureIsLoud(t *testing.T) {
	f := newFixture()
	f.orders.insertErr = store.ErrVersionConflict // n'importe quelle erreur d'écriture

	_, err := f.svc.PlaceOrder(context.Background(), "u1", "client@example.com", placeInput(models.MethodFull))
	require.ErrorIs(t, err, ErrOrderPersistPostPayment)

	// l'id de paiement doit remonter jusqu'au support
	assert.Contains(t, err.Error(), "pay_abc123")
	// rien d'autre ne se produit : pas de paiement, pas de vidage
	assert.Empty(t, f.payments.inserted)
	assert.Empty(t, f.carts.clearCalls)
	assert.Empty(t, f.notifs.inserted)
}

func TestCartClearIdempotent(t *testing.T) {
	f := newFixture()

	order, err := f.svc.PlaceOrder(context.Background(), "u1", "client@example.com", placeInput(models.MethodFull))
	require.NoError(t, err)
	require.NotNil(t, order)

	// le panier est vidé par la commande ; le revider ne fait rien et
	// n'échoue pas
	require.NoError(t, f.svc.Carts.Clear(context.Background(), "u1"))
	require.NoError(t, f.svc.Carts.Clear(context.Background(), "u1"))

	items, err := f.svc.Carts.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, items)

	// la commande persistée n'est pas affectée
	assert.Len(t, f.orders.byID, 1)
}

func TestPlaceOrderSurvivesCartClearFailure(t *testing.T) {
	f := newFixture()
	f.carts.clearErr = store.ErrNotFound

	order, err := f.svc.PlaceOrder(context.Background(), "u1", "client@example.com", placeInput(models.MethodFull))
	require.NoError(t, err)
	require.NotNil(t, order)

	// la commande survit à l'échec du vidage
	assert.Len(t, f.orders.byID, 1)
}

func TestPlaceOrderCountsCouponUsage(t *testing.T) {
	f := newFixture()
	in := placeInput(models.MethodFull)
	in.CouponCode = "BIENVENUE10"
	in.Discount = 200
	in.Total = 1800

	_, err := f.svc.PlaceOrder(context.Background(), "u1", "client@example.com", in)
	require.NoError(t, err)
	assert.Equal(t, []string{"BIENVENUE10"}, f.coupons.usageCalls)
}

func TestPlaceOrderAcceptsZeroTotal(t *testing.T) {
	f := newFixture()
	in := placeInput(models.MethodFull)
	// coupon fixe couvrant sous-total et livraison
	in.Subtotal = 100
	in.Shipping = 49
	in.Discount = 149
	in.CouponCode = "TOUT"
	in.Total = 0

	order, err := f.svc.PlaceOrder(context.Background(), "u1", "client@example.com", in)
	require.NoError(t, err)
	assert.Equal(t, float64(0), order.Total)
	assert.Equal(t, models.PaymentCompleted, order.PaymentStatus)
}

func TestPlaceOrderRejectsIncoherentTotal(t *testing.T) {
	f := newFixture()
	in := placeInput(models.MethodFull)
	in.Total = 1500 // ≠ subtotal + shipping − discount

	_, err := f.svc.PlaceOrder(context.Background(), "u1", "client@example.com", in)
	assert.ErrorIs(t, err, ErrValidation)
}

// =============================================
// Diffusion des notifications
// =============================================

func TestPlaceOrderFanout(t *testing.T) {
	f := newFixture()
	f.users.admins = []models.User{
		{ID: "admin1", Email: "a1@lumira-atelier.com"},
		{ID: "admin2", Email: "a2@lumira-atelier.com"},
	}

	_, err := f.svc.PlaceOrder(context.Background(), "u1", "client@example.com", placeInput(models.MethodFull))
	require.NoError(t, err)

	// une notification client + une par admin
	require.Len(t, f.notifs.inserted, 3)
	assert.Equal(t, models.NotifOrderPlaced, f.notifs.inserted[0].Type)
	assert.Equal(t, "u1", f.notifs.inserted[0].UserID)
	assert.Equal(t, models.NotifNewOrder, f.notifs.inserted[1].Type)
	assert.Equal(t, models.NotifNewOrder, f.notifs.inserted[2].Type)

	assert.Equal(t, []string{"client@example.com"}, f.mailer.confirmations)
}

func TestPlaceOrderFanoutChannelsIndependent(t *testing.T) {
	f := newFixture()
	f.users.admins = []models.User{{ID: "admin1"}, {ID: "admin2"}}
	f.notifs.insertErr["admin1"] = store.ErrNotFound
	f.mailer.confirmErr = store.ErrNotFound

	order, err := f.svc.PlaceOrder(context.Background(), "u1", "client@example.com", placeInput(models.MethodFull))
	require.NoError(t, err)
	require.NotNil(t, order)

	// admin1 et l'email échouent, le client et admin2 passent quand même
	userIDs := make([]string, 0, len(f.notifs.inserted))
	for _, n := range f.notifs.inserted {
		userIDs = append(userIDs, n.UserID)
	}
	assert.ElementsMatch(t, []string{"u1", "admin2"}, userIDs)
}

// =============================================
// UpdateOrderStatus
// =============================================

func seedOrder(t *testing.T, f *fixture) *models.Order {
	t.Helper()
	order, err := f.svc.PlaceOrder(context.Background(), "u1", "client@example.com", placeInput(models.MethodFull))
	require.NoError(t, err)
	f.notifs.inserted = nil
	f.mailer.statuses = nil
	return order
}

func TestUpdateOrderStatusNotifiesOnFulfillmentChange(t *testing.T) {
	f := newFixture()
	order := seedOrder(t, f)

	shipped := models.FulfillmentShipped
	updated, err := f.svc.UpdateOrderStatus(context.Background(), order.ID, &shipped, nil)
	require.NoError(t, err)
	assert.Equal(t, models.FulfillmentShipped, updated.FulfillmentStatus)

	require.Len(t, f.notifs.inserted, 1)
	assert.Equal(t, models.NotifOrderStatus, f.notifs.inserted[0].Type)
	assert.Equal(t, models.FulfillmentShipped, f.notifs.inserted[0].Data["status"])
	assert.Equal(t, []string{"client@example.com:shipped"}, f.mailer.statuses)
}

func TestUpdateOrderStatusSilentOnPaymentOnlyChange(t *testing.T) {
	f := newFixture()
	order := seedOrder(t, f)

	completed := models.PaymentCompleted
	_, err := f.svc.UpdateOrderStatus(context.Background(), order.ID, nil, &completed)
	require.NoError(t, err)

	assert.Empty(t, f.notifs.inserted)
	assert.Empty(t, f.mailer.statuses)
}

func TestUpdateOrderStatusSilentWhenUnchanged(t *testing.T) {
	f := newFixture()
	order := seedOrder(t, f)

	same := models.FulfillmentPending
	_, err := f.svc.UpdateOrderStatus(context.Background(), order.ID, &same, nil)
	require.NoError(t, err)
	assert.Empty(t, f.notifs.inserted)
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	f := newFixture()
	order := seedOrder(t, f)

	bogus := "teleported"
	_, err := f.svc.UpdateOrderStatus(context.Background(), order.ID, &bogus, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateOrderStatusPropagatesConflict(t *testing.T) {
	f := newFixture()
	order := seedOrder(t, f)
	f.orders.mergeErr = store.ErrVersionConflict

	shipped := models.FulfillmentShipped
	_, err := f.svc.UpdateOrderStatus(context.Background(), order.ID, &shipped, nil)
	assert.ErrorIs(t, err, store.ErrVersionConflict)
}

// =============================================
// RecordPayment
// =============================================

func TestRecordPaymentAlignsOrderStatus(t *testing.T) {
	f := newFixture()
	order := seedOrder(t, f)

	payment, err := f.svc.RecordPayment(context.Background(), RecordPaymentInput{
		OrderID: order.ID,
		Amount:  1800,
		Method:  models.MethodCash,
		Status:  models.PaymentCompleted,
	})
	require.NoError(t, err)
	assert.Equal(t, order.ID, payment.OrderID)

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, stored.PaymentStatus)

	// aucun canal de notification ne se déclenche
	assert.Empty(t, f.notifs.inserted)
	assert.Empty(t, f.mailer.statuses)
}

func TestRecordPaymentUnknownOrder(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RecordPayment(context.Background(), RecordPaymentInput{
		OrderID: "absente", Amount: 10, Method: models.MethodCash, Status: models.PaymentCompleted,
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// =============================================
// ValidateCoupon
// =============================================

func TestValidateCouponReportsDiscount(t *testing.T) {
	f := newFixture()
	f.coupons.coupons["SOLDES20"] = &models.Coupon{
		Code: "SOLDES20", Type: "percentage", Value: 20, IsActive: true,
		StartsAt:  time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	items := []models.CartItem{{ProductID: "p1", Price: 1000, Quantity: 2}}
	result := f.svc.ValidateCoupon(context.Background(), "SOLDES20", items)

	require.True(t, result.IsValid)
	assert.Equal(t, float64(400), result.Discount)
	assert.Equal(t, "SOLDES20", result.Code)
}

func TestValidateCouponBelowMinimum(t *testing.T) {
	f := newFixture()
	f.coupons.coupons["GROS100"] = &models.Coupon{
		Code: "GROS100", Type: "fixed", Value: 100, MinAmount: 500, IsActive: true,
		StartsAt:  time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	items := []models.CartItem{{ProductID: "p2", Price: 400, Quantity: 1}}
	result := f.svc.ValidateCoupon(context.Background(), "GROS100", items)

	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.ErrorMessage)
}
