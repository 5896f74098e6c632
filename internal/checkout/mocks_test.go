package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/gocql/gocql"

	"lumira_back_end/internal/gateway"
	"lumira_back_end/internal/models"
	"lumira_back_end/internal/store"
)

// Doubles en mémoire pour les stores et la passerelle. Chaque double
// enregistre les appels reçus et peut être forcé en erreur.

type fakeProducts struct {
	products map[string]*models.Product
}

func (f *fakeProducts) Get(_ context.Context, id string) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

type fakeCarts struct {
	mu         sync.Mutex
	items      map[string][]models.CartItem
	clearCalls []string
	clearErr   error
}

func (f *fakeCarts) Get(_ context.Context, userID string) ([]models.CartItem, error) {
	return f.items[userID], nil
}

func (f *fakeCarts) Clear(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls = append(f.clearCalls, userID)
	if f.clearErr != nil {
		return f.clearErr
	}
	delete(f.items, userID)
	return nil
}

type fakeCoupons struct {
	coupons    map[string]*models.Coupon
	usageCalls []string
}

func (f *fakeCoupons) GetByCode(_ context.Context, code string) (*models.Coupon, error) {
	c, ok := f.coupons[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeCoupons) IncrementUsage(_ context.Context, code string) error {
	f.usageCalls = append(f.usageCalls, code)
	return nil
}

type fakeOrders struct {
	mu        sync.Mutex
	byID      map[string]*models.Order
	byPayment map[string]*models.Order
	insertErr error
	mergeErr  error
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		byID:      map[string]*models.Order{},
		byPayment: map[string]*models.Order{},
	}
}

func (f *fakeOrders) Insert(_ context.Context, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	cp := *order
	f.byID[order.ID] = &cp
	if order.PaymentID != "" {
		f.byPayment[order.PaymentID] = &cp
	}
	return nil
}

func (f *fakeOrders) GetByID(_ context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) GetByGatewayPayment(_ context.Context, paymentID string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byPayment[paymentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) ListByUser(_ context.Context, userID string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrders) ListAll(_ context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.byID {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrders) Merge(_ context.Context, id string, upd store.StatusUpdate) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mergeErr != nil {
		return nil, f.mergeErr
	}
	o, ok := f.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.FulfillmentStatus != nil {
		o.FulfillmentStatus = *upd.FulfillmentStatus
	}
	if upd.PaymentStatus != nil {
		o.PaymentStatus = *upd.PaymentStatus
	}
	cp := *o
	return &cp, nil
}

type fakePayments struct {
	mu        sync.Mutex
	inserted  []models.Payment
	insertErr error
}

func (f *fakePayments) Insert(_ context.Context, p *models.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, *p)
	return nil
}

func (f *fakePayments) ListByOrder(_ context.Context, orderID string) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.inserted {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeNotifs struct {
	mu        sync.Mutex
	inserted  []models.Notification
	insertErr map[string]error // par user_id
}

func (f *fakeNotifs) Insert(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.insertErr[n.UserID]; err != nil {
		return err
	}
	f.inserted = append(f.inserted, *n)
	return nil
}

func (f *fakeNotifs) ListByUser(_ context.Context, userID string) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.inserted {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifs) MarkRead(_ context.Context, _ string, _ gocql.UUID) error { return nil }

type fakeUsers struct {
	emails map[string]string
	admins []models.User
}

func (f *fakeUsers) GetEmail(_ context.Context, userID string) (string, error) {
	email, ok := f.emails[userID]
	if !ok {
		return "", store.ErrNotFound
	}
	return email, nil
}

func (f *fakeUsers) ListAdmins(_ context.Context) ([]models.User, error) {
	return f.admins, nil
}

type fakeGateway struct {
	orders []gateway.Order
	fail   bool
}

func (f *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, _ string, _ map[string]interface{}) (*gateway.Order, error) {
	if f.fail {
		return nil, errors.New("gateway: connection refused")
	}
	o := gateway.Order{ID: "order_gw_test", Amount: amount, Currency: currency}
	f.orders = append(f.orders, o)
	return &o, nil
}

func (f *fakeGateway) PublicKey() string { return "rzp_test_key" }

type fakeMailer struct {
	confirmations []string // emails destinataires
	statuses      []string // "email:statut"
	confirmErr    error
}

func (f *fakeMailer) SendOrderConfirmation(_ *models.Order, customerEmail string) error {
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.confirmations = append(f.confirmations, customerEmail)
	return nil
}

func (f *fakeMailer) SendOrderStatus(_ *models.Order, customerEmail, newStatus string) error {
	f.statuses = append(f.statuses, customerEmail+":"+newStatus)
	return nil
}
