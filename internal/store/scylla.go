package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gocql/gocql"

	"lumira_back_end/internal/database"
	"lumira_back_end/internal/models"
)

// Implémentations ScyllaDB. Les structs sont sans état : toutes les
// sessions passent par le gestionnaire de keyspaces de database.

type ScyllaOrders struct{}
type ScyllaPayments struct{}
type ScyllaCoupons struct{}
type ScyllaNotifications struct{}
type ScyllaUsers struct{}
type ScyllaProducts struct{}

// =============================================
// ORDERS
// =============================================

const orderColumns = `order_id, user_id, items, shipping_address, payment_method,
	subtotal, shipping, discount, coupon_code, total, status, payment_status,
	payment_id, created_at, updated_at`

func (ScyllaOrders) Insert(ctx context.Context, order *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	orderUUID, err := gocql.ParseUUID(order.ID)
	if err != nil {
		return fmt.Errorf("id commande invalide: %v", err)
	}

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}
	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return err
	}

	insert := `INSERT INTO orders (` + orderColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if err := session.Query(insert,
		orderUUID, order.UserID, string(itemsJSON), string(addressJSON), order.PaymentMethod,
		order.Subtotal, order.Shipping, order.Discount, order.CouponCode, order.Total,
		order.FulfillmentStatus, order.PaymentStatus, order.PaymentID,
		order.CreatedAt, order.UpdatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return err
	}

	// Index par utilisateur pour la page "mes commandes"
	if err := session.Query(
		`INSERT INTO orders_by_user (user_id, created_at, order_id) VALUES (?, ?, ?)`,
		order.UserID, order.CreatedAt, orderUUID,
	).WithContext(ctx).Exec(); err != nil {
		log.Printf("⚠️ Erreur index orders_by_user pour %s: %v", order.ID, err)
	}

	// Index d'idempotence par paiement passerelle
	if order.PaymentID != "" {
		if err := session.Query(
			`INSERT INTO orders_by_gateway (gateway_payment_id, order_id) VALUES (?, ?)`,
			order.PaymentID, orderUUID,
		).WithContext(ctx).Exec(); err != nil {
			log.Printf("⚠️ Erreur index orders_by_gateway pour %s: %v", order.ID, err)
		}
	}

	return nil
}

func (ScyllaOrders) GetByID(ctx context.Context, id string) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	orderUUID, err := gocql.ParseUUID(id)
	if err != nil {
		return nil, ErrNotFound
	}

	return scanOrder(session.Query(
		`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`, orderUUID,
	).WithContext(ctx))
}

func (s ScyllaOrders) GetByGatewayPayment(ctx context.Context, gatewayPaymentID string) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var orderUUID gocql.UUID
	err = session.Query(
		`SELECT order_id FROM orders_by_gateway WHERE gateway_payment_id = ?`, gatewayPaymentID,
	).WithContext(ctx).Scan(&orderUUID)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, orderUUID.String())
}

func (s ScyllaOrders) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(
		`SELECT order_id FROM orders_by_user WHERE user_id = ?`, userID,
	).WithContext(ctx).Iter()

	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(ids))
	for _, oid := range ids {
		order, err := s.GetByID(ctx, oid.String())
		if err != nil {
			log.Printf("⚠️ Commande %s indexée mais illisible: %v", oid, err)
			continue
		}
		orders = append(orders, *order)
	}
	return orders, nil
}

func (ScyllaOrders) ListAll(ctx context.Context) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT ` + orderColumns + ` FROM orders`).WithContext(ctx).Iter()

	var orders []models.Order
	for {
		order, ok := scanOrderIter(iter)
		if !ok {
			break
		}
		orders = append(orders, *order)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return orders, nil
}

// Merge : écriture champ par champ avec LWT sur updated_at. Deux admins
// concurrents ne peuvent plus s'écraser mutuellement un statut.
func (s ScyllaOrders) Merge(ctx context.Context, id string, upd StatusUpdate) (*models.Order, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}
	orderUUID, _ := gocql.ParseUUID(id)

	sets := "updated_at = ?"
	now := time.Now()
	values := []interface{}{now}

	if upd.FulfillmentStatus != nil {
		sets += ", status = ?"
		values = append(values, *upd.FulfillmentStatus)
	}
	if upd.PaymentStatus != nil {
		sets += ", payment_status = ?"
		values = append(values, *upd.PaymentStatus)
	}

	values = append(values, orderUUID, current.UpdatedAt)
	query := fmt.Sprintf("UPDATE orders SET %s WHERE order_id = ? IF updated_at = ?", sets)

	applied, err := session.Query(query, values...).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrVersionConflict
	}

	if upd.FulfillmentStatus != nil {
		current.FulfillmentStatus = *upd.FulfillmentStatus
	}
	if upd.PaymentStatus != nil {
		current.PaymentStatus = *upd.PaymentStatus
	}
	current.UpdatedAt = now
	return current, nil
}

func scanOrder(q *gocql.Query) (*models.Order, error) {
	var (
		order       models.Order
		orderUUID   gocql.UUID
		itemsJSON   string
		addressJSON string
	)
	err := q.Scan(&orderUUID, &order.UserID, &itemsJSON, &addressJSON, &order.PaymentMethod,
		&order.Subtotal, &order.Shipping, &order.Discount, &order.CouponCode, &order.Total,
		&order.FulfillmentStatus, &order.PaymentStatus, &order.PaymentID,
		&order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	order.ID = orderUUID.String()
	if err := json.Unmarshal([]byte(itemsJSON), &order.Items); err != nil {
		return nil, fmt.Errorf("lignes de commande corrompues: %v", err)
	}
	if err := json.Unmarshal([]byte(addressJSON), &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("adresse de livraison corrompue: %v", err)
	}
	return &order, nil
}

func scanOrderIter(iter *gocql.Iter) (*models.Order, bool) {
	var (
		order       models.Order
		orderUUID   gocql.UUID
		itemsJSON   string
		addressJSON string
	)
	if !iter.Scan(&orderUUID, &order.UserID, &itemsJSON, &addressJSON, &order.PaymentMethod,
		&order.Subtotal, &order.Shipping, &order.Discount, &order.CouponCode, &order.Total,
		&order.FulfillmentStatus, &order.PaymentStatus, &order.PaymentID,
		&order.CreatedAt, &order.UpdatedAt) {
		return nil, false
	}

	order.ID = orderUUID.String()
	_ = json.Unmarshal([]byte(itemsJSON), &order.Items)
	_ = json.Unmarshal([]byte(addressJSON), &order.ShippingAddress)
	return &order, true
}

// =============================================
// PAYMENTS
// =============================================

func (ScyllaPayments) Insert(ctx context.Context, payment *models.Payment) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	paymentUUID, err := gocql.ParseUUID(payment.ID)
	if err != nil {
		return fmt.Errorf("id paiement invalide: %v", err)
	}
	orderUUID, err := gocql.ParseUUID(payment.OrderID)
	if err != nil {
		return fmt.Errorf("id commande invalide: %v", err)
	}

	if err := session.Query(
		`INSERT INTO payments (payment_id, order_id, amount, method, gateway_payment_id, gateway_signature, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		paymentUUID, orderUUID, payment.Amount, payment.Method,
		payment.GatewayPaymentID, payment.GatewaySignature, payment.Status, payment.CreatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return err
	}

	if err := session.Query(
		`INSERT INTO payments_by_order (order_id, created_at, payment_id, amount, method, gateway_payment_id, gateway_signature, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		orderUUID, payment.CreatedAt, paymentUUID, payment.Amount, payment.Method,
		payment.GatewayPaymentID, payment.GatewaySignature, payment.Status,
	).WithContext(ctx).Exec(); err != nil {
		log.Printf("⚠️ Erreur index payments_by_order pour %s: %v", payment.ID, err)
	}

	return nil
}

func (ScyllaPayments) ListByOrder(ctx context.Context, orderID string) ([]models.Payment, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	orderUUID, err := gocql.ParseUUID(orderID)
	if err != nil {
		return nil, ErrNotFound
	}

	iter := session.Query(
		`SELECT payment_id, created_at, amount, method, gateway_payment_id, gateway_signature, status
		 FROM payments_by_order WHERE order_id = ?`, orderUUID,
	).WithContext(ctx).Iter()

	var payments []models.Payment
	var (
		paymentUUID gocql.UUID
		p           models.Payment
	)
	for iter.Scan(&paymentUUID, &p.CreatedAt, &p.Amount, &p.Method, &p.GatewayPaymentID, &p.GatewaySignature, &p.Status) {
		p.ID = paymentUUID.String()
		p.OrderID = orderID
		payments = append(payments, p)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return payments, nil
}

// =============================================
// COUPONS
// =============================================

func (ScyllaCoupons) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var coupon models.Coupon
	err = session.Query(
		`SELECT id, code, type, value, min_amount, max_amount, max_uses, used_count,
		 expires_at, starts_at, is_active FROM coupons WHERE code = ? LIMIT 1`,
		code,
	).WithContext(ctx).Scan(
		&coupon.ID, &coupon.Code, &coupon.Type, &coupon.Value, &coupon.MinAmount,
		&coupon.MaxAmount, &coupon.MaxUses, &coupon.UsedCount,
		&coupon.ExpiresAt, &coupon.StartsAt, &coupon.IsActive,
	)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// IncrementUsage relit puis réécrit used_count. Pas de compteur atomique :
// une course entre deux commandes simultanées perd au pire une unité,
// acceptable pour un plafond indicatif.
func (c ScyllaCoupons) IncrementUsage(ctx context.Context, code string) error {
	coupon, err := c.GetByCode(ctx, code)
	if err != nil {
		return err
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	return session.Query(
		`UPDATE coupons SET used_count = ?, updated_at = ? WHERE code = ?`,
		coupon.UsedCount+1, time.Now(), code,
	).WithContext(ctx).Exec()
}

// =============================================
// NOTIFICATIONS
// =============================================

func (ScyllaNotifications) Insert(ctx context.Context, notif *models.Notification) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}

	if err := session.Query(
		`INSERT INTO notifications (user_id, id, type, title, message, data, read, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		notif.UserID, notif.ID, notif.Type, notif.Title, notif.Message,
		notif.Data, notif.Read, notif.CreatedAt,
	).WithContext(ctx).Exec(); err != nil {
		return err
	}

	// Push temps réel best-effort vers le websocket du destinataire
	if payload, err := json.Marshal(notif); err == nil {
		if err := database.Redis.Publish(ctx, "notif:"+notif.UserID, payload).Err(); err != nil {
			log.Printf("⚠️ Erreur publish notification temps réel: %v", err)
		}
	}

	return nil
}

func (ScyllaNotifications) ListByUser(ctx context.Context, userID string) ([]models.Notification, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(
		`SELECT id, type, title, message, data, read, created_at
		 FROM notifications WHERE user_id = ?`, userID,
	).WithContext(ctx).Iter()

	var notifs []models.Notification
	var n models.Notification
	for iter.Scan(&n.ID, &n.Type, &n.Title, &n.Message, &n.Data, &n.Read, &n.CreatedAt) {
		n.UserID = userID
		notifs = append(notifs, n)
		n = models.Notification{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return notifs, nil
}

func (ScyllaNotifications) MarkRead(ctx context.Context, userID string, id gocql.UUID) error {
	session, err := database.GetUsersSession()
	if err != nil {
		return err
	}

	applied, err := session.Query(
		`UPDATE notifications SET read = true WHERE user_id = ? AND id = ? IF EXISTS`,
		userID, id,
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return ErrNotFound
	}
	return nil
}

// =============================================
// USERS (lecture seule — la gestion des comptes vit ailleurs)
// =============================================

func (ScyllaUsers) GetEmail(ctx context.Context, userID string) (string, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return "", err
	}

	var email string
	err = session.Query(`SELECT email FROM users WHERE user_id = ?`, userID).
		WithContext(ctx).Scan(&email)
	if errors.Is(err, gocql.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return email, nil
}

func (ScyllaUsers) ListAdmins(ctx context.Context) ([]models.User, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(
		`SELECT user_id, name, email, role FROM users WHERE role = 'admin' ALLOW FILTERING`,
	).WithContext(ctx).Iter()

	var admins []models.User
	var u models.User
	for iter.Scan(&u.ID, &u.Name, &u.Email, &u.Role) {
		admins = append(admins, u)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return admins, nil
}

// =============================================
// PRODUCTS (lecture prix/stock pour le snapshot au checkout)
// =============================================

func (ScyllaProducts) Get(ctx context.Context, productID string) (*models.Product, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	productUUID, err := gocql.ParseUUID(productID)
	if err != nil {
		return nil, ErrNotFound
	}

	var product models.Product
	product.ID = productUUID
	err = session.Query(
		`SELECT name, price, stock, image_urls FROM products WHERE product_id = ?`, productUUID,
	).WithContext(ctx).Scan(&product.Name, &product.Price, &product.Stock, &product.ImageURLs)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
