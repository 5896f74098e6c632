package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Types de notification
const (
	NotifOrderPlaced = "order_placed"
	NotifNewOrder    = "new_order"
	NotifOrderStatus = "order_status"
)

type Notification struct {
	ID        gocql.UUID        `json:"id"`
	UserID    string            `json:"user_id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Data      map[string]string `json:"data,omitempty"`
	Read      bool              `json:"read"`
	CreatedAt time.Time         `json:"timestamp"`
}
