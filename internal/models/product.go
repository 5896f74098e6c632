package models

import "github.com/gocql/gocql"

// Product : lecture minimale du catalogue pour figer nom/prix au checkout.
// La gestion du catalogue vit ailleurs.
type Product struct {
	ID        gocql.UUID `json:"id"`
	Name      string     `json:"name"`
	Price     float64    `json:"price"`
	Stock     int        `json:"stock"`
	ImageURLs []string   `json:"image_urls,omitempty"`
}
