// Package pricing calcule le montant final d'un panier : sous-total,
// livraison, réduction coupon et total. Aucune E/S, aucun état — les
// mêmes entrées donnent toujours la même sortie.
package pricing

import (
	"math"

	"lumira_back_end/internal/models"
)

// Marge de référence supposée vs prix boutique classique, utilisée
// uniquement pour le bloc "économies" affiché au client.
const baselineMarkupRate = 0.20

type Quote struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
	Savings  Savings `json:"savings"`
}

// Savings : détail des économies, purement informatif. Ne rentre
// jamais dans le calcul du total.
type Savings struct {
	BaselineMarkup float64 `json:"baseline_markup"`
	ShippingWaived float64 `json:"shipping_waived"`
	Coupon         float64 `json:"coupon"`
	Total          float64 `json:"total"`
}

// Subtotal calcule le montant total des lignes du panier
func Subtotal(items []models.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Compute établit le devis complet d'un panier. Le coupon est supposé
// déjà validé (actif, dans sa fenêtre de validité) ; seules les règles
// de montant sont appliquées ici.
//
// Règle retenue pour les coupons "fixed" : la réduction est plafonnée à
// subtotal + shipping, jamais au seul subtotal.
func Compute(items []models.CartItem, coupon *models.Coupon, freeThreshold, shippingFee float64) Quote {
	subtotal := Subtotal(items)

	shipping := shippingFee
	if subtotal > freeThreshold {
		shipping = 0
	}

	var discount float64
	if coupon != nil && subtotal >= coupon.MinAmount {
		switch coupon.Type {
		case models.CouponPercentage:
			discount = subtotal * coupon.Value / 100
			if coupon.MaxAmount != nil && discount > *coupon.MaxAmount {
				discount = *coupon.MaxAmount
			}
		case models.CouponFixed:
			discount = coupon.Value
			if discount > subtotal+shipping {
				discount = subtotal + shipping
			}
		}
	}
	if discount < 0 {
		discount = 0
	}

	total := subtotal + shipping - discount
	if total < 0 {
		total = 0
	}

	shippingWaived := 0.0
	if shipping == 0 && subtotal > 0 {
		shippingWaived = shippingFee
	}

	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Total:    total,
		Savings: Savings{
			BaselineMarkup: subtotal * baselineMarkupRate,
			ShippingWaived: shippingWaived,
			Coupon:         discount,
			Total:          subtotal*baselineMarkupRate + shippingWaived + discount,
		},
	}
}

// Advance : montant de l'acompte encaissé en ligne pour une commande
// "deposit", arrondi à l'unité (demi au-dessus : 200,50 → 201).
func Advance(total, rate float64) float64 {
	return math.Round(total * rate)
}
