package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func Load() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé — on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
}

// Getenv retourne la variable d'environnement ou la valeur par défaut
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetenvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("⚠️ Valeur invalide pour %s (%q), valeur par défaut utilisée", key, v)
		return fallback
	}
	return f
}

// --- Constantes du domaine (surchargeables via .env) ---

// FreeShippingThreshold : sous-total au-delà duquel la livraison est offerte
func FreeShippingThreshold() float64 {
	return GetenvFloat("FREE_SHIPPING_THRESHOLD", 1000)
}

// ShippingFee : frais de livraison forfaitaires
func ShippingFee() float64 {
	return GetenvFloat("SHIPPING_FEE", 49)
}

// DepositRate : part du total encaissée en acompte (solde à la livraison)
func DepositRate() float64 {
	return GetenvFloat("DEPOSIT_RATE", 0.10)
}

// OpsEmail : adresse opérations qui reçoit le récapitulatif de chaque commande
func OpsEmail() string {
	return Getenv("OPS_EMAIL", "commandes@lumira-atelier.com")
}

// Currency : devise des paiements passerelle
func Currency() string {
	return Getenv("CURRENCY", "EUR")
}
