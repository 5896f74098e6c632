package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"lumira_back_end/internal/models"
)

// RedisCarts : panier stocké en blob JSON sous "cart:<userID>",
// alimenté par les opérations panier (hors périmètre) et lu ici
// au moment du checkout.
type RedisCarts struct {
	Client *redis.Client
}

func cartKey(userID string) string {
	return "cart:" + userID
}

func (c RedisCarts) Get(ctx context.Context, userID string) ([]models.CartItem, error) {
	data, err := c.Client.Get(ctx, cartKey(userID)).Result()
	if err == redis.Nil || data == "" {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("erreur décodage panier: %v", err)
	}
	return items, nil
}

// Clear supprime la clé panier. DEL sur une clé absente est un no-op,
// l'opération est donc naturellement idempotente.
func (c RedisCarts) Clear(ctx context.Context, userID string) error {
	if err := c.Client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return err
	}

	// Synchronisation temps réel des onglets ouverts
	if err := c.Client.Publish(ctx, cartKey(userID), "cleared").Err(); err != nil {
		log.Printf("⚠️ Erreur publish panier vidé pour %s: %v", userID, err)
	}
	return nil
}
