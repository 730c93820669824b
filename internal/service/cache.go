package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/alchemorsel-import/backend/internal/types"
)

// ImportCache stores normalized records keyed by the exact input that produced them
type ImportCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewImportCache creates a new ImportCache instance
func NewImportCache(client *redis.Client, ttl time.Duration) *ImportCache {
	return &ImportCache{redis: client, ttl: ttl}
}

func importKey(mode types.SourceMode, input string) string {
	sum := sha256.Sum256([]byte(string(mode) + "\x00" + input))
	return "recipe:import:" + hex.EncodeToString(sum[:])
}

// Get returns the cached record, or false on a miss
func (c *ImportCache) Get(ctx context.Context, mode types.SourceMode, input string) (types.RecipeRecord, bool, error) {
	data, err := c.redis.Get(ctx, importKey(mode, input)).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.RecipeRecord{}, false, nil
	}
	if err != nil {
		return types.RecipeRecord{}, false, fmt.Errorf("failed to get import from Redis: %w", err)
	}

	var record types.RecipeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return types.RecipeRecord{}, false, fmt.Errorf("failed to unmarshal cached import: %w", err)
	}
	return record, true, nil
}

// Set saves a record for the cache TTL
func (c *ImportCache) Set(ctx context.Context, mode types.SourceMode, input string, record types.RecipeRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal import: %w", err)
	}
	if err := c.redis.Set(ctx, importKey(mode, input), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save import to Redis: %w", err)
	}
	return nil
}
