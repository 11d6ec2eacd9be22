package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"realty-service/internal/client"
	"realty-service/internal/model"
	"realty-service/internal/util"
)

const identityKindPrefix = "identity_kind:"

// LookupCache remembers which identity table an email resolved to, so
// repeat resolutions skip the Admin/User/Agent probe sequence. Entries
// are advisory: a hit is re-verified against the store before use.
type LookupCache struct {
	client *client.RedisClient
	ttl    time.Duration
}

func NewLookupCache(client *client.RedisClient) *LookupCache {
	return &LookupCache{
		client: client,
		ttl:    15 * time.Minute,
	}
}

func (c *LookupCache) SetIdentityKind(email string, kind model.IdentityKind) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := identityKindPrefix + email
	if err := c.client.Set(ctx, key, string(kind), c.ttl); err != nil {
		util.Error("Failed to cache identity kind",
			zap.String("kind", string(kind)),
			zap.Error(err))
		return fmt.Errorf("failed to cache identity kind: %w", err)
	}
	return nil
}

func (c *LookupCache) GetIdentityKind(email string) (model.IdentityKind, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := identityKindPrefix + email

	value, err := c.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get identity kind from cache: %w", err)
	}

	return model.IdentityKind(value), nil
}

func (c *LookupCache) DeleteIdentityKind(email string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.client.Del(ctx, identityKindPrefix+email); err != nil {
		return fmt.Errorf("failed to delete identity kind from cache: %w", err)
	}
	return nil
}
