package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"realty-service/internal/client"
	"realty-service/internal/model"
	"realty-service/internal/util"
)

const resetOTPPrefix = "reset_otp:"

// ErrCacheMiss reports that the cache has no entry; the caller falls
// back to the authoritative store.
var ErrCacheMiss = errors.New("cache miss")

// OTPCache mirrors live password-reset codes keyed by code, with TTL
// matched to the stored expiry. Scylla remains the source of truth; the
// cache only short-circuits the hot lookup.
type OTPCache struct {
	client *client.RedisClient
}

func NewOTPCache(client *client.RedisClient) *OTPCache {
	return &OTPCache{client: client}
}

func (c *OTPCache) SetOTP(otp *model.PasswordOTP) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ttl := time.Until(otp.ExpiresAt)
	if ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(otp)
	if err != nil {
		return fmt.Errorf("failed to marshal OTP for cache: %w", err)
	}

	key := resetOTPPrefix + otp.Code
	if err := c.client.Set(ctx, key, payload, ttl); err != nil {
		util.Error("Failed to cache reset OTP",
			zap.String("otp_id", otp.OTPID),
			zap.Error(err))
		return fmt.Errorf("failed to cache reset OTP: %w", err)
	}

	util.Debug("Reset OTP cached",
		zap.String("otp_id", otp.OTPID),
		zap.Duration("ttl", ttl))
	return nil
}

func (c *OTPCache) GetOTP(code string) (*model.PasswordOTP, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	key := resetOTPPrefix + code

	payload, err := c.client.Get(ctx, key)
	if err != nil {
		if errors.Is(err, client.ErrKeyNotFound) {
			return nil, ErrCacheMiss
		}
		util.Error("Failed to get reset OTP from cache", zap.Error(err))
		return nil, fmt.Errorf("failed to get reset OTP from cache: %w", err)
	}

	otp := &model.PasswordOTP{}
	if err := json.Unmarshal([]byte(payload), otp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached OTP: %w", err)
	}
	// The code is never serialized; it is the cache key.
	otp.Code = code

	return otp, nil
}

func (c *OTPCache) DeleteOTP(code string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.client.Del(ctx, resetOTPPrefix+code); err != nil {
		util.Error("Failed to delete reset OTP from cache", zap.Error(err))
		return fmt.Errorf("failed to delete reset OTP from cache: %w", err)
	}
	return nil
}
