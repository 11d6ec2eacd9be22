package hashing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realty-service/internal/config"
)

func testHasher() *Hasher {
	cfg := &config.Config{}
	cfg.Hashing.Argon2MemoryCost = 8 * 1024
	cfg.Hashing.Argon2TimeCost = 1
	cfg.Hashing.Argon2Parallelism = 1
	return NewHasher(cfg)
}

func TestHashPasswordNeverStoresPlaintext(t *testing.T) {
	h := testHasher()

	encoded, err := h.HashPassword("Secret1@")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1@", encoded)
	assert.Contains(t, encoded, "$argon2id$")
	assert.NotContains(t, encoded, "Secret1@")
}

func TestVerifyPasswordRoundTrip(t *testing.T) {
	h := testHasher()

	encoded, err := h.HashPassword("Secret1@")
	require.NoError(t, err)

	ok, err := h.VerifyPassword("Secret1@", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.VerifyPassword("Wrong1@x", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySurvivesDifferentHasherParams(t *testing.T) {
	h := testHasher()
	encoded, err := h.HashPassword("Secret1@")
	require.NoError(t, err)

	// A hasher with different live params must still verify old hashes,
	// because the parameters travel inside the encoded string.
	cfg := &config.Config{}
	cfg.Hashing.Argon2MemoryCost = 16 * 1024
	cfg.Hashing.Argon2TimeCost = 2
	cfg.Hashing.Argon2Parallelism = 2
	other := NewHasher(cfg)

	ok, err := other.VerifyPassword("Secret1@", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	h := testHasher()

	_, err := h.VerifyPassword("whatever", "not-a-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestHashesAreSalted(t *testing.T) {
	h := testHasher()

	a, err := h.HashPassword("Secret1@")
	require.NoError(t, err)
	b, err := h.HashPassword("Secret1@")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
