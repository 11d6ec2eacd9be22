package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"go.uber.org/zap"

	"realty-service/internal/encryption"
	"realty-service/internal/util"
)

// mobileRecord is the stored form of a mobile number: a deterministic
// hash for equality checks plus an envelope-encrypted ciphertext.
type mobileRecord struct {
	Hash   string
	Cipher string
	DEK    string
	KeyID  string
}

func encryptMobile(ctx context.Context, em *encryption.EncryptionManager, mobile string) (*mobileRecord, error) {
	sum := sha256.Sum256([]byte(mobile))
	record := &mobileRecord{Hash: hex.EncodeToString(sum[:])}

	if em == nil {
		return record, nil
	}

	encrypted, err := em.EncryptField(ctx, mobile)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt mobile number: %w", err)
	}

	record.Cipher = encrypted.EncryptedValue
	record.DEK = encrypted.EncryptedDEK
	record.KeyID = encrypted.KeyID
	return record, nil
}

// decryptMobile best-effort restores the plaintext number for API
// responses. A decryption failure is logged and yields an empty string
// rather than failing the read.
func decryptMobile(ctx context.Context, em *encryption.EncryptionManager, cipher, dek, keyID string) string {
	if em == nil || cipher == "" {
		return ""
	}

	plaintext, err := em.DecryptField(ctx, &encryption.EncryptedData{
		EncryptedValue: cipher,
		EncryptedDEK:   dek,
		KeyID:          keyID,
	})
	if err != nil {
		util.Warn("Failed to decrypt mobile number", zap.Error(err))
		return ""
	}
	return plaintext
}
