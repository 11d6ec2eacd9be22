package scylla

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"realty-service/internal/model"
	"realty-service/internal/repository"
	"realty-service/internal/util"
)

// OTPRepository stores password-reset codes. The single-live-code rule
// is enforced one layer up: the reset service deletes any prior code for
// the identity before creating a new one.
type OTPRepository struct {
	client *ScyllaClient
}

func NewOTPRepository(client *ScyllaClient) *OTPRepository {
	return &OTPRepository{client: client}
}

func (r *OTPRepository) Create(otp *model.PasswordOTP) error {
	if otp.OTPID == "" {
		otp.OTPID = uuid.New().String()
	}
	if otp.CreatedAt.IsZero() {
		otp.CreatedAt = time.Now().UTC()
	}

	query := r.client.Query(r.client.Statements.CreateOTP,
		otp.OTPID, otp.Code, string(otp.Kind), otp.IdentityID,
		otp.Email, otp.CreatedAt, otp.ExpiresAt)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to create password OTP",
			zap.String("otp_id", otp.OTPID),
			zap.String("identity_id", otp.IdentityID),
			zap.Error(err))
		return fmt.Errorf("failed to create password OTP: %w", err)
	}

	util.Info("Password OTP created",
		zap.String("otp_id", otp.OTPID),
		zap.String("kind", string(otp.Kind)),
		zap.String("identity_id", otp.IdentityID))
	return nil
}

func (r *OTPRepository) GetByCode(code string) (*model.PasswordOTP, error) {
	otp := &model.PasswordOTP{}

	query := r.client.Query(`
        SELECT otp_id, code, kind, identity_id, email, created_at, expires_at
        FROM password_otps WHERE code = ? ALLOW FILTERING`, code)

	err := r.client.ScanWithRetry(query,
		&otp.OTPID, &otp.Code, &otp.Kind, &otp.IdentityID,
		&otp.Email, &otp.CreatedAt, &otp.ExpiresAt)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get password OTP by code: %w", err)
	}

	return otp, nil
}

// DeleteByIdentity removes every code bound to the identity, leaving
// room for exactly one fresh code per reset request. It returns the
// revoked codes so the caller can evict any cache mirror.
func (r *OTPRepository) DeleteByIdentity(kind model.IdentityKind, identityID string) ([]string, error) {
	iter := r.client.Query(`
        SELECT otp_id, code FROM password_otps
        WHERE kind = ? AND identity_id = ? ALLOW FILTERING`,
		string(kind), identityID).Iter()

	var otpIDs, codes []string
	var otpID, code string
	for iter.Scan(&otpID, &code) {
		otpIDs = append(otpIDs, otpID)
		codes = append(codes, code)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to find password OTPs for identity: %w", err)
	}

	for _, id := range otpIDs {
		query := r.client.Query(r.client.Statements.DeleteOTP, id)
		if err := r.client.ExecuteWithRetry(query, 3); err != nil {
			return nil, fmt.Errorf("failed to delete password OTP %s: %w", id, err)
		}
	}

	if len(otpIDs) > 0 {
		util.Info("Stale password OTPs removed",
			zap.String("identity_id", identityID),
			zap.Int("count", len(otpIDs)))
	}
	return codes, nil
}

func (r *OTPRepository) Delete(otpID string) error {
	query := r.client.Query(r.client.Statements.DeleteOTP, otpID)
	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		return fmt.Errorf("failed to delete password OTP: %w", err)
	}
	return nil
}
