package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"realty-service/internal/audit"
	"realty-service/internal/events"
	"realty-service/internal/hashing"
	"realty-service/internal/model"
	"realty-service/internal/notify"
	"realty-service/internal/repository"
	rediscache "realty-service/internal/repository/redis"
	"realty-service/internal/util"
	"realty-service/internal/validation"
)

// Clock lets tests pin the current time.
type Clock func() time.Time

// OTPCodeCache mirrors live reset codes keyed by code. nil disables the
// mirror; lookups then always hit the store. Superseded codes are
// evicted on issue, so a cache hit is trusted as-is.
type OTPCodeCache interface {
	SetOTP(otp *model.PasswordOTP) error
	GetOTP(code string) (*model.PasswordOTP, error)
	DeleteOTP(code string) error
}

// PasswordResetService drives the OTP reset flow: request issues a
// fresh single live code, verify checks it against the stored expiry,
// reset overwrites the password in every identity table the email
// matches. The stored ExpiresAt is the sole authority on expiry; a
// verify at exactly the boundary is already expired.
type PasswordResetService struct {
	resolver *IdentityResolver
	otps     repository.OTPRepository
	otpCache OTPCodeCache
	admins   repository.AdminRepository
	users    repository.UserRepository
	agents   repository.AgentRepository
	hasher   *hashing.Hasher
	notifier notify.Notifier
	audit    *audit.Recorder
	events   *events.Publisher
	window   time.Duration
	now      Clock
}

func NewPasswordResetService(
	resolver *IdentityResolver,
	otps repository.OTPRepository,
	otpCache OTPCodeCache,
	admins repository.AdminRepository,
	users repository.UserRepository,
	agents repository.AgentRepository,
	hasher *hashing.Hasher,
	notifier notify.Notifier,
	auditor *audit.Recorder,
	publisher *events.Publisher,
	window time.Duration,
) *PasswordResetService {
	return &PasswordResetService{
		resolver: resolver,
		otps:     otps,
		otpCache: otpCache,
		admins:   admins,
		users:    users,
		agents:   agents,
		hasher:   hasher,
		notifier: notifier,
		audit:    auditor,
		events:   publisher,
		window:   window,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Test hook.
func (s *PasswordResetService) WithClock(clock Clock) *PasswordResetService {
	s.now = clock
	return s
}

// RequestReset resolves the email to an identity, invalidates any prior
// live code for it, and issues a fresh one.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	if err := validation.Email(email); err != nil {
		return err
	}

	ref, err := s.resolver.Resolve(email)
	if err != nil {
		return err
	}

	// Single live code per identity: drop whatever is outstanding,
	// including its cache mirror, so a revoked code cannot verify
	// from the cache.
	revoked, err := s.otps.DeleteByIdentity(ref.Kind, ref.ID)
	if err != nil {
		return err
	}
	if s.otpCache != nil {
		for _, stale := range revoked {
			if err := s.otpCache.DeleteOTP(stale); err != nil {
				util.Warn("Failed to evict revoked OTP from cache", zap.Error(err))
			}
		}
	}

	code, err := generateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate OTP code: %w", err)
	}

	issuedAt := s.now()
	otp := &model.PasswordOTP{
		Code:       code,
		Kind:       ref.Kind,
		IdentityID: ref.ID,
		Email:      ref.Email,
		CreatedAt:  issuedAt,
		ExpiresAt:  issuedAt.Add(s.window),
	}

	if err := s.otps.Create(otp); err != nil {
		return err
	}

	if s.otpCache != nil {
		if cacheErr := s.otpCache.SetOTP(otp); cacheErr != nil {
			util.Warn("Failed to mirror OTP in cache", zap.Error(cacheErr))
		}
	}

	if s.notifier != nil {
		if sendErr := s.notifier.SendPasswordResetOTP(ref.Email, code); sendErr != nil {
			util.Error("Failed to send reset OTP email",
				zap.String("identity_id", ref.ID),
				zap.Error(sendErr))
			return fmt.Errorf("failed to send reset OTP: %w", sendErr)
		}
	}

	s.audit.Record(ctx, "otp.issued", string(ref.Kind), ref.ID, ref.ID, "ok", "")
	util.Info("Password reset OTP issued",
		zap.String("kind", string(ref.Kind)),
		zap.String("identity_id", ref.ID))
	return nil
}

// VerifyOTP checks a submitted code for the given email. An expired
// code is deleted on sight.
func (s *PasswordResetService) VerifyOTP(ctx context.Context, email, code string) error {
	otp, err := s.lookupOTP(code)
	if err != nil {
		return err
	}

	if otp.Email != email {
		return ErrOTPInvalid
	}

	if !s.now().Before(otp.ExpiresAt) {
		s.discardOTP(otp)
		s.audit.Record(ctx, "otp.expired", string(otp.Kind), otp.IdentityID, otp.IdentityID, "expired", "")
		return ErrOTPExpired
	}

	s.audit.Record(ctx, "otp.verified", string(otp.Kind), otp.IdentityID, otp.IdentityID, "ok", "")
	return nil
}

// ResetPassword re-verifies the code, then overwrites the password hash
// in every identity table matching the email. The OTP record survives
// the reset; only expiry retires it.
func (s *PasswordResetService) ResetPassword(ctx context.Context, email, code, password, confirmPassword string) error {
	if password == "" {
		return &validation.FieldError{Field: "password", Reason: "must not be empty"}
	}
	if password != confirmPassword {
		return ErrPasswordMismatch
	}
	if err := validation.Password(password); err != nil {
		return err
	}

	if err := s.VerifyOTP(ctx, email, code); err != nil {
		return err
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	updated := 0
	if admin, err := s.admins.GetByEmail(email); err == nil {
		if err := s.admins.UpdatePassword(admin.AdminID, hash); err != nil {
			return err
		}
		updated++
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if user, err := s.users.GetByEmail(email); err == nil {
		if err := s.users.UpdatePassword(user.UserID, hash); err != nil {
			return err
		}
		updated++
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if agent, err := s.agents.GetByEmail(email); err == nil {
		if err := s.agents.UpdatePassword(agent.AgentID, hash); err != nil {
			return err
		}
		updated++
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if updated == 0 {
		return ErrNotFound
	}

	s.audit.Record(ctx, "password.reset", "identity", email, email, "ok",
		fmt.Sprintf("tables_updated=%d", updated))
	s.events.Publish(ctx, events.EventPasswordReset, email, "")
	util.Info("Password reset completed", zap.Int("tables_updated", updated))
	return nil
}

func (s *PasswordResetService) lookupOTP(code string) (*model.PasswordOTP, error) {
	// Revoked codes are evicted from the cache on issue, so a hit
	// is served directly; only a miss falls through to the store.
	if s.otpCache != nil {
		otp, err := s.otpCache.GetOTP(code)
		if err == nil {
			return otp, nil
		}
		if !errors.Is(err, rediscache.ErrCacheMiss) {
			util.Debug("OTP cache lookup failed", zap.Error(err))
		}
	}

	otp, err := s.otps.GetByCode(code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOTPInvalid
		}
		return nil, err
	}
	return otp, nil
}

func (s *PasswordResetService) discardOTP(otp *model.PasswordOTP) {
	if err := s.otps.Delete(otp.OTPID); err != nil {
		util.Warn("Failed to delete expired OTP",
			zap.String("otp_id", otp.OTPID),
			zap.Error(err))
	}
	if s.otpCache != nil {
		if err := s.otpCache.DeleteOTP(otp.Code); err != nil {
			util.Debug("Failed to evict expired OTP from cache", zap.Error(err))
		}
	}
}

// generateOTPCode draws a uniform 6-digit zero-padded code.
func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
