package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"realty-service/internal/audit"
	"realty-service/internal/encryption"
	"realty-service/internal/events"
	"realty-service/internal/hashing"
	"realty-service/internal/model"
	"realty-service/internal/notify"
	"realty-service/internal/repository"
	"realty-service/internal/util"
	"realty-service/internal/validation"
)

// UserRegistration is the write payload for user self-registration.
type UserRegistration struct {
	Username        string
	Fullname        string
	Email           string
	Password        string
	ConfirmPassword string
	MobileNo        string
	Address         string
	Gender          string
	ProfilePicture  []byte
	ImageFilename   string
}

// UserService owns user self-registration (temporary row with embedded
// OTP, promoted on verification) and the live user profile operations.
type UserService struct {
	users    repository.UserRepository
	em       *encryption.EncryptionManager
	hasher   *hashing.Hasher
	notifier notify.Notifier
	audit    *audit.Recorder
	events   *events.Publisher
	window   time.Duration
	now      Clock
}

func NewUserService(
	users repository.UserRepository,
	em *encryption.EncryptionManager,
	hasher *hashing.Hasher,
	notifier notify.Notifier,
	auditor *audit.Recorder,
	publisher *events.Publisher,
	otpWindow time.Duration,
) *UserService {
	return &UserService{
		users:    users,
		em:       em,
		hasher:   hasher,
		notifier: notifier,
		audit:    auditor,
		events:   publisher,
		window:   otpWindow,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source. Test hook.
func (s *UserService) WithClock(clock Clock) *UserService {
	s.now = clock
	return s
}

func (s *UserService) RegisterTemporary(ctx context.Context, reg *UserRegistration) (*model.TemporaryUser, error) {
	if err := s.validateRegistration(reg); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(reg.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", ErrAlreadyExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByUsername(reg.Username); err == nil {
		return nil, fmt.Errorf("username already registered: %w", ErrAlreadyExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	mobile, err := encryptMobile(ctx, s.em, reg.MobileNo)
	if err != nil {
		return nil, err
	}

	code, err := generateOTPCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}

	user := &model.TemporaryUser{
		Username:       reg.Username,
		Fullname:       reg.Fullname,
		Email:          reg.Email,
		Password:       hash,
		MobileNo:       reg.MobileNo,
		MobileHash:     mobile.Hash,
		MobileCipher:   mobile.Cipher,
		MobileDEK:      mobile.DEK,
		MobileKeyID:    mobile.KeyID,
		Address:        reg.Address,
		Gender:         reg.Gender,
		Status:         model.StatusPending,
		ProfilePicture: reg.ProfilePicture,
		OTP:            code,
		OTPExpiry:      s.now().Add(s.window),
	}

	if err := s.users.CreateTemporary(user); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.SendRegistrationOTP(user.Email, code); err != nil {
			util.Error("Failed to send registration OTP email",
				zap.String("temp_user_id", user.TempUserID),
				zap.Error(err))
			return nil, fmt.Errorf("failed to send registration OTP: %w", err)
		}
	}

	s.audit.Record(ctx, "user.registered", "temporary_user", user.TempUserID, user.TempUserID, "ok", "")
	s.events.Publish(ctx, events.EventUserRegistered, user.TempUserID, "")
	return user, nil
}

// VerifyOTP promotes the temporary registration matching the code into
// the live users table and consumes the temporary row.
func (s *UserService) VerifyOTP(ctx context.Context, code string) (*model.User, error) {
	temp, err := s.users.GetTemporaryByOTP(code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOTPInvalid
		}
		return nil, err
	}

	if !s.now().Before(temp.OTPExpiry) {
		return nil, ErrOTPExpired
	}

	user := &model.User{
		Username:       temp.Username,
		Fullname:       temp.Fullname,
		Email:          temp.Email,
		Password:       temp.Password,
		MobileNo:       temp.MobileNo,
		MobileHash:     temp.MobileHash,
		MobileCipher:   temp.MobileCipher,
		MobileDEK:      temp.MobileDEK,
		MobileKeyID:    temp.MobileKeyID,
		Address:        temp.Address,
		Gender:         temp.Gender,
		Role:           model.RoleUser,
		Status:         model.StatusActive,
		ProfilePicture: temp.ProfilePicture,
		Verified:       true,
		CreatedAt:      temp.CreatedAt,
	}

	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	if err := s.users.DeleteTemporary(temp.TempUserID); err != nil {
		util.Error("Failed to delete temporary user after promotion",
			zap.String("temp_user_id", temp.TempUserID),
			zap.Error(err))
	}

	s.audit.Record(ctx, "user.verified", "user", user.UserID, user.UserID, "ok", "")
	s.events.Publish(ctx, events.EventUserVerified, user.UserID, "")

	util.Info("User verified and promoted", zap.String("user_id", user.UserID))
	return user, nil
}

func (s *UserService) Login(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.VerifyPassword(password, user.Password)
	if err != nil || !ok {
		s.audit.Record(ctx, "user.login", "user", user.UserID, user.UserID, "denied", "")
		return nil, ErrInvalidCredentials
	}

	s.audit.Record(ctx, "user.login", "user", user.UserID, user.UserID, "ok", "")
	user.MobileNo = decryptMobile(ctx, s.em, user.MobileCipher, user.MobileDEK, user.MobileKeyID)
	return user, nil
}

func (s *UserService) Logout(ctx context.Context, userID string) {
	s.audit.Record(ctx, "user.logout", "user", userID, userID, "ok", "")
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.MobileNo = decryptMobile(ctx, s.em, user.MobileCipher, user.MobileDEK, user.MobileKeyID)
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.users.List()
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		user.MobileNo = decryptMobile(ctx, s.em, user.MobileCipher, user.MobileDEK, user.MobileKeyID)
	}
	return users, nil
}

// UserUpdate carries optional profile changes; empty fields keep the
// stored value.
type UserUpdate struct {
	Fullname       string
	MobileNo       string
	Address        string
	Gender         string
	ProfilePicture []byte
	ImageFilename  string
}

func (s *UserService) UpdateUser(ctx context.Context, userID string, update *UserUpdate) (*model.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if update.Fullname != "" {
		if err := validation.Name(update.Fullname); err != nil {
			return nil, err
		}
		user.Fullname = update.Fullname
	}
	if update.MobileNo != "" {
		if err := validation.Phone(update.MobileNo); err != nil {
			return nil, err
		}
		mobile, err := encryptMobile(ctx, s.em, update.MobileNo)
		if err != nil {
			return nil, err
		}
		user.MobileNo = update.MobileNo
		user.MobileHash = mobile.Hash
		user.MobileCipher = mobile.Cipher
		user.MobileDEK = mobile.DEK
		user.MobileKeyID = mobile.KeyID
	}
	if update.Address != "" {
		if err := validation.Address(update.Address); err != nil {
			return nil, err
		}
		user.Address = update.Address
	}
	if update.Gender != "" {
		if err := validation.Gender(update.Gender); err != nil {
			return nil, err
		}
		user.Gender = update.Gender
	}
	if len(update.ProfilePicture) > 0 {
		if update.ImageFilename != "" {
			if err := validation.ImageFilename(update.ImageFilename); err != nil {
				return nil, err
			}
		}
		user.ProfilePicture = update.ProfilePicture
	}

	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.users.GetByID(userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.users.Delete(userID)
}

func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	ok, err := s.hasher.VerifyPassword(oldPassword, user.Password)
	if err != nil || !ok {
		return ErrInvalidCredentials
	}

	if err := validation.Password(newPassword); err != nil {
		return err
	}

	hash, err := s.hasher.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.users.UpdatePassword(userID, hash)
}

func (s *UserService) DeleteProfilePicture(ctx context.Context, userID string) error {
	if _, err := s.users.GetByID(userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.users.UpdateProfilePicture(userID, nil)
}

func (s *UserService) validateRegistration(reg *UserRegistration) error {
	if err := validation.Username(reg.Username); err != nil {
		return err
	}
	if err := validation.Name(reg.Fullname); err != nil {
		return err
	}
	if err := validation.Email(reg.Email); err != nil {
		return err
	}
	if err := validation.Password(reg.Password); err != nil {
		return err
	}
	if reg.Password != reg.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := validation.Phone(reg.MobileNo); err != nil {
		return err
	}
	if reg.Address != "" {
		if err := validation.Address(reg.Address); err != nil {
			return err
		}
	}
	if err := validation.Gender(reg.Gender); err != nil {
		return err
	}
	if reg.ImageFilename != "" {
		if err := validation.ImageFilename(reg.ImageFilename); err != nil {
			return err
		}
	}
	return nil
}
