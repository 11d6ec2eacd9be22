package service

import (
	"context"
	"errors"
	"fmt"

	"realty-service/internal/audit"
	"realty-service/internal/encryption"
	"realty-service/internal/hashing"
	"realty-service/internal/model"
	"realty-service/internal/repository"
	"realty-service/internal/validation"
)

// AdminRegistration is the write payload for a new administrator.
// Admin accounts are created directly; no review stage applies.
type AdminRegistration struct {
	Username string
	Fullname string
	Email    string
	Password string
	MobileNo string
}

type AdminService struct {
	admins repository.AdminRepository
	em     *encryption.EncryptionManager
	hasher *hashing.Hasher
	audit  *audit.Recorder
}

func NewAdminService(
	admins repository.AdminRepository,
	em *encryption.EncryptionManager,
	hasher *hashing.Hasher,
	auditor *audit.Recorder,
) *AdminService {
	return &AdminService{
		admins: admins,
		em:     em,
		hasher: hasher,
		audit:  auditor,
	}
}

func (s *AdminService) Register(ctx context.Context, reg *AdminRegistration) (*model.Admin, error) {
	if err := validation.Username(reg.Username); err != nil {
		return nil, err
	}
	if err := validation.Name(reg.Fullname); err != nil {
		return nil, err
	}
	if err := validation.Email(reg.Email); err != nil {
		return nil, err
	}
	if err := validation.Password(reg.Password); err != nil {
		return nil, err
	}
	if err := validation.Phone(reg.MobileNo); err != nil {
		return nil, err
	}

	if _, err := s.admins.GetByEmail(reg.Email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", ErrAlreadyExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.admins.GetByUsername(reg.Username); err == nil {
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

	admin := &model.Admin{
		Username:     reg.Username,
		Fullname:     reg.Fullname,
		Email:        reg.Email,
		Password:     hash,
		MobileNo:     reg.MobileNo,
		MobileHash:   mobile.Hash,
		MobileCipher: mobile.Cipher,
		MobileDEK:    mobile.DEK,
		MobileKeyID:  mobile.KeyID,
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
	}

	if err := s.admins.Create(admin); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "admin.registered", "admin", admin.AdminID, admin.AdminID, "ok", "")
	return admin, nil
}

func (s *AdminService) Login(ctx context.Context, username, password string) (*model.Admin, error) {
	admin, err := s.admins.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.VerifyPassword(password, admin.Password)
	if err != nil || !ok {
		s.audit.Record(ctx, "admin.login", "admin", admin.AdminID, admin.AdminID, "denied", "")
		return nil, ErrInvalidCredentials
	}

	s.audit.Record(ctx, "admin.login", "admin", admin.AdminID, admin.AdminID, "ok", "")
	admin.MobileNo = decryptMobile(ctx, s.em, admin.MobileCipher, admin.MobileDEK, admin.MobileKeyID)
	return admin, nil
}

func (s *AdminService) Logout(ctx context.Context, adminID string) {
	s.audit.Record(ctx, "admin.logout", "admin", adminID, adminID, "ok", "")
}

func (s *AdminService) GetAdmin(ctx context.Context, adminID string) (*model.Admin, error) {
	admin, err := s.admins.GetByID(adminID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	admin.MobileNo = decryptMobile(ctx, s.em, admin.MobileCipher, admin.MobileDEK, admin.MobileKeyID)
	return admin, nil
}

func (s *AdminService) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	admin, err := s.admins.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	admin.MobileNo = decryptMobile(ctx, s.em, admin.MobileCipher, admin.MobileDEK, admin.MobileKeyID)
	return admin, nil
}

// AdminUpdate carries optional profile changes; empty fields keep the
// stored value.
type AdminUpdate struct {
	Fullname string
	MobileNo string
}

func (s *AdminService) UpdateAdmin(ctx context.Context, adminID string, update *AdminUpdate) (*model.Admin, error) {
	admin, err := s.admins.GetByID(adminID)
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
		admin.Fullname = update.Fullname
	}
	if update.MobileNo != "" {
		if err := validation.Phone(update.MobileNo); err != nil {
			return nil, err
		}
		mobile, err := encryptMobile(ctx, s.em, update.MobileNo)
		if err != nil {
			return nil, err
		}
		admin.MobileNo = update.MobileNo
		admin.MobileHash = mobile.Hash
		admin.MobileCipher = mobile.Cipher
		admin.MobileDEK = mobile.DEK
		admin.MobileKeyID = mobile.KeyID
	}

	if err := s.admins.Update(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *AdminService) DeleteAdmin(ctx context.Context, adminID string) error {
	if _, err := s.admins.GetByID(adminID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.admins.Delete(adminID)
}

func (s *AdminService) ListAdmins(ctx context.Context) ([]*model.Admin, error) {
	admins, err := s.admins.List()
	if err != nil {
		return nil, err
	}
	for _, admin := range admins {
		admin.MobileNo = decryptMobile(ctx, s.em, admin.MobileCipher, admin.MobileDEK, admin.MobileKeyID)
	}
	return admins, nil
}
