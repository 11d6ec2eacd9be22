package scylla

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"realty-service/internal/bucketing"
	"realty-service/internal/model"
	"realty-service/internal/repository"
	"realty-service/internal/util"
)

type AdminRepository struct {
	client  *ScyllaClient
	buckets *bucketing.BucketingManager
}

func NewAdminRepository(client *ScyllaClient, buckets *bucketing.BucketingManager) *AdminRepository {
	return &AdminRepository{
		client:  client,
		buckets: buckets,
	}
}

func (r *AdminRepository) Create(admin *model.Admin) error {
	if admin.AdminID == "" {
		admin.AdminID = uuid.New().String()
	}
	admin.Bucket = r.buckets.IdentityBucket(admin.AdminID)

	now := time.Now().UTC()
	admin.CreatedAt = now
	admin.UpdatedAt = now

	query := r.client.Query(r.client.Statements.CreateAdmin,
		admin.Bucket, admin.AdminID, admin.Username, admin.Fullname,
		admin.Email, admin.Password,
		admin.MobileHash, admin.MobileCipher, admin.MobileDEK, admin.MobileKeyID,
		string(admin.Role), string(admin.Status), admin.ProfilePicture,
		admin.CreatedAt, admin.UpdatedAt)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to create admin",
			zap.String("admin_id", admin.AdminID),
			zap.Error(err))
		return fmt.Errorf("failed to create admin: %w", err)
	}

	util.Info("Admin created successfully",
		zap.String("admin_id", admin.AdminID),
		zap.String("username", admin.Username))
	return nil
}

func (r *AdminRepository) GetByID(adminID string) (*model.Admin, error) {
	bucket := r.buckets.IdentityBucket(adminID)
	admin := &model.Admin{}

	query := r.client.Query(r.client.Statements.GetAdminByID, bucket, adminID)

	err := r.client.ScanWithRetry(query, adminScanDest(admin)...)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, repository.ErrNotFound
		}
		util.Error("Failed to get admin by ID",
			zap.String("admin_id", adminID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get admin by ID: %w", err)
	}

	return admin, nil
}

func (r *AdminRepository) GetByEmail(email string) (*model.Admin, error) {
	return r.getByColumn("email", email)
}

func (r *AdminRepository) GetByUsername(username string) (*model.Admin, error) {
	return r.getByColumn("username", username)
}

func (r *AdminRepository) getByColumn(column, value string) (*model.Admin, error) {
	admin := &model.Admin{}

	stmt := fmt.Sprintf(`
        SELECT bucket, admin_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            role, status, profile_picture, created_at, updated_at
        FROM admins WHERE %s = ? ALLOW FILTERING`, column)

	query := r.client.Query(stmt, value)

	err := r.client.ScanWithRetry(query, adminScanDest(admin)...)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, repository.ErrNotFound
		}
		util.Error("Failed to get admin",
			zap.String("column", column),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get admin by %s: %w", column, err)
	}

	return admin, nil
}

func (r *AdminRepository) List() ([]*model.Admin, error) {
	iter := r.client.Query(`
        SELECT bucket, admin_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            role, status, profile_picture, created_at, updated_at
        FROM admins`).Iter()

	var admins []*model.Admin
	for {
		admin := &model.Admin{}
		if !iter.Scan(adminScanDest(admin)...) {
			break
		}
		admins = append(admins, admin)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, nil
}

func (r *AdminRepository) Update(admin *model.Admin) error {
	admin.UpdatedAt = time.Now().UTC()
	bucket := r.buckets.IdentityBucket(admin.AdminID)

	query := r.client.Query(`
        UPDATE admins SET username = ?, fullname = ?, email = ?,
            mobile_hash = ?, mobile_cipher = ?, mobile_dek = ?, mobile_key_id = ?,
            profile_picture = ?, updated_at = ?
        WHERE bucket = ? AND admin_id = ?`,
		admin.Username, admin.Fullname, admin.Email,
		admin.MobileHash, admin.MobileCipher, admin.MobileDEK, admin.MobileKeyID,
		admin.ProfilePicture, admin.UpdatedAt, bucket, admin.AdminID)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to update admin",
			zap.String("admin_id", admin.AdminID),
			zap.Error(err))
		return fmt.Errorf("failed to update admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) Delete(adminID string) error {
	bucket := r.buckets.IdentityBucket(adminID)

	query := r.client.Query(`
        DELETE FROM admins WHERE bucket = ? AND admin_id = ?`, bucket, adminID)
	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		return fmt.Errorf("failed to delete admin: %w", err)
	}

	util.Info("Admin deleted", zap.String("admin_id", adminID))
	return nil
}

func (r *AdminRepository) UpdatePassword(adminID, passwordHash string) error {
	bucket := r.buckets.IdentityBucket(adminID)

	query := r.client.Query(`
        UPDATE admins SET password = ?, updated_at = ?
        WHERE bucket = ? AND admin_id = ?`,
		passwordHash, time.Now().UTC(), bucket, adminID)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to update admin password",
			zap.String("admin_id", adminID),
			zap.Error(err))
		return fmt.Errorf("failed to update admin password: %w", err)
	}
	return nil
}

func adminScanDest(admin *model.Admin) []interface{} {
	return []interface{}{
		&admin.Bucket, &admin.AdminID, &admin.Username, &admin.Fullname,
		&admin.Email, &admin.Password,
		&admin.MobileHash, &admin.MobileCipher, &admin.MobileDEK, &admin.MobileKeyID,
		&admin.Role, &admin.Status, &admin.ProfilePicture,
		&admin.CreatedAt, &admin.UpdatedAt,
	}
}
