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

// UserRepository serves the live users table and the temporary_users
// staging table. A temporary user carries its own registration OTP and
// is consumed when verification promotes it.
type UserRepository struct {
	client  *ScyllaClient
	buckets *bucketing.BucketingManager
}

func NewUserRepository(client *ScyllaClient, buckets *bucketing.BucketingManager) *UserRepository {
	return &UserRepository{
		client:  client,
		buckets: buckets,
	}
}

func (r *UserRepository) Create(user *model.User) error {
	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	user.Bucket = r.buckets.IdentityBucket(user.UserID)

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	query := r.client.Query(r.client.Statements.CreateUser,
		user.Bucket, user.UserID, user.Username, user.Fullname,
		user.Email, user.Password,
		user.MobileHash, user.MobileCipher, user.MobileDEK, user.MobileKeyID,
		user.Address, user.Gender, string(user.Role), string(user.Status),
		user.ProfilePicture, user.Verified,
		user.CreatedAt, user.UpdatedAt)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to create user",
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	util.Info("User created successfully",
		zap.String("user_id", user.UserID),
		zap.String("username", user.Username))
	return nil
}

func (r *UserRepository) GetByID(userID string) (*model.User, error) {
	bucket := r.buckets.IdentityBucket(userID)
	user := &model.User{}

	query := r.client.Query(r.client.Statements.GetUserByID, bucket, userID)

	err := r.client.ScanWithRetry(query, userScanDest(user)...)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, repository.ErrNotFound
		}
		util.Error("Failed to get user by ID",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetByEmail(email string) (*model.User, error) {
	return r.getByColumn("email", email)
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	return r.getByColumn("username", username)
}

func (r *UserRepository) getByColumn(column, value string) (*model.User, error) {
	user := &model.User{}

	stmt := fmt.Sprintf(`
        SELECT bucket, user_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            address, gender, role, status, profile_picture, verified,
            created_at, updated_at
        FROM users WHERE %s = ? ALLOW FILTERING`, column)

	query := r.client.Query(stmt, value)

	err := r.client.ScanWithRetry(query, userScanDest(user)...)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return user, nil
}

func (r *UserRepository) List() ([]*model.User, error) {
	iter := r.client.Query(`
        SELECT bucket, user_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            address, gender, role, status, profile_picture, verified,
            created_at, updated_at
        FROM users`).Iter()

	var users []*model.User
	for {
		user := &model.User{}
		if !iter.Scan(userScanDest(user)...) {
			break
		}
		users = append(users, user)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Update(user *model.User) error {
	user.UpdatedAt = time.Now().UTC()
	bucket := r.buckets.IdentityBucket(user.UserID)

	query := r.client.Query(`
        UPDATE users SET username = ?, fullname = ?, email = ?,
            mobile_hash = ?, mobile_cipher = ?, mobile_dek = ?, mobile_key_id = ?,
            address = ?, gender = ?, profile_picture = ?, updated_at = ?
        WHERE bucket = ? AND user_id = ?`,
		user.Username, user.Fullname, user.Email,
		user.MobileHash, user.MobileCipher, user.MobileDEK, user.MobileKeyID,
		user.Address, user.Gender, user.ProfilePicture, user.UpdatedAt,
		bucket, user.UserID)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to update user",
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(userID, passwordHash string) error {
	bucket := r.buckets.IdentityBucket(userID)

	query := r.client.Query(`
        UPDATE users SET password = ?, updated_at = ?
        WHERE bucket = ? AND user_id = ?`,
		passwordHash, time.Now().UTC(), bucket, userID)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		return fmt.Errorf("failed to update user password: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdateProfilePicture(userID string, picture []byte) error {
	bucket := r.buckets.IdentityBucket(userID)

	query := r.client.Query(`
        UPDATE users SET profile_picture = ?, updated_at = ?
        WHERE bucket = ? AND user_id = ?`,
		picture, time.Now().UTC(), bucket, userID)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		return fmt.Errorf("failed to update user profile picture: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(userID string) error {
	bucket := r.buckets.IdentityBucket(userID)

	query := r.client.Query(r.client.Statements.DeleteUser, bucket, userID)
	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	util.Info("User deleted", zap.String("user_id", userID))
	return nil
}

func (r *UserRepository) CreateTemporary(user *model.TemporaryUser) error {
	if user.TempUserID == "" {
		user.TempUserID = uuid.New().String()
	}
	user.Bucket = r.buckets.IdentityBucket(user.TempUserID)

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := r.client.Query(r.client.Statements.CreateTempUser,
		user.Bucket, user.TempUserID, user.Username, user.Fullname,
		user.Email, user.Password,
		user.MobileHash, user.MobileCipher, user.MobileDEK, user.MobileKeyID,
		user.Address, user.Gender, string(user.Status), user.ProfilePicture,
		user.OTP, user.OTPExpiry,
		user.CreatedAt, user.UpdatedAt)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to create temporary user",
			zap.String("temp_user_id", user.TempUserID),
			zap.Error(err))
		return fmt.Errorf("failed to create temporary user: %w", err)
	}

	util.Info("Temporary user created",
		zap.String("temp_user_id", user.TempUserID),
		zap.String("username", user.Username))
	return nil
}

func (r *UserRepository) GetTemporaryByID(tempUserID string) (*model.TemporaryUser, error) {
	bucket := r.buckets.IdentityBucket(tempUserID)
	user := &model.TemporaryUser{}

	query := r.client.Query(r.client.Statements.GetTempUserByID, bucket, tempUserID)

	err := r.client.ScanWithRetry(query, tempUserScanDest(user)...)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get temporary user by ID: %w", err)
	}

	return user, nil
}

func (r *UserRepository) GetTemporaryByEmail(email string) (*model.TemporaryUser, error) {
	return r.getTemporaryByColumn("email", email)
}

// GetTemporaryByOTP looks up a pending registration by its one-time
// code. Codes are short-lived so collisions across concurrent
// registrations are tolerated the same way the reset flow tolerates
// them: first match wins.
func (r *UserRepository) GetTemporaryByOTP(code string) (*model.TemporaryUser, error) {
	return r.getTemporaryByColumn("otp", code)
}

func (r *UserRepository) getTemporaryByColumn(column, value string) (*model.TemporaryUser, error) {
	user := &model.TemporaryUser{}

	stmt := fmt.Sprintf(`
        SELECT bucket, temp_user_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            address, gender, status, profile_picture, otp, otp_expiry,
            created_at, updated_at
        FROM temporary_users WHERE %s = ? ALLOW FILTERING`, column)

	query := r.client.Query(stmt, value)

	err := r.client.ScanWithRetry(query, tempUserScanDest(user)...)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get temporary user by %s: %w", column, err)
	}

	return user, nil
}

func (r *UserRepository) DeleteTemporary(tempUserID string) error {
	bucket := r.buckets.IdentityBucket(tempUserID)

	query := r.client.Query(r.client.Statements.DeleteTempUser, bucket, tempUserID)
	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		return fmt.Errorf("failed to delete temporary user: %w", err)
	}

	util.Info("Temporary user deleted", zap.String("temp_user_id", tempUserID))
	return nil
}

func userScanDest(user *model.User) []interface{} {
	return []interface{}{
		&user.Bucket, &user.UserID, &user.Username, &user.Fullname,
		&user.Email, &user.Password,
		&user.MobileHash, &user.MobileCipher, &user.MobileDEK, &user.MobileKeyID,
		&user.Address, &user.Gender, &user.Role, &user.Status,
		&user.ProfilePicture, &user.Verified,
		&user.CreatedAt, &user.UpdatedAt,
	}
}

func tempUserScanDest(user *model.TemporaryUser) []interface{} {
	return []interface{}{
		&user.Bucket, &user.TempUserID, &user.Username, &user.Fullname,
		&user.Email, &user.Password,
		&user.MobileHash, &user.MobileCipher, &user.MobileDEK, &user.MobileKeyID,
		&user.Address, &user.Gender, &user.Status, &user.ProfilePicture,
		&user.OTP, &user.OTPExpiry,
		&user.CreatedAt, &user.UpdatedAt,
	}
}
