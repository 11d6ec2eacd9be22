package scylla

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"realty-service/internal/config"
	"realty-service/internal/util"
)

// Statements holds the hot-path CQL. Filtered lookups (by email, by
// agent) are built inline by the repositories. The driver prepares and
// caches each statement per host; repositories build a fresh Query per
// call so bind state stays request-local.
type Statements struct {
	CreateAdmin  string
	GetAdminByID string

	CreateAgent  string
	GetAgentByID string
	DeleteAgent  string

	CreateTempAgent  string
	GetTempAgentByID string
	DeleteTempAgent  string

	CreateUser  string
	GetUserByID string
	DeleteUser  string

	CreateTempUser  string
	GetTempUserByID string
	DeleteTempUser  string

	CreatePendingProperty  string
	GetPendingPropertyByID string
	DeletePendingProperty  string

	CreateProperty  string
	GetPropertyByID string
	DeleteProperty  string

	CreateBlog  string
	GetBlogByID string
	DeleteBlog  string

	CreateOTP string
	DeleteOTP string
}

type ScyllaClient struct {
	Session    *gocql.Session
	config     *config.ScyllaConfig
	Statements *Statements
}

func NewScyllaClient(cfg *config.Config, logger *zap.Logger) (*ScyllaClient, error) {
	scyllaConfig := cfg.Scylla

	cluster := gocql.NewCluster(scyllaConfig.Nodes...)
	cluster.Keyspace = scyllaConfig.Keyspace
	cluster.Consistency = gocql.LocalQuorum
	cluster.Timeout = 10 * time.Second
	cluster.ConnectTimeout = 10 * time.Second
	cluster.NumConns = 4
	cluster.SocketKeepalive = 30 * time.Second
	cluster.MaxPreparedStmts = 1000
	cluster.MaxRoutingKeyInfo = 1000
	cluster.PageSize = 1000
	cluster.RetryPolicy = &gocql.ExponentialBackoffRetryPolicy{
		Min:        time.Second,
		Max:        10 * time.Second,
		NumRetries: 3,
	}

	if !cfg.IsDevelopment() {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 "/root/certs/ca.pem",
			CertPath:               "/root/certs/server.pem",
			KeyPath:                "/root/certs/server.key",
			EnableHostVerification: true,
		}
	}

	if scyllaConfig.Username != "" && scyllaConfig.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: scyllaConfig.Username,
			Password: scyllaConfig.Password,
		}
	}

	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create scylla session: %w", err)
	}

	client := &ScyllaClient{
		Session:    session,
		config:     &scyllaConfig,
		Statements: loadStatements(),
	}

	util.Info("ScyllaDB client initialized",
		zap.Strings("nodes", scyllaConfig.Nodes),
		zap.String("keyspace", scyllaConfig.Keyspace))

	return client, nil
}

func loadStatements() *Statements {
	prepared := &Statements{}

	prepared.CreateAdmin = `
        INSERT INTO admins (
            bucket, admin_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            role, status, profile_picture, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	prepared.GetAdminByID = `
        SELECT bucket, admin_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            role, status, profile_picture, created_at, updated_at
        FROM admins WHERE bucket = ? AND admin_id = ?`

	prepared.CreateAgent = `
        INSERT INTO agents (
            bucket, agent_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            role, status, profile_picture, experience, rating, bio,
            approved, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	prepared.GetAgentByID = `
        SELECT bucket, agent_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            role, status, profile_picture, experience, rating, bio,
            approved, created_at, updated_at
        FROM agents WHERE bucket = ? AND agent_id = ?`

	prepared.DeleteAgent = `
        DELETE FROM agents WHERE bucket = ? AND agent_id = ?`

	prepared.CreateTempAgent = `
        INSERT INTO temporary_agents (
            bucket, temp_agent_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            status, profile_picture, experience, rating, bio,
            approved, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	prepared.GetTempAgentByID = `
        SELECT bucket, temp_agent_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            status, profile_picture, experience, rating, bio,
            approved, created_at, updated_at
        FROM temporary_agents WHERE bucket = ? AND temp_agent_id = ?`

	prepared.DeleteTempAgent = `
        DELETE FROM temporary_agents WHERE bucket = ? AND temp_agent_id = ?`

	prepared.CreateUser = `
        INSERT INTO users (
            bucket, user_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            address, gender, role, status, profile_picture, verified,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	prepared.GetUserByID = `
        SELECT bucket, user_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            address, gender, role, status, profile_picture, verified,
            created_at, updated_at
        FROM users WHERE bucket = ? AND user_id = ?`

	prepared.DeleteUser = `
        DELETE FROM users WHERE bucket = ? AND user_id = ?`

	prepared.CreateTempUser = `
        INSERT INTO temporary_users (
            bucket, temp_user_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            address, gender, status, profile_picture, otp, otp_expiry,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	prepared.GetTempUserByID = `
        SELECT bucket, temp_user_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            address, gender, status, profile_picture, otp, otp_expiry,
            created_at, updated_at
        FROM temporary_users WHERE bucket = ? AND temp_user_id = ?`

	prepared.DeleteTempUser = `
        DELETE FROM temporary_users WHERE bucket = ? AND temp_user_id = ?`

	prepared.CreatePendingProperty = `
        INSERT INTO pending_properties (
            bucket, property_id, agent_id, title, price, size, address,
            year_built, property_type, bedrooms, bathrooms, amenities,
            features, proximity, status, images, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	prepared.GetPendingPropertyByID = `
        SELECT bucket, property_id, agent_id, title, price, size, address,
            year_built, property_type, bedrooms, bathrooms, amenities,
            features, proximity, status, images, created_at, updated_at
        FROM pending_properties WHERE bucket = ? AND property_id = ?`

	prepared.DeletePendingProperty = `
        DELETE FROM pending_properties WHERE bucket = ? AND property_id = ?`

	prepared.CreateProperty = `
        INSERT INTO properties (
            bucket, property_id, agent_id, title, price, size, address,
            year_built, property_type, bedrooms, bathrooms, amenities,
            features, proximity, status, availability, images,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	prepared.GetPropertyByID = `
        SELECT bucket, property_id, agent_id, title, price, size, address,
            year_built, property_type, bedrooms, bathrooms, amenities,
            features, proximity, status, availability, images,
            created_at, updated_at
        FROM properties WHERE bucket = ? AND property_id = ?`

	prepared.DeleteProperty = `
        DELETE FROM properties WHERE bucket = ? AND property_id = ?`

	prepared.CreateBlog = `
        INSERT INTO blogs (blog_id, title, description, image_path, image, date)
        VALUES (?, ?, ?, ?, ?, ?)`

	prepared.GetBlogByID = `
        SELECT blog_id, title, description, image_path, image, date
        FROM blogs WHERE blog_id = ?`

	prepared.DeleteBlog = `
        DELETE FROM blogs WHERE blog_id = ?`

	prepared.CreateOTP = `
        INSERT INTO password_otps (otp_id, code, kind, identity_id, email, created_at, expires_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`

	prepared.DeleteOTP = `
        DELETE FROM password_otps WHERE otp_id = ?`

	return prepared
}

func (s *ScyllaClient) Close() {
	if s.Session != nil {
		s.Session.Close()
		util.Info("ScyllaDB client closed")
	}
}

func (s *ScyllaClient) Query(stmt string, values ...interface{}) *gocql.Query {
	return s.Session.Query(stmt, values...)
}

func (s *ScyllaClient) Batch(typ gocql.BatchType) *gocql.Batch {
	return s.Session.NewBatch(typ)
}

func (s *ScyllaClient) ExecuteBatch(batch *gocql.Batch) error {
	return s.Session.ExecuteBatch(batch)
}

func (s *ScyllaClient) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var clusterName string
	err := s.Session.Query(`SELECT cluster_name FROM system.local`).WithContext(ctx).Scan(&clusterName)
	if err != nil {
		return fmt.Errorf("scylla health check failed: %w", err)
	}

	util.Debug("ScyllaDB health check passed", zap.String("cluster_name", clusterName))
	return nil
}

func (s *ScyllaClient) ExecuteWithRetry(query *gocql.Query, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := query.Exec(); err != nil {
			lastErr = err
			if i < maxRetries {
				time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
				continue
			}
		} else {
			return nil
		}
	}
	return lastErr
}

func (s *ScyllaClient) ScanWithRetry(query *gocql.Query, dest ...interface{}) error {
	var lastErr error
	for i := 0; i < 3; i++ {
		if err := query.Scan(dest...); err != nil {
			lastErr = err
			if err == gocql.ErrNotFound {
				return err
			}
			if i < 2 {
				time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
				continue
			}
		} else {
			return nil
		}
	}
	return lastErr
}
