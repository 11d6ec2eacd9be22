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

// AgentRepository serves both the live agents table and the
// temporary_agents review queue. The two tables are disjoint: promotion
// inserts into agents and deletes from temporary_agents.
type AgentRepository struct {
	client  *ScyllaClient
	buckets *bucketing.BucketingManager
}

func NewAgentRepository(client *ScyllaClient, buckets *bucketing.BucketingManager) *AgentRepository {
	return &AgentRepository{
		client:  client,
		buckets: buckets,
	}
}

func (r *AgentRepository) Create(agent *model.Agent) error {
	if agent.AgentID == "" {
		agent.AgentID = uuid.New().String()
	}
	agent.Bucket = r.buckets.IdentityBucket(agent.AgentID)

	now := time.Now().UTC()
	if agent.CreatedAt.IsZero() {
		agent.CreatedAt = now
	}
	agent.UpdatedAt = now

	query := r.client.Query(r.client.Statements.CreateAgent,
		agent.Bucket, agent.AgentID, agent.UserName, agent.FullName,
		agent.Email, agent.Password,
		agent.MobileHash, agent.MobileCipher, agent.MobileDEK, agent.MobileKeyID,
		string(agent.Role), string(agent.Status), agent.ProfilePicture,
		agent.Experience, agent.Rating, agent.Bio, agent.Approved,
		agent.CreatedAt, agent.UpdatedAt)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to create agent",
			zap.String("agent_id", agent.AgentID),
			zap.Error(err))
		return fmt.Errorf("failed to create agent: %w", err)
	}

	util.Info("Agent created successfully",
		zap.String("agent_id", agent.AgentID),
		zap.String("username", agent.UserName))
	return nil
}

func (r *AgentRepository) GetByID(agentID string) (*model.Agent, error) {
	bucket := r.buckets.IdentityBucket(agentID)
	agent := &model.Agent{}

	query := r.client.Query(r.client.Statements.GetAgentByID, bucket, agentID)

	err := r.client.ScanWithRetry(query, agentScanDest(agent)...)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, repository.ErrNotFound
		}
		util.Error("Failed to get agent by ID",
			zap.String("agent_id", agentID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get agent by ID: %w", err)
	}

	return agent, nil
}

func (r *AgentRepository) GetByEmail(email string) (*model.Agent, error) {
	return r.getByColumn("email", email)
}

func (r *AgentRepository) GetByUsername(username string) (*model.Agent, error) {
	return r.getByColumn("username", username)
}

func (r *AgentRepository) getByColumn(column, value string) (*model.Agent, error) {
	agent := &model.Agent{}

	stmt := fmt.Sprintf(`
        SELECT bucket, agent_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            role, status, profile_picture, experience, rating, bio,
            approved, created_at, updated_at
        FROM agents WHERE %s = ? ALLOW FILTERING`, column)

	query := r.client.Query(stmt, value)

	err := r.client.ScanWithRetry(query, agentScanDest(agent)...)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get agent by %s: %w", column, err)
	}

	return agent, nil
}

func (r *AgentRepository) List() ([]*model.Agent, error) {
	iter := r.client.Query(`
        SELECT bucket, agent_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            role, status, profile_picture, experience, rating, bio,
            approved, created_at, updated_at
        FROM agents`).Iter()

	var agents []*model.Agent
	for {
		agent := &model.Agent{}
		if !iter.Scan(agentScanDest(agent)...) {
			break
		}
		agents = append(agents, agent)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	return agents, nil
}

func (r *AgentRepository) Update(agent *model.Agent) error {
	agent.UpdatedAt = time.Now().UTC()
	bucket := r.buckets.IdentityBucket(agent.AgentID)

	query := r.client.Query(`
        UPDATE agents SET username = ?, fullname = ?, email = ?,
            mobile_hash = ?, mobile_cipher = ?, mobile_dek = ?, mobile_key_id = ?,
            profile_picture = ?, experience = ?, rating = ?, bio = ?, updated_at = ?
        WHERE bucket = ? AND agent_id = ?`,
		agent.UserName, agent.FullName, agent.Email,
		agent.MobileHash, agent.MobileCipher, agent.MobileDEK, agent.MobileKeyID,
		agent.ProfilePicture, agent.Experience, agent.Rating, agent.Bio,
		agent.UpdatedAt, bucket, agent.AgentID)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to update agent",
			zap.String("agent_id", agent.AgentID),
			zap.Error(err))
		return fmt.Errorf("failed to update agent: %w", err)
	}
	return nil
}

func (r *AgentRepository) UpdatePassword(agentID, passwordHash string) error {
	bucket := r.buckets.IdentityBucket(agentID)

	query := r.client.Query(`
        UPDATE agents SET password = ?, updated_at = ?
        WHERE bucket = ? AND agent_id = ?`,
		passwordHash, time.Now().UTC(), bucket, agentID)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		return fmt.Errorf("failed to update agent password: %w", err)
	}
	return nil
}

func (r *AgentRepository) Delete(agentID string) error {
	bucket := r.buckets.IdentityBucket(agentID)

	query := r.client.Query(r.client.Statements.DeleteAgent, bucket, agentID)
	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		return fmt.Errorf("failed to delete agent: %w", err)
	}

	util.Info("Agent deleted", zap.String("agent_id", agentID))
	return nil
}

func (r *AgentRepository) CreateTemporary(agent *model.TemporaryAgent) error {
	if agent.TempAgentID == "" {
		agent.TempAgentID = uuid.New().String()
	}
	agent.Bucket = r.buckets.IdentityBucket(agent.TempAgentID)

	now := time.Now().UTC()
	agent.CreatedAt = now
	agent.UpdatedAt = now

	query := r.client.Query(r.client.Statements.CreateTempAgent,
		agent.Bucket, agent.TempAgentID, agent.UserName, agent.FullName,
		agent.Email, agent.Password,
		agent.MobileHash, agent.MobileCipher, agent.MobileDEK, agent.MobileKeyID,
		string(agent.Status), agent.ProfilePicture,
		agent.Experience, agent.Rating, agent.Bio, agent.Approved,
		agent.CreatedAt, agent.UpdatedAt)

	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		util.Error("Failed to create temporary agent",
			zap.String("temp_agent_id", agent.TempAgentID),
			zap.Error(err))
		return fmt.Errorf("failed to create temporary agent: %w", err)
	}

	util.Info("Temporary agent created",
		zap.String("temp_agent_id", agent.TempAgentID),
		zap.String("username", agent.UserName))
	return nil
}

func (r *AgentRepository) GetTemporaryByID(tempAgentID string) (*model.TemporaryAgent, error) {
	bucket := r.buckets.IdentityBucket(tempAgentID)
	agent := &model.TemporaryAgent{}

	query := r.client.Query(r.client.Statements.GetTempAgentByID, bucket, tempAgentID)

	err := r.client.ScanWithRetry(query, tempAgentScanDest(agent)...)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get temporary agent by ID: %w", err)
	}

	return agent, nil
}

func (r *AgentRepository) GetTemporaryByEmail(email string) (*model.TemporaryAgent, error) {
	return r.getTemporaryByColumn("email", email)
}

func (r *AgentRepository) GetTemporaryByUsername(username string) (*model.TemporaryAgent, error) {
	return r.getTemporaryByColumn("username", username)
}

func (r *AgentRepository) getTemporaryByColumn(column, value string) (*model.TemporaryAgent, error) {
	agent := &model.TemporaryAgent{}

	stmt := fmt.Sprintf(`
        SELECT bucket, temp_agent_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            status, profile_picture, experience, rating, bio,
            approved, created_at, updated_at
        FROM temporary_agents WHERE %s = ? ALLOW FILTERING`, column)

	query := r.client.Query(stmt, value)

	err := r.client.ScanWithRetry(query, tempAgentScanDest(agent)...)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get temporary agent by %s: %w", column, err)
	}

	return agent, nil
}

func (r *AgentRepository) ListTemporary() ([]*model.TemporaryAgent, error) {
	iter := r.client.Query(`
        SELECT bucket, temp_agent_id, username, fullname, email, password,
            mobile_hash, mobile_cipher, mobile_dek, mobile_key_id,
            status, profile_picture, experience, rating, bio,
            approved, created_at, updated_at
        FROM temporary_agents`).Iter()

	var agents []*model.TemporaryAgent
	for {
		agent := &model.TemporaryAgent{}
		if !iter.Scan(tempAgentScanDest(agent)...) {
			break
		}
		agents = append(agents, agent)
	}

	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("failed to list temporary agents: %w", err)
	}
	return agents, nil
}

func (r *AgentRepository) DeleteTemporary(tempAgentID string) error {
	bucket := r.buckets.IdentityBucket(tempAgentID)

	query := r.client.Query(r.client.Statements.DeleteTempAgent, bucket, tempAgentID)
	if err := r.client.ExecuteWithRetry(query, 3); err != nil {
		return fmt.Errorf("failed to delete temporary agent: %w", err)
	}

	util.Info("Temporary agent deleted", zap.String("temp_agent_id", tempAgentID))
	return nil
}

func agentScanDest(agent *model.Agent) []interface{} {
	return []interface{}{
		&agent.Bucket, &agent.AgentID, &agent.UserName, &agent.FullName,
		&agent.Email, &agent.Password,
		&agent.MobileHash, &agent.MobileCipher, &agent.MobileDEK, &agent.MobileKeyID,
		&agent.Role, &agent.Status, &agent.ProfilePicture,
		&agent.Experience, &agent.Rating, &agent.Bio, &agent.Approved,
		&agent.CreatedAt, &agent.UpdatedAt,
	}
}

func tempAgentScanDest(agent *model.TemporaryAgent) []interface{} {
	return []interface{}{
		&agent.Bucket, &agent.TempAgentID, &agent.UserName, &agent.FullName,
		&agent.Email, &agent.Password,
		&agent.MobileHash, &agent.MobileCipher, &agent.MobileDEK, &agent.MobileKeyID,
		&agent.Status, &agent.ProfilePicture,
		&agent.Experience, &agent.Rating, &agent.Bio, &agent.Approved,
		&agent.CreatedAt, &agent.UpdatedAt,
	}
}
