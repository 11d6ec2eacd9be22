package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

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

// AgentRegistration is the write payload for a new agent application.
type AgentRegistration struct {
	UserName       string
	FullName       string
	Email          string
	Password       string
	MobileNo       string
	Experience     string
	Rating         string
	Bio            string
	ProfilePicture []byte
	ImageFilename  string
}

// ApprovalResult reports a two-phase approval. The live record is
// durable once this is returned; Partial marks a follow-up failure
// (notification or pending-row cleanup) that needs operator attention
// but must not roll back the promotion.
type ApprovalResult struct {
	ID       string   `json:"id"`
	Partial  bool     `json:"partial"`
	Warnings []string `json:"warnings,omitempty"`
}

// AgentService owns the agent side of the two-stage approval workflow:
// registration lands in temporary_agents, an admin decision promotes or
// deletes it.
type AgentService struct {
	agents   repository.AgentRepository
	em       *encryption.EncryptionManager
	hasher   *hashing.Hasher
	notifier notify.Notifier
	audit    *audit.Recorder
	events   *events.Publisher
}

func NewAgentService(
	agents repository.AgentRepository,
	em *encryption.EncryptionManager,
	hasher *hashing.Hasher,
	notifier notify.Notifier,
	auditor *audit.Recorder,
	publisher *events.Publisher,
) *AgentService {
	return &AgentService{
		agents:   agents,
		em:       em,
		hasher:   hasher,
		notifier: notifier,
		audit:    auditor,
		events:   publisher,
	}
}

func (s *AgentService) RegisterTemporary(ctx context.Context, reg *AgentRegistration) (*model.TemporaryAgent, error) {
	if err := s.validateRegistration(reg); err != nil {
		return nil, err
	}

	taken, err := s.emailTaken(reg.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("email already registered: %w", ErrAlreadyExists)
	}

	taken, err = s.usernameTaken(reg.UserName)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("username already registered: %w", ErrAlreadyExists)
	}

	hash, err := s.hasher.HashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	mobile, err := encryptMobile(ctx, s.em, reg.MobileNo)
	if err != nil {
		return nil, err
	}

	experience, _ := strconv.ParseFloat(reg.Experience, 64)
	rating, _ := strconv.ParseFloat(reg.Rating, 64)

	agent := &model.TemporaryAgent{
		UserName:       reg.UserName,
		FullName:       reg.FullName,
		Email:          reg.Email,
		Password:       hash,
		MobileNo:       reg.MobileNo,
		MobileHash:     mobile.Hash,
		MobileCipher:   mobile.Cipher,
		MobileDEK:      mobile.DEK,
		MobileKeyID:    mobile.KeyID,
		Status:         model.StatusPending,
		ProfilePicture: reg.ProfilePicture,
		Experience:     experience,
		Rating:         rating,
		Bio:            util.SanitizeInput(reg.Bio),
		Approved:       false,
	}

	if err := s.agents.CreateTemporary(agent); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "agent.registered", "temporary_agent", agent.TempAgentID, agent.TempAgentID, "ok", "")
	s.events.Publish(ctx, events.EventAgentRegistered, agent.TempAgentID, "")
	return agent, nil
}

// ApproveAgent promotes a pending application into the live agents
// table. Uniqueness against live agents is re-checked at decision time:
// another application for the same email may have been approved since
// registration.
func (s *AgentService) ApproveAgent(ctx context.Context, tempAgentID, actorID string) (*ApprovalResult, error) {
	temp, err := s.agents.GetTemporaryByID(tempAgentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if _, err := s.agents.GetByEmail(temp.Email); err == nil {
		return nil, fmt.Errorf("a live agent already uses this email: %w", ErrAlreadyExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	agent := &model.Agent{
		UserName:       temp.UserName,
		FullName:       temp.FullName,
		Email:          temp.Email,
		Password:       temp.Password,
		MobileNo:       temp.MobileNo,
		MobileHash:     temp.MobileHash,
		MobileCipher:   temp.MobileCipher,
		MobileDEK:      temp.MobileDEK,
		MobileKeyID:    temp.MobileKeyID,
		Role:           model.RoleAgent,
		Status:         model.StatusActive,
		ProfilePicture: temp.ProfilePicture,
		Experience:     temp.Experience,
		Rating:         temp.Rating,
		Bio:            temp.Bio,
		Approved:       true,
		CreatedAt:      temp.CreatedAt,
	}

	// Phase one: the live record must be durable before anything else.
	if err := s.agents.Create(agent); err != nil {
		return nil, err
	}

	// Phase two: best effort. Failures degrade to a partial success.
	result := &ApprovalResult{ID: agent.AgentID}

	if s.notifier != nil {
		if err := s.notifier.SendAgentApproved(agent.Email, agent.FullName); err != nil {
			util.Error("Failed to send agent approval email",
				zap.String("agent_id", agent.AgentID),
				zap.Error(err))
			result.Partial = true
			result.Warnings = append(result.Warnings, "approval notification failed")
		}
	}

	if err := s.agents.DeleteTemporary(tempAgentID); err != nil {
		util.Error("Failed to delete temporary agent after promotion",
			zap.String("temp_agent_id", tempAgentID),
			zap.Error(err))
		result.Partial = true
		result.Warnings = append(result.Warnings, "pending record cleanup failed")
	}

	outcome := "ok"
	if result.Partial {
		outcome = "partial"
	}
	s.audit.Record(ctx, "agent.approved", "agent", agent.AgentID, actorID, outcome, "")
	s.events.Publish(ctx, events.EventAgentApproved, agent.AgentID, actorID)

	util.Info("Agent approved",
		zap.String("agent_id", agent.AgentID),
		zap.Bool("partial", result.Partial))
	return result, nil
}

func (s *AgentService) RejectAgent(ctx context.Context, tempAgentID, actorID string) error {
	temp, err := s.agents.GetTemporaryByID(tempAgentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.agents.DeleteTemporary(tempAgentID); err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.SendAgentRejected(temp.Email, temp.FullName); err != nil {
			util.Error("Failed to send agent rejection email",
				zap.String("temp_agent_id", tempAgentID),
				zap.Error(err))
		}
	}

	s.audit.Record(ctx, "agent.rejected", "temporary_agent", tempAgentID, actorID, "ok", "")
	s.events.Publish(ctx, events.EventAgentRejected, tempAgentID, actorID)
	return nil
}

func (s *AgentService) ListPending() ([]*model.TemporaryAgent, error) {
	return s.agents.ListTemporary()
}

func (s *AgentService) GetAgent(ctx context.Context, agentID string) (*model.Agent, error) {
	agent, err := s.agents.GetByID(agentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	agent.MobileNo = decryptMobile(ctx, s.em, agent.MobileCipher, agent.MobileDEK, agent.MobileKeyID)
	return agent, nil
}

func (s *AgentService) ListAgents(ctx context.Context) ([]*model.Agent, error) {
	agents, err := s.agents.List()
	if err != nil {
		return nil, err
	}
	for _, agent := range agents {
		agent.MobileNo = decryptMobile(ctx, s.em, agent.MobileCipher, agent.MobileDEK, agent.MobileKeyID)
	}
	return agents, nil
}

// AgentUpdate carries optional profile changes; empty fields keep the
// stored value.
type AgentUpdate struct {
	FullName   string
	MobileNo   string
	Experience string
	Rating     string
	Bio        string
}

func (s *AgentService) UpdateAgent(ctx context.Context, agentID string, update *AgentUpdate) (*model.Agent, error) {
	agent, err := s.agents.GetByID(agentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if update.FullName != "" {
		if err := validation.Name(update.FullName); err != nil {
			return nil, err
		}
		agent.FullName = update.FullName
	}
	if update.MobileNo != "" {
		if err := validation.Phone(update.MobileNo); err != nil {
			return nil, err
		}
		mobile, err := encryptMobile(ctx, s.em, update.MobileNo)
		if err != nil {
			return nil, err
		}
		agent.MobileNo = update.MobileNo
		agent.MobileHash = mobile.Hash
		agent.MobileCipher = mobile.Cipher
		agent.MobileDEK = mobile.DEK
		agent.MobileKeyID = mobile.KeyID
	}
	if update.Experience != "" {
		experience, err := strconv.ParseFloat(update.Experience, 64)
		if err != nil {
			return nil, &validation.FieldError{Field: "experience", Reason: "must be a number"}
		}
		agent.Experience = experience
	}
	if update.Rating != "" {
		if err := validation.Rating(update.Rating); err != nil {
			return nil, err
		}
		agent.Rating, _ = strconv.ParseFloat(update.Rating, 64)
	}
	if update.Bio != "" {
		agent.Bio = util.SanitizeInput(update.Bio)
	}

	if err := s.agents.Update(agent); err != nil {
		return nil, err
	}
	return agent, nil
}

func (s *AgentService) DeleteAgent(ctx context.Context, agentID string) error {
	if _, err := s.agents.GetByID(agentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.agents.Delete(agentID)
}

func (s *AgentService) Login(ctx context.Context, username, password string) (*model.Agent, error) {
	agent, err := s.agents.GetByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.VerifyPassword(password, agent.Password)
	if err != nil || !ok {
		s.audit.Record(ctx, "agent.login", "agent", agent.AgentID, agent.AgentID, "denied", "")
		return nil, ErrInvalidCredentials
	}

	s.audit.Record(ctx, "agent.login", "agent", agent.AgentID, agent.AgentID, "ok", "")
	agent.MobileNo = decryptMobile(ctx, s.em, agent.MobileCipher, agent.MobileDEK, agent.MobileKeyID)
	return agent, nil
}

func (s *AgentService) ChangePassword(ctx context.Context, agentID, oldPassword, newPassword string) error {
	agent, err := s.agents.GetByID(agentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	ok, err := s.hasher.VerifyPassword(oldPassword, agent.Password)
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
	return s.agents.UpdatePassword(agentID, hash)
}

func (s *AgentService) validateRegistration(reg *AgentRegistration) error {
	if err := validation.Username(reg.UserName); err != nil {
		return err
	}
	if err := validation.Name(reg.FullName); err != nil {
		return err
	}
	if err := validation.Email(reg.Email); err != nil {
		return err
	}
	if err := validation.Password(reg.Password); err != nil {
		return err
	}
	if err := validation.Phone(reg.MobileNo); err != nil {
		return err
	}
	if reg.Rating != "" {
		if err := validation.Rating(reg.Rating); err != nil {
			return err
		}
	}
	if reg.ImageFilename != "" {
		if err := validation.ImageFilename(reg.ImageFilename); err != nil {
			return err
		}
	}
	return nil
}

// emailTaken and usernameTaken span both the live and the temporary
// agent tables so a pending application blocks re-registration.
func (s *AgentService) emailTaken(email string) (bool, error) {
	if _, err := s.agents.GetByEmail(email); err == nil {
		return true, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if _, err := s.agents.GetTemporaryByEmail(email); err == nil {
		return true, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	return false, nil
}

func (s *AgentService) usernameTaken(username string) (bool, error) {
	if _, err := s.agents.GetByUsername(username); err == nil {
		return true, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if _, err := s.agents.GetTemporaryByUsername(username); err == nil {
		return true, nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	return false, nil
}
