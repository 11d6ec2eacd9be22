// Package repository defines the persistence contracts the service layer
// depends on. The scylla subpackage provides the production
// implementations; tests substitute in-memory fakes.
package repository

import (
	"errors"

	"realty-service/internal/model"
)

// ErrNotFound is returned by every repository when the requested record
// does not exist. Callers branch with errors.Is.
var ErrNotFound = errors.New("record not found")

type AdminRepository interface {
	Create(admin *model.Admin) error
	GetByID(adminID string) (*model.Admin, error)
	GetByEmail(email string) (*model.Admin, error)
	GetByUsername(username string) (*model.Admin, error)
	List() ([]*model.Admin, error)
	Update(admin *model.Admin) error
	UpdatePassword(adminID, passwordHash string) error
	Delete(adminID string) error
}

type AgentRepository interface {
	Create(agent *model.Agent) error
	GetByID(agentID string) (*model.Agent, error)
	GetByEmail(email string) (*model.Agent, error)
	GetByUsername(username string) (*model.Agent, error)
	List() ([]*model.Agent, error)
	Update(agent *model.Agent) error
	UpdatePassword(agentID, passwordHash string) error
	Delete(agentID string) error

	CreateTemporary(agent *model.TemporaryAgent) error
	GetTemporaryByID(tempAgentID string) (*model.TemporaryAgent, error)
	GetTemporaryByEmail(email string) (*model.TemporaryAgent, error)
	GetTemporaryByUsername(username string) (*model.TemporaryAgent, error)
	ListTemporary() ([]*model.TemporaryAgent, error)
	DeleteTemporary(tempAgentID string) error
}

type UserRepository interface {
	Create(user *model.User) error
	GetByID(userID string) (*model.User, error)
	GetByEmail(email string) (*model.User, error)
	GetByUsername(username string) (*model.User, error)
	List() ([]*model.User, error)
	Update(user *model.User) error
	UpdatePassword(userID, passwordHash string) error
	UpdateProfilePicture(userID string, picture []byte) error
	Delete(userID string) error

	CreateTemporary(user *model.TemporaryUser) error
	GetTemporaryByID(tempUserID string) (*model.TemporaryUser, error)
	GetTemporaryByEmail(email string) (*model.TemporaryUser, error)
	GetTemporaryByOTP(code string) (*model.TemporaryUser, error)
	DeleteTemporary(tempUserID string) error
}

type PropertyRepository interface {
	CreatePending(property *model.PendingProperty) error
	GetPendingByID(propertyID string) (*model.PendingProperty, error)
	ListPending() ([]*model.PendingProperty, error)
	ListPendingByAgent(agentID string) ([]*model.PendingProperty, error)
	UpdatePending(property *model.PendingProperty) error
	DeletePending(propertyID string) error

	Create(property *model.Property) error
	GetByID(propertyID string) (*model.Property, error)
	List() ([]*model.Property, error)
	ListByAgent(agentID string) ([]*model.Property, error)
	Update(property *model.Property) error
	Delete(propertyID string) error
}

type BlogRepository interface {
	Create(blog *model.Blog) error
	GetByID(blogID string) (*model.Blog, error)
	List() ([]*model.Blog, error)
	Update(blog *model.Blog) error
	Delete(blogID string) error
}

type OTPRepository interface {
	Create(otp *model.PasswordOTP) error
	GetByCode(code string) (*model.PasswordOTP, error)
	// DeleteByIdentity returns the revoked codes so callers can evict
	// cache mirrors.
	DeleteByIdentity(kind model.IdentityKind, identityID string) ([]string, error)
	Delete(otpID string) error
}
