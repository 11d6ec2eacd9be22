package service

import (
	"errors"

	"go.uber.org/zap"

	"realty-service/internal/model"
	"realty-service/internal/repository"
	rediscache "realty-service/internal/repository/redis"
	"realty-service/internal/util"
)

// IdentityResolver maps an email address to exactly one identity
// record. The probe order is fixed: admins, then users, then agents.
// The first match wins; later tables are not consulted.
type IdentityResolver struct {
	admins repository.AdminRepository
	users  repository.UserRepository
	agents repository.AgentRepository
	lookup *rediscache.LookupCache
}

func NewIdentityResolver(
	admins repository.AdminRepository,
	users repository.UserRepository,
	agents repository.AgentRepository,
	lookup *rediscache.LookupCache,
) *IdentityResolver {
	return &IdentityResolver{
		admins: admins,
		users:  users,
		agents: agents,
		lookup: lookup,
	}
}

// Resolve returns the identity the email belongs to, or ErrNotFound
// when no table has it. A cached kind hint only short-circuits the
// probe order; the hit is always re-verified against the store.
func (r *IdentityResolver) Resolve(email string) (*model.IdentityRef, error) {
	if r.lookup != nil {
		if kind, err := r.lookup.GetIdentityKind(email); err == nil {
			if ref, err := r.resolveKind(kind, email); err == nil {
				return ref, nil
			}
			// Stale hint: fall through to the full probe.
			_ = r.lookup.DeleteIdentityKind(email)
		}
	}

	for _, kind := range []model.IdentityKind{model.KindAdmin, model.KindUser, model.KindAgent} {
		ref, err := r.resolveKind(kind, email)
		if err == nil {
			if r.lookup != nil {
				if cacheErr := r.lookup.SetIdentityKind(email, kind); cacheErr != nil {
					util.Debug("Failed to cache identity kind", zap.Error(cacheErr))
				}
			}
			return ref, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}

	return nil, ErrNotFound
}

func (r *IdentityResolver) resolveKind(kind model.IdentityKind, email string) (*model.IdentityRef, error) {
	switch kind {
	case model.KindAdmin:
		admin, err := r.admins.GetByEmail(email)
		if err != nil {
			return nil, err
		}
		return &model.IdentityRef{Kind: model.KindAdmin, ID: admin.AdminID, Email: admin.Email}, nil
	case model.KindUser:
		user, err := r.users.GetByEmail(email)
		if err != nil {
			return nil, err
		}
		return &model.IdentityRef{Kind: model.KindUser, ID: user.UserID, Email: user.Email}, nil
	case model.KindAgent:
		agent, err := r.agents.GetByEmail(email)
		if err != nil {
			return nil, err
		}
		return &model.IdentityRef{Kind: model.KindAgent, ID: agent.AgentID, Email: agent.Email}, nil
	default:
		return nil, repository.ErrNotFound
	}
}
