package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/efedauth/internal/audit"
	"github.com/dropDatabas3/efedauth/internal/domain/repository"
	"github.com/dropDatabas3/efedauth/internal/domain/types"
	"github.com/dropDatabas3/efedauth/internal/observability/logger"
	"github.com/dropDatabas3/efedauth/internal/session"
	"github.com/dropDatabas3/efedauth/internal/util"
)

// CreateUser da de alta un usuario. Solo admin o superior puede crear, y solo
// owner puede crear usuarios con rol admin o superior. El techo se evalúa con
// el rol actual del usuario en el store.
func (m *Manager) CreateUser(ctx context.Context, sess *session.Session, email, plain string, role types.Role) (*UserView, error) {
	cur, err := m.requireUser(ctx, sess)
	if err != nil {
		return nil, err
	}
	if !cur.Role.AtLeast(types.RoleAdmin) {
		return nil, fmt.Errorf("%w: only admins can create users", ErrForbidden)
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: invalid role %d", ErrValidation, role)
	}
	if cur.Role < types.RoleOwner && role >= types.RoleAdmin {
		return nil, fmt.Errorf("%w: cannot create user with role %s", ErrForbidden, role.Name())
	}

	u, err := m.insertUser(ctx, email, plain, role, true)
	if err != nil {
		return nil, err
	}
	m.metrics.UserCreated(role.Name())
	audit.Log(ctx, audit.UserCreated, logger.UserID(u.ID), logger.Role(role.Name()),
		logger.Email(util.MaskEmail(email)), logger.Int("by", int(cur.ID)))
	return NewUserView(u), nil
}

// SeedOwner crea el owner inicial. Falla con ErrConflict si ya existe un owner.
// Chequeo e insert no son atómicos: es un bootstrap de una sola vez.
func (m *Manager) SeedOwner(ctx context.Context, email, plain string) (*UserView, error) {
	exists, err := m.users.ExistsWhere(ctx, repository.UserPredicate{Role: types.RoleOwner})
	if err != nil {
		return nil, fmt.Errorf("auth: check owner: %w", err)
	}
	if exists {
		return nil, ErrOwnerExists
	}

	u, err := m.insertUser(ctx, email, plain, types.RoleOwner, false)
	if errors.Is(err, ErrEmailTaken) {
		return nil, err
	}
	if errors.Is(err, ErrConflict) {
		return nil, ErrOwnerExists
	}
	if err != nil {
		return nil, err
	}
	m.metrics.UserCreated(types.RoleOwner.Name())
	audit.Log(ctx, audit.OwnerSeeded, logger.UserID(u.ID), logger.Email(util.MaskEmail(email)))
	return NewUserView(u), nil
}

// insertUser valida, hashea e inserta. checkEmail consulta duplicados antes de
// hashear.
func (m *Manager) insertUser(ctx context.Context, email, plain string, role types.Role, checkEmail bool) (*repository.User, error) {
	if !util.ValidEmail(email) {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if checkEmail {
		taken, err := m.users.ExistsWhere(ctx, repository.UserPredicate{Email: email})
		if err != nil {
			return nil, fmt.Errorf("auth: check email: %w", err)
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}
	if err := m.ValidatePassword(plain); err != nil {
		return nil, err
	}

	hash, err := m.hasher.Hash(plain)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	id, err := m.users.Insert(ctx, repository.CreateUserInput{Email: email, PasswordHash: hash, Role: role})
	if errors.Is(err, repository.ErrConflict) {
		taken, _ := m.users.ExistsWhere(ctx, repository.UserPredicate{Email: email})
		if taken {
			return nil, ErrEmailTaken
		}
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("auth: insert user: %w", err)
	}
	u, err := m.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("auth: reload user: %w", err)
	}
	return u, nil
}

// ValidatePassword aplica la política y la blacklist.
func (m *Manager) ValidatePassword(plain string) error {
	if ok, reasons := m.policy.Validate(plain); !ok {
		return &PolicyError{Reasons: reasons}
	}
	if m.blacklist.Contains(plain) {
		return &PolicyError{Reasons: []string{"blacklisted"}}
	}
	return nil
}
