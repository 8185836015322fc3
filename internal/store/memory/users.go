// Package memory implementa repository.UserStore en memoria, para desarrollo y tests.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/dropDatabas3/efedauth/internal/clock"
	"github.com/dropDatabas3/efedauth/internal/domain/repository"
)

type UserStore struct {
	mu      sync.RWMutex
	clock   clock.Clock
	nextID  int64
	byID    map[int64]*repository.User
	byEmail map[string]int64
}

var _ repository.UserStore = (*UserStore)(nil)

func NewUserStore(c clock.Clock) *UserStore {
	return &UserStore{
		clock:   clock.OrSystem(c),
		byID:    make(map[int64]*repository.User),
		byEmail: make(map[string]int64),
	}
}

// emailKey replica el índice único sobre lower(email) de Postgres.
func emailKey(email string) string { return strings.ToLower(email) }

// clone evita que el llamador mute el estado interno.
func clone(u *repository.User) *repository.User {
	cp := *u
	if u.TwoFASecret != nil {
		s := *u.TwoFASecret
		cp.TwoFASecret = &s
	}
	return &cp
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[emailKey(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(s.byID[id]), nil
}

func (s *UserStore) FindByID(_ context.Context, id int64) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (s *UserStore) Insert(_ context.Context, in repository.CreateUserInput) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emailKey(in.Email)
	if _, dup := s.byEmail[key]; dup {
		return 0, repository.ErrConflict
	}
	s.nextID++
	u := &repository.User{
		ID:           s.nextID,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Role:         in.Role,
		CreatedAt:    s.clock.Now(),
	}
	s.byID[u.ID] = u
	s.byEmail[key] = u.ID
	return u.ID, nil
}

func (s *UserStore) UpdateFields(_ context.Context, id int64, f repository.UserFields) (int64, error) {
	if f.IsEmpty() {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return 0, nil
	}
	if f.PasswordHash != nil {
		u.PasswordHash = *f.PasswordHash
	}
	if f.Role != nil {
		u.Role = *f.Role
	}
	switch {
	case f.ClearTwoFASecret:
		u.TwoFASecret = nil
	case f.TwoFASecret != nil:
		v := *f.TwoFASecret
		u.TwoFASecret = &v
	}
	return 1, nil
}

func (s *UserStore) ExistsWhere(_ context.Context, p repository.UserPredicate) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.byID {
		if p.Email != "" && emailKey(u.Email) != emailKey(p.Email) {
			continue
		}
		if p.Role != 0 && u.Role != p.Role {
			continue
		}
		return true, nil
	}
	return false, nil
}
