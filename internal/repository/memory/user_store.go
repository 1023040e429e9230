package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"civic-portal/internal/apperr"
	"civic-portal/internal/models"
	"civic-portal/internal/repository"
)

type userRecord struct {
	user models.User
	hash string
}

type UserStore struct {
	mu      sync.RWMutex
	byID    map[string]*userRecord
	byEmail map[string]*userRecord
}

func NewUserStore() *UserStore {
	return &UserStore{byID: map[string]*userRecord{}, byEmail: map[string]*userRecord{}}
}

func (s *UserStore) Create(_ context.Context, email, name, role, passwordHash string) (*models.User, error) {
	email = strings.ToLower(email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[email]; taken {
		return nil, apperr.Invalid("email", "already registered")
	}
	now := time.Now().UTC()
	rec := &userRecord{
		user: models.User{
			ID: uuid.NewString(), Email: email, Name: name, Role: role,
			Active: true, CreatedAt: now, UpdatedAt: now,
		},
		hash: passwordHash,
	}
	s.byID[rec.user.ID] = rec
	s.byEmail[email] = rec
	u := rec.user
	return &u, nil
}

func (s *UserStore) GetByEmail(_ context.Context, email string) (*models.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, "", nil
	}
	u := rec.user
	return &u, rec.hash, nil
}

func (s *UserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	u := rec.user
	return &u, nil
}

var _ repository.UserRepository = (*UserStore)(nil)
