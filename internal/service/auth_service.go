package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"civic-portal/internal/apperr"
	"civic-portal/internal/models"
	"civic-portal/internal/repository"
	"civic-portal/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// SessionTTL is the lifetime of an issued token and its cookie.
const SessionTTL = 24 * time.Hour

type AuthService struct {
	users         repository.UserRepository
	sessionSecret string
}

func NewAuthService(users repository.UserRepository, sessionSecret string) *AuthService {
	return &AuthService{users: users, sessionSecret: sessionSecret}
}

// Register creates a citizen account. Admins are provisioned out of band
// (see EnsureAdmin), never through self-registration.
func (a *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Invalid("email", "is not a valid address")
	}
	if name == "" {
		return nil, apperr.Invalid("name", "is required")
	}
	if len(password) < utils.MinPasswordLen {
		return nil, apperr.Invalid("password", "is too short")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return a.users.Create(ctx, email, name, models.RoleCitizen, hash)
}

func (a *AuthService) Login(ctx context.Context, email, password string) (token string, user *models.User, err error) {
	u, hash, err := a.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", nil, err
	}
	if u == nil || !u.Active {
		return "", nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(hash, password) {
		return "", nil, ErrInvalidCredentials
	}
	tok, err := utils.SignJWT(a.sessionSecret, u.ID, u.Role, SessionTTL)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

// EnsureAdmin creates the bootstrap admin account if the email is unused.
func (a *AuthService) EnsureAdmin(ctx context.Context, email, name, password string) (*models.User, error) {
	u, _, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return a.users.Create(ctx, strings.ToLower(strings.TrimSpace(email)), name, models.RoleAdmin, hash)
}
