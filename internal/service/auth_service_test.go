package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-portal/internal/apperr"
	"civic-portal/internal/models"
	"civic-portal/internal/repository/memory"
	"civic-portal/internal/utils"
)

func TestRegister_AlwaysCitizen(t *testing.T) {
	svc := NewAuthService(memory.NewUserStore(), "s")
	u, err := svc.Register(context.Background(), " Asha@Example.org ", "Asha", "longenough")
	require.NoError(t, err)
	assert.Equal(t, models.RoleCitizen, u.Role)
	assert.Equal(t, "asha@example.org", u.Email)
}

func TestRegister_Validation(t *testing.T) {
	svc := NewAuthService(memory.NewUserStore(), "s")
	ctx := context.Background()

	cases := map[string][3]string{
		"email":    {"not-an-email", "A", "longenough"},
		"name":     {"a@b.org", " ", "longenough"},
		"password": {"a@b.org", "A", "short"},
	}
	for field, in := range cases {
		_, err := svc.Register(ctx, in[0], in[1], in[2])
		var ve *apperr.ValidationError
		require.ErrorAs(t, err, &ve, field)
		assert.Equal(t, field, ve.Field)
	}

	_, err := svc.Register(ctx, "dup@b.org", "A", "longenough")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "DUP@b.org", "B", "longenough")
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestLogin(t *testing.T) {
	svc := NewAuthService(memory.NewUserStore(), "s")
	ctx := context.Background()
	_, err := svc.Register(ctx, "c@b.org", "C", "longenough")
	require.NoError(t, err)

	tok, u, err := svc.Login(ctx, "c@b.org", "longenough")
	require.NoError(t, err)
	claims, err := utils.ParseJWT("s", tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, models.RoleCitizen, claims.Role)

	_, _, err = svc.Login(ctx, "c@b.org", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@b.org", "longenough")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	svc := NewAuthService(memory.NewUserStore(), "s")
	ctx := context.Background()
	a, err := svc.EnsureAdmin(ctx, "admin@city.gov", "Admin", "adminpass")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, a.Role)

	again, err := svc.EnsureAdmin(ctx, "admin@city.gov", "Admin", "other")
	require.NoError(t, err)
	assert.Equal(t, a.ID, again.ID)
}
