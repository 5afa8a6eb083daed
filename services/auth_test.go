package services

import (
	"context"
	"testing"
	"time"

	"github.com/jayansh1208/marketly/apperror"
	"github.com/jayansh1208/marketly/models"
	"github.com/jayansh1208/marketly/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth() *AuthService {
	return NewAuthService(memory.NewUserRepository(), memory.NewTokenBlacklist(), "test-secret", time.Hour)
}

func TestRegisterAndLogin(t *testing.T) {
	auth := newAuth()
	ctx := context.Background()

	user, token, err := auth.Register(ctx, RegisterInput{Name: " Ana ", Email: "Ana@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEqual(t, "secret1", user.Password)
	assert.NotEmpty(t, token)

	principal, err := auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.False(t, principal.IsAdmin())

	_, _, err = auth.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	var conflict *apperror.ConflictError
	assert.ErrorAs(t, err, &conflict)

	logged, _, err := auth.Login(ctx, LoginInput{Email: "ANA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	var authn *apperror.AuthenticationError
	_, _, err = auth.Login(ctx, LoginInput{Email: "ana@example.com", Password: "wrong"})
	assert.ErrorAs(t, err, &authn)
	_, _, err = auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorAs(t, err, &authn)
}

func TestRegisterValidation(t *testing.T) {
	_, _, err := newAuth().Register(context.Background(), RegisterInput{Name: "", Email: "not-an-email", Password: "123"})

	fields := apperror.Fields(err)
	require.Len(t, fields, 3)
	assert.Equal(t, "Name is required", fields[0].Message)
	assert.Equal(t, "Please provide a valid email", fields[1].Message)
	assert.Equal(t, "Password must be at least 6 characters", fields[2].Message)
}

func TestLogoutRevokesToken(t *testing.T) {
	auth := newAuth()
	ctx := context.Background()
	_, token, err := auth.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, token))

	_, err = auth.Authenticate(ctx, token)
	var authn *apperror.AuthenticationError
	require.ErrorAs(t, err, &authn)
	assert.Equal(t, "Token has been blacklisted", authn.Message)
}

func TestRejectsForeignAndExpiredTokens(t *testing.T) {
	auth := newAuth()
	ctx := context.Background()
	user, _, err := auth.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	other := NewAuthService(memory.NewUserRepository(), memory.NewTokenBlacklist(), "other-secret", time.Hour)
	foreign, err := other.issue(user)
	require.NoError(t, err)

	var authn *apperror.AuthenticationError
	_, err = auth.Authenticate(ctx, foreign)
	assert.ErrorAs(t, err, &authn)

	auth.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := auth.issue(user)
	require.NoError(t, err)
	auth.now = time.Now
	_, err = auth.Authenticate(ctx, expired)
	assert.ErrorAs(t, err, &authn)

	_, err = auth.Authenticate(ctx, "garbage")
	assert.ErrorAs(t, err, &authn)
}

func TestMe(t *testing.T) {
	auth := newAuth()
	ctx := context.Background()
	user, _, err := auth.Register(ctx, RegisterInput{Name: "Ana", Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	me, err := auth.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", me.Email)
}
