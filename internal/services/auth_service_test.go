package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gendata/gendata-api/internal/dto"
	"github.com/gendata/gendata-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture(t *testing.T) (*AuthService, *memStore, *TokenIssuer) {
	t.Helper()
	users := newMemStore()
	hasher := testHasher()

	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &models.User{
		Login: "alice", HashedPassword: hash, Role: models.RoleAdmin, IsActive: true,
	}))
	require.NoError(t, users.Create(context.Background(), &models.User{
		Login: "dormant", HashedPassword: hash, Role: models.RoleClient, IsActive: false,
	}))

	tokens, err := NewTokenIssuer(testSecret, "HS256")
	require.NoError(t, err)
	return NewAuthService(users, hasher, tokens, 30*time.Minute), users, tokens
}

func TestAuthService_Authenticate(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	user, err := svc.Authenticate(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)
}

func TestAuthService_FailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	cases := []struct {
		name, login, password string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown login", "mallory", "s3cret"},
		{"empty login", "", "s3cret"},
		{"login differs in case", "Alice", "s3cret"},
		{"inactive account", "dormant", "s3cret"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user, err := svc.Authenticate(context.Background(), tc.login, tc.password)
			assert.Nil(t, user)
			assert.ErrorIs(t, err, ErrInvalidCredentials)
		})
	}
}

func TestAuthService_StoreFailureIsNotReportedAsBadCredentials(t *testing.T) {
	svc, users, _ := newAuthFixture(t)
	users.lookupErr = errors.New("connection reset")

	_, err := svc.Authenticate(context.Background(), "alice", "s3cret")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_LoginIssuesBearerToken(t *testing.T) {
	svc, _, tokens := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Login: "alice", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)

	sub, err := tokens.Verify(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)
}

func TestAuthService_LoginRejectsBadPassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Login: "alice", Password: "wrong"})
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
