package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/medihelp-api/internal/email"
	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository/memory"
	"github.com/jwalitptl/medihelp-api/pkg/auth"
	apperrors "github.com/jwalitptl/medihelp-api/pkg/errors"
	"github.com/jwalitptl/medihelp-api/pkg/logger"
	"github.com/jwalitptl/medihelp-api/pkg/security"
)

func newService(store *memory.Store) (*Service, auth.JWTService) {
	jwtSvc := auth.NewJWTService("test-secret", time.Hour, "medihelp")
	return NewService(store.Users(), jwtSvc, security.NewBcryptHasher(bcrypt.MinCost), email.Nop{}, logger.Nop()), jwtSvc
}

func TestRegisterCreatesUserAndProfile(t *testing.T) {
	store := memory.NewStore()
	svc, _ := newService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, &model.RegisterRequest{Email: "new@example.com", Password: "password123", Name: "New"})
	require.NoError(t, err)
	assert.NotEqual(t, "password123", user.PasswordHash)

	profile, err := store.Profiles().Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", *profile.Name)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := memory.NewStore()
	svc, _ := newService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, &model.RegisterRequest{Email: "dup@example.com", Password: "password123", Name: "A"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, &model.RegisterRequest{Email: "DUP@example.com", Password: "password123", Name: "B"})
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
}

func TestLoginIssuesTokenWithSubject(t *testing.T) {
	store := memory.NewStore()
	svc, jwtSvc := newService(store)
	ctx := context.Background()

	user, err := svc.Register(ctx, &model.RegisterRequest{Email: "login@example.com", Password: "password123", Name: "L"})
	require.NoError(t, err)

	tok, err := svc.Login(ctx, "login@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)

	claims, err := jwtSvc.ValidateToken(tok.AccessToken)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
	assert.Equal(t, "login@example.com", claims.Email)
}

func TestLoginBadCredentials(t *testing.T) {
	store := memory.NewStore()
	svc, _ := newService(store)
	ctx := context.Background()
	_, err := svc.Register(ctx, &model.RegisterRequest{Email: "a@example.com", Password: "password123", Name: "A"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "a@example.com", "wrong-password")
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))

	_, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
}
