package profile

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/medihelp-api/pkg/errors"
)

func TestMeAndUpdateMe(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Profiles())
	ctx := context.Background()
	id := store.AddUser("me@example.com", "Me")

	p, err := svc.Me(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Me", *p.Name)

	phone := "+15550001"
	updated, err := svc.UpdateMe(ctx, id, &model.UpdateProfileRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "+15550001", *updated.Phone)
	assert.Equal(t, "Me", *updated.Name)
	assert.NotNil(t, updated.UpdatedAt)

	_, err = svc.Me(ctx, uuid.New())
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestUpdateMePhoneCollision(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Profiles())
	ctx := context.Background()
	a := store.AddUser("a@example.com", "A")
	b := store.AddUser("b@example.com", "B")

	phone := "+15550002"
	_, err := svc.UpdateMe(ctx, a, &model.UpdateProfileRequest{Phone: &phone})
	require.NoError(t, err)
	_, err = svc.UpdateMe(ctx, b, &model.UpdateProfileRequest{Phone: &phone})
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
}

func TestListClampsLimit(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Profiles())
	for i := 0; i < 105; i++ {
		store.AddUser(fmt.Sprintf("u%d@example.com", i), "U")
	}

	page, err := svc.List(context.Background(), model.Pagination{Limit: 500})
	require.NoError(t, err)
	assert.Len(t, page, 100)

	rest, err := svc.List(context.Background(), model.Pagination{Skip: 100, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, rest, 5)
}
