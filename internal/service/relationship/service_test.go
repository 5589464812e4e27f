package relationship

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository/memory"
	"github.com/jwalitptl/medihelp-api/internal/service/event"
	apperrors "github.com/jwalitptl/medihelp-api/pkg/errors"
	"github.com/jwalitptl/medihelp-api/pkg/logger"
)

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendWelcome(ctx context.Context, to, name string) error {
	return m.Called(to, name).Error(0)
}

func (m *mockMailer) SendFamilyNotice(ctx context.Context, to, fromName, relation string) error {
	return m.Called(to, fromName, relation).Error(0)
}

func (m *mockMailer) SendCustom(ctx context.Context, to, subject, content string) error {
	return m.Called(to, subject, content).Error(0)
}

type fixture struct {
	store  *memory.Store
	mailer *mockMailer
	svc    *Service
	alice  uuid.UUID
	bob    uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	mailer := &mockMailer{}
	return &fixture{
		store:  store,
		mailer: mailer,
		svc: NewService(store.Relationships(), store.Profiles(), mailer,
			event.NewService(store.Outbox(), logger.Nop()), logger.Nop()),
		alice: store.AddUser("alice@example.com", "Alice"),
		bob:   store.AddUser("bob@example.com", "Bob"),
	}
}

func TestAddCreatesEdgeWithDefaultViewer(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendFamilyNotice", "BOB@example.com", "Alice", "Brother").Return(nil).Once()

	rel, err := f.svc.Add(context.Background(), f.alice, &model.CreateRelationshipRequest{
		RelatedUserEmail: "BOB@example.com",
		Relation:         "Brother",
	})
	require.NoError(t, err)
	assert.Equal(t, f.alice, rel.UserID)
	assert.Equal(t, f.bob, rel.RelatedUserID)
	assert.Equal(t, model.PermissionViewer, rel.Permission)
	require.NotNil(t, rel.RelatedUser)
	assert.Equal(t, f.bob, rel.RelatedUser.ID)

	events := f.store.Outbox().Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventRelationshipCreated, events[0].EventType)
	f.mailer.AssertExpectations(t)
}

func TestAddMailFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendFamilyNotice", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))

	_, err := f.svc.Add(context.Background(), f.alice, &model.CreateRelationshipRequest{
		RelatedUserEmail: "bob@example.com", Relation: "Brother", Permission: model.PermissionEditor,
	})
	assert.NoError(t, err)
}

func TestAddUnknownEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Add(context.Background(), f.alice, &model.CreateRelationshipRequest{
		RelatedUserEmail: "nobody@example.com", Relation: "Friend",
	})
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
	assert.Equal(t, "User with the specified email not found.", err.Error())
}

func TestAddSelf(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Add(context.Background(), f.alice, &model.CreateRelationshipRequest{
		RelatedUserEmail: "alice@example.com", Relation: "Me",
	})
	assert.Equal(t, apperrors.ErrValidation, apperrors.CodeOf(err))
	assert.Equal(t, "You cannot add yourself as a family member.", err.Error())
}

func TestAddDuplicate(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendFamilyNotice", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	req := &model.CreateRelationshipRequest{RelatedUserEmail: "bob@example.com", Relation: "Brother"}

	_, err := f.svc.Add(context.Background(), f.alice, req)
	require.NoError(t, err)
	_, err = f.svc.Add(context.Background(), f.alice, req)
	assert.Equal(t, apperrors.ErrConflict, apperrors.CodeOf(err))
	assert.Equal(t, "This user is already in your family list.", err.Error())
}

func TestAddReverseEdgeIsIndependent(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendFamilyNotice", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.Add(context.Background(), f.alice, &model.CreateRelationshipRequest{RelatedUserEmail: "bob@example.com", Relation: "Brother"})
	require.NoError(t, err)
	_, err = f.svc.Add(context.Background(), f.bob, &model.CreateRelationshipRequest{RelatedUserEmail: "alice@example.com", Relation: "Sister"})
	assert.NoError(t, err)
}

func TestAddInvalidPermission(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Add(context.Background(), f.alice, &model.CreateRelationshipRequest{
		RelatedUserEmail: "bob@example.com", Relation: "Brother", Permission: "owner",
	})
	assert.Equal(t, apperrors.ErrValidation, apperrors.CodeOf(err))
}

func TestUpdateAndDeleteCreatorOnly(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendFamilyNotice", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	rel, err := f.svc.Add(context.Background(), f.alice, &model.CreateRelationshipRequest{RelatedUserEmail: "bob@example.com", Relation: "Brother"})
	require.NoError(t, err)

	editor := model.PermissionEditor
	_, err = f.svc.Update(context.Background(), f.bob, rel.ID, &model.UpdateRelationshipRequest{Permission: &editor})
	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(err))

	updated, err := f.svc.Update(context.Background(), f.alice, rel.ID, &model.UpdateRelationshipRequest{Permission: &editor})
	require.NoError(t, err)
	assert.Equal(t, model.PermissionEditor, updated.Permission)
	assert.Equal(t, "Brother", updated.Relation)

	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(f.svc.Delete(context.Background(), f.bob, rel.ID)))
	require.NoError(t, f.svc.Delete(context.Background(), f.alice, rel.ID))
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(f.svc.Delete(context.Background(), f.alice, rel.ID)))

	rels, err := f.svc.List(context.Background(), f.alice)
	require.NoError(t, err)
	assert.Empty(t, rels)
}

func TestListEmbedsRelatedProfile(t *testing.T) {
	f := newFixture(t)
	f.mailer.On("SendFamilyNotice", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	_, err := f.svc.Add(context.Background(), f.alice, &model.CreateRelationshipRequest{RelatedUserEmail: "bob@example.com", Relation: "Brother"})
	require.NoError(t, err)

	rels, err := f.svc.List(context.Background(), f.alice)
	require.NoError(t, err)
	require.Len(t, rels, 1)
	require.NotNil(t, rels[0].RelatedUser)
	assert.Equal(t, "Bob", *rels[0].RelatedUser.Name)
}
