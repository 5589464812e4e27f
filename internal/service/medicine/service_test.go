package medicine

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
	"github.com/jwalitptl/medihelp-api/internal/service/access"
	"github.com/jwalitptl/medihelp-api/internal/service/event"
	apperrors "github.com/jwalitptl/medihelp-api/pkg/errors"
	"github.com/jwalitptl/medihelp-api/pkg/logger"
	"github.com/jwalitptl/medihelp-api/pkg/openfda"
)

type mockLabels struct{ mock.Mock }

func (m *mockLabels) Lookup(ctx context.Context, name string) (*openfda.Label, error) {
	args := m.Called(name)
	label, _ := args.Get(0).(*openfda.Label)
	return label, args.Error(1)
}

type fixture struct {
	store  *memory.Store
	labels *mockLabels
	svc    *Service
	owner  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	labels := &mockLabels{}
	resolver := access.NewService(store.UserMedicines(), store.Relationships())
	svc := NewService(store.Medicines(), store.UserMedicines(), resolver, labels,
		event.NewService(store.Outbox(), logger.Nop()))
	return &fixture{
		store:  store,
		labels: labels,
		svc:    svc,
		owner:  store.AddUser("owner@example.com", "Owner"),
	}
}

func TestEnrollReusesCatalogueCaseInsensitively(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Enroll(ctx, f.owner, &model.EnrollMedicineRequest{MedicineName: "Aspirin"})
	require.NoError(t, err)
	second, err := f.svc.Enroll(ctx, f.owner, &model.EnrollMedicineRequest{MedicineName: "aspirin"})
	require.NoError(t, err)

	assert.Equal(t, 1, f.store.MedicineCount())
	assert.Equal(t, first.MedicineID, second.MedicineID)
	assert.NotEqual(t, first.ID, second.ID)
	require.NotNil(t, second.Medicine)
	assert.Equal(t, "Aspirin", second.Medicine.Name)
	assert.True(t, second.IsActive)
}

func TestEnrollCreatesCatalogueEntryWithManufacturer(t *testing.T) {
	f := newFixture(t)
	maker := "Bayer"
	inactive := false

	um, err := f.svc.Enroll(context.Background(), f.owner, &model.EnrollMedicineRequest{
		MedicineName: "Ibuprofen", Manufacturer: &maker, IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.False(t, um.IsActive)
	require.NotNil(t, um.Medicine.Manufacturer)
	assert.Equal(t, "Bayer", *um.Medicine.Manufacturer)

	events := f.store.Outbox().Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventMedicineEnrolled, events[0].EventType)
}

func TestListRequiresViewerEdge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Enroll(ctx, f.owner, &model.EnrollMedicineRequest{MedicineName: "Aspirin"})
	require.NoError(t, err)

	stranger := f.store.AddUser("stranger@example.com", "Stranger")
	_, err = f.svc.List(ctx, stranger, f.owner)
	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(err))

	require.NoError(t, f.store.Relationships().Create(ctx, &model.Relationship{
		UserID: stranger, RelatedUserID: f.owner, Relation: "Son", Permission: model.PermissionViewer,
	}))
	list, err := f.svc.List(ctx, stranger, f.owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestUpdateAndDeleteOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	um, err := f.svc.Enroll(ctx, f.owner, &model.EnrollMedicineRequest{MedicineName: "Aspirin"})
	require.NoError(t, err)

	editor := f.store.AddUser("editor@example.com", "Editor")
	require.NoError(t, f.store.Relationships().Create(ctx, &model.Relationship{
		UserID: editor, RelatedUserID: f.owner, Relation: "Son", Permission: model.PermissionEditor,
	}))

	notes := "after breakfast"
	_, err = f.svc.Update(ctx, editor, um.ID, &model.UpdateUserMedicineRequest{Notes: &notes})
	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(err))

	updated, err := f.svc.Update(ctx, f.owner, um.ID, &model.UpdateUserMedicineRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "after breakfast", *updated.Notes)

	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(f.svc.Delete(ctx, editor, um.ID)))
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(f.svc.Delete(ctx, f.owner, uuid.New())))
}

func TestDeleteCascadesToDoses(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	um, err := f.svc.Enroll(ctx, f.owner, &model.EnrollMedicineRequest{MedicineName: "Aspirin"})
	require.NoError(t, err)
	for _, h := range []int{8, 20} {
		require.NoError(t, f.store.Doses().Create(ctx, &model.Dose{UserMedicineID: um.ID, DoseTime: model.TimeOfDay{Hour: h}}))
	}
	require.Equal(t, 2, f.store.DoseCount(um.ID))

	require.NoError(t, f.svc.Delete(ctx, f.owner, um.ID))
	assert.Zero(t, f.store.DoseCount(um.ID))
	_, err = f.svc.Get(ctx, f.owner, um.ID)
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))
}

func TestLookupLabel(t *testing.T) {
	f := newFixture(t)
	f.labels.On("Lookup", "Advil").Return(&openfda.Label{Name: "Advil", Purpose: "Pain reliever"}, nil)
	f.labels.On("Lookup", "Nothing").Return(nil, openfda.ErrNoLabel)
	f.labels.On("Lookup", "Broken").Return(nil, errors.New("timeout"))

	label, err := f.svc.LookupLabel(context.Background(), " Advil ")
	require.NoError(t, err)
	assert.Equal(t, "Pain reliever", label.Purpose)

	_, err = f.svc.LookupLabel(context.Background(), "Nothing")
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(err))

	_, err = f.svc.LookupLabel(context.Background(), "Broken")
	assert.Equal(t, apperrors.ErrUpstream, apperrors.CodeOf(err))
}
