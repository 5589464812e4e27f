package healthmetric

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/medihelp-api/pkg/errors"
)

func TestCreateDefaultsTimestampAndListsNewestFirst(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.HealthMetrics())
	fixed := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	user := uuid.New()
	ctx := context.Background()

	m, err := svc.Create(ctx, user, &model.CreateHealthMetricRequest{MetricType: "blood_pressure", Value: "120/80"})
	require.NoError(t, err)
	assert.Equal(t, fixed, m.Timestamp)

	later := fixed.Add(time.Hour)
	_, err = svc.Create(ctx, user, &model.CreateHealthMetricRequest{MetricType: "weight", Value: "70", Timestamp: &later})
	require.NoError(t, err)

	list, err := svc.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "weight", list[0].MetricType)
}

func TestUpdateDeleteOwnerOnly(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.HealthMetrics())
	owner, other := uuid.New(), uuid.New()
	ctx := context.Background()

	m, err := svc.Create(ctx, owner, &model.CreateHealthMetricRequest{MetricType: "pulse", Value: "72"})
	require.NoError(t, err)

	v := "80"
	_, err = svc.Update(ctx, other, m.ID, &model.UpdateHealthMetricRequest{Value: &v})
	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(err))

	updated, err := svc.Update(ctx, owner, m.ID, &model.UpdateHealthMetricRequest{Value: &v})
	require.NoError(t, err)
	assert.Equal(t, "80", updated.Value)
	assert.Equal(t, "pulse", updated.MetricType)

	assert.Equal(t, apperrors.ErrForbidden, apperrors.CodeOf(svc.Delete(ctx, other, m.ID)))
	require.NoError(t, svc.Delete(ctx, owner, m.ID))
	assert.Equal(t, apperrors.ErrNotFound, apperrors.CodeOf(svc.Delete(ctx, owner, m.ID)))
}
