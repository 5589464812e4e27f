package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository/memory"
	"github.com/jwalitptl/medihelp-api/pkg/logger"
)

func TestEmitWritesOutboxEvent(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Outbox(), logger.Nop())

	id := uuid.New()
	svc.Emit(context.Background(), model.EventDoseCreated, map[string]string{"dose_id": id.String()})

	events := store.Outbox().Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventDoseCreated, events[0].EventType)
	assert.Equal(t, model.OutboxStatusPending, events[0].Status)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, id.String(), payload["dose_id"])
}

type failingOutbox struct{ calls int }

func (f *failingOutbox) Create(context.Context, *model.OutboxEvent) error {
	f.calls++
	return errors.New("connection reset")
}
func (f *failingOutbox) WithTx(context.Context, func(*sqlx.Tx) error) error { return nil }
func (f *failingOutbox) GetPendingEventsWithLock(context.Context, *sqlx.Tx, int) ([]*model.OutboxEvent, error) {
	return nil, nil
}
func (f *failingOutbox) UpdateStatusTx(context.Context, *sqlx.Tx, uuid.UUID, model.OutboxStatus, *string, *time.Time) error {
	return nil
}
func (f *failingOutbox) DeleteProcessedBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func TestEmitSwallowsFailures(t *testing.T) {
	repo := &failingOutbox{}
	svc := NewService(repo, logger.Nop())

	assert.NotPanics(t, func() {
		svc.Emit(context.Background(), model.EventMedicineDeleted, map[string]string{})
	})
	assert.Equal(t, 1, repo.calls)
}

func TestEmitSkipsUnmarshalablePayload(t *testing.T) {
	repo := &failingOutbox{}
	svc := NewService(repo, logger.Nop())

	svc.Emit(context.Background(), model.EventFileProcessed, make(chan int))
	assert.Zero(t, repo.calls)
}
