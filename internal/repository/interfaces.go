package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/medihelp-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		// CreateWithProfile inserts the user and its profile in one transaction.
		CreateWithProfile(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
	}

	ProfileRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Profile, error)
		GetByEmail(ctx context.Context, email string) (*model.Profile, error)
		List(ctx context.Context, page model.Pagination) ([]*model.Profile, error)
		Update(ctx context.Context, profile *model.Profile) error
	}

	MedicineRepository interface {
		Create(ctx context.Context, medicine *model.Medicine) error
		Get(ctx context.Context, id uuid.UUID) (*model.Medicine, error)
		FindByName(ctx context.Context, name string) (*model.Medicine, error)
	}

	UserMedicineRepository interface {
		Create(ctx context.Context, um *model.UserMedicine) error
		Get(ctx context.Context, id uuid.UUID) (*model.UserMedicine, error)
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.UserMedicine, error)
		Update(ctx context.Context, um *model.UserMedicine) error
		// Delete removes the enrollment and all of its doses.
		Delete(ctx context.Context, id uuid.UUID) error
	}

	DoseRepository interface {
		Create(ctx context.Context, dose *model.Dose) error
		Get(ctx context.Context, id uuid.UUID) (*model.Dose, error)
		ListByUserMedicine(ctx context.Context, userMedicineID uuid.UUID) ([]*model.Dose, error)
		Update(ctx context.Context, dose *model.Dose) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	RelationshipRepository interface {
		Create(ctx context.Context, rel *model.Relationship) error
		Get(ctx context.Context, id uuid.UUID) (*model.Relationship, error)
		// FindEdge returns the edge userID -> relatedUserID.
		FindEdge(ctx context.Context, userID, relatedUserID uuid.UUID) (*model.Relationship, error)
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Relationship, error)
		Update(ctx context.Context, rel *model.Relationship) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	HealthMetricRepository interface {
		Create(ctx context.Context, metric *model.HealthMetric) error
		Get(ctx context.Context, id uuid.UUID) (*model.HealthMetric, error)
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.HealthMetric, error)
		Update(ctx context.Context, metric *model.HealthMetric) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	FileRepository interface {
		Create(ctx context.Context, file *model.File) error
		Get(ctx context.Context, id uuid.UUID) (*model.File, error)
		GetByHash(ctx context.Context, hash string) (*model.File, error)
		ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.File, error)
	}

	ChatHistoryRepository interface {
		GetMedicineChat(ctx context.Context, userID, medicineID uuid.UUID) (*model.ChatConversation, error)
		SaveMedicineChat(ctx context.Context, conv *model.ChatConversation) error
		GetGeneralChat(ctx context.Context, userID uuid.UUID) (*model.ChatConversation, error)
		SaveGeneralChat(ctx context.Context, conv *model.ChatConversation) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error
		GetPendingEventsWithLock(ctx context.Context, tx *sqlx.Tx, limit int) ([]*model.OutboxEvent, error)
		UpdateStatusTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
