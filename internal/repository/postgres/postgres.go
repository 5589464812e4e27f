package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/medihelp-api/internal/repository"
)

// Repositories bundles every store over one connection pool.
type Repositories struct {
	Users         repository.UserRepository
	Profiles      repository.ProfileRepository
	Medicines     repository.MedicineRepository
	UserMedicines repository.UserMedicineRepository
	Doses         repository.DoseRepository
	Relationships repository.RelationshipRepository
	HealthMetrics repository.HealthMetricRepository
	Files         repository.FileRepository
	ChatHistories repository.ChatHistoryRepository
	Outbox        repository.OutboxRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	base := NewBaseRepository(db)
	return &Repositories{
		Users:         NewUserRepository(base),
		Profiles:      NewProfileRepository(base),
		Medicines:     NewMedicineRepository(base),
		UserMedicines: NewUserMedicineRepository(base),
		Doses:         NewDoseRepository(base),
		Relationships: NewRelationshipRepository(base),
		HealthMetrics: NewHealthMetricRepository(base),
		Files:         NewFileRepository(base),
		ChatHistories: NewChatHistoryRepository(base),
		Outbox:        NewOutboxRepository(base),
	}
}
