package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusRetry     OutboxStatus = "retry"
	OutboxStatusProcessed OutboxStatus = "processed"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// Event types written to the outbox.
const (
	EventMedicineEnrolled    = "MEDICINE_ENROLLED"
	EventMedicineUpdated     = "MEDICINE_UPDATED"
	EventMedicineDeleted     = "MEDICINE_DELETED"
	EventDoseCreated         = "DOSE_CREATED"
	EventDoseUpdated         = "DOSE_UPDATED"
	EventDoseDeleted         = "DOSE_DELETED"
	EventRelationshipCreated = "RELATIONSHIP_CREATED"
	EventRelationshipUpdated = "RELATIONSHIP_UPDATED"
	EventRelationshipDeleted = "RELATIONSHIP_DELETED"
	EventFileProcessed       = "FILE_PROCESSED"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time      `db:"retry_at" json:"retry_at,omitempty"`
}
