package model

import (
	"time"

	"github.com/google/uuid"
)

// HealthMetric is one logged measurement. Value is free text, e.g. "120/80".
type HealthMetric struct {
	ID         uuid.UUID `json:"metric_id" db:"metric_id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	MetricType string    `json:"metric_type" db:"metric_type"`
	Value      string    `json:"value" db:"value"`
	Unit       *string   `json:"unit" db:"unit"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

type CreateHealthMetricRequest struct {
	MetricType string     `json:"metric_type" binding:"required"`
	Value      string     `json:"value" binding:"required"`
	Unit       *string    `json:"unit"`
	Timestamp  *time.Time `json:"timestamp"`
}

type UpdateHealthMetricRequest struct {
	MetricType *string    `json:"metric_type" binding:"omitempty,min=1"`
	Value      *string    `json:"value" binding:"omitempty,min=1"`
	Unit       *string    `json:"unit"`
	Timestamp  *time.Time `json:"timestamp"`
}
