package model

import (
	"time"

	"github.com/google/uuid"
)

const DefaultDoseQuantity = "1 pill"

// Dose is one scheduled intake of a user medicine.
type Dose struct {
	ID             uuid.UUID `json:"dose_id" db:"dose_id"`
	UserMedicineID uuid.UUID `json:"user_medicine_id" db:"user_medicine_id"`
	DoseTime       TimeOfDay `json:"dose_time" db:"dose_time"`
	Quantity       string    `json:"quantity" db:"quantity"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type CreateDoseRequest struct {
	UserMedicineID uuid.UUID  `json:"user_medicine_id" binding:"required"`
	DoseTime       *TimeOfDay `json:"dose_time" binding:"required"`
	Quantity       *string    `json:"quantity"`
}

type UpdateDoseRequest struct {
	DoseTime *TimeOfDay `json:"dose_time"`
	Quantity *string    `json:"quantity" binding:"omitempty,min=1"`
}
