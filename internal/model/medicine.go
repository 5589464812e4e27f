package model

import (
	"time"

	"github.com/google/uuid"
)

// Medicine is an entry of the shared catalogue.
type Medicine struct {
	ID           uuid.UUID `json:"medicine_id" db:"medicine_id"`
	Name         string    `json:"name" db:"name"`
	GenericName  *string   `json:"generic_name" db:"generic_name"`
	Manufacturer *string   `json:"manufacturer" db:"manufacturer"`
	Usage        *string   `json:"usage,omitempty" db:"usage"`
	Dosage       *string   `json:"dosage,omitempty" db:"dosage"`
	SideEffects  *string   `json:"side_effects,omitempty" db:"side_effects"`
	Interactions *string   `json:"interactions,omitempty" db:"interactions"`
	Precautions  *string   `json:"precautions,omitempty" db:"precautions"`
	Storage      *string   `json:"storage,omitempty" db:"storage"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// UserMedicine links a profile (the owner) to a catalogue medicine.
type UserMedicine struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	MedicineID uuid.UUID `json:"medicine_id" db:"medicine_id"`
	StartDate  *Date     `json:"start_date" db:"start_date"`
	EndDate    *Date     `json:"end_date" db:"end_date"`
	Notes      *string   `json:"notes" db:"notes"`
	IsActive   bool      `json:"is_active" db:"is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`

	Medicine *Medicine `json:"medicine,omitempty" db:"medicine"`
}

// EnrollMedicineRequest adds a medicine to the caller's list.
type EnrollMedicineRequest struct {
	MedicineName string  `json:"medicine_name" binding:"required"`
	Manufacturer *string `json:"manufacturer"`
	StartDate    *Date   `json:"start_date"`
	EndDate      *Date   `json:"end_date"`
	Notes        *string `json:"notes"`
	IsActive     *bool   `json:"is_active"`
}

type UpdateUserMedicineRequest struct {
	StartDate *Date   `json:"start_date"`
	EndDate   *Date   `json:"end_date"`
	Notes     *string `json:"notes"`
	IsActive  *bool   `json:"is_active"`
}
