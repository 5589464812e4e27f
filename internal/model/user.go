package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account. Its id is shared with the matching Profile.
type User struct {
	ID           uuid.UUID `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	Phone        *string   `json:"phone" db:"phone"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Gender       *string   `json:"gender" db:"gender"`
	DateOfBirth  *Date     `json:"date_of_birth" db:"date_of_birth"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Profile holds the public identity of a user.
type Profile struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        *string    `json:"name" db:"name"`
	Phone       *string    `json:"phone" db:"phone"`
	Gender      *string    `json:"gender" db:"gender"`
	DateOfBirth *Date      `json:"date_of_birth" db:"date_of_birth"`
	UpdatedAt   *time.Time `json:"updated_at" db:"updated_at"`
}

// UpdateProfileRequest represents profile update parameters
type UpdateProfileRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	Phone       *string `json:"phone"`
	Gender      *string `json:"gender"`
	DateOfBirth *Date   `json:"date_of_birth"`
}
