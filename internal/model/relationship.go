package model

import (
	"time"

	"github.com/google/uuid"
)

// Permission is the access level a relationship edge grants.
type Permission string

const (
	PermissionViewer Permission = "viewer"
	PermissionEditor Permission = "editor"
)

func (p Permission) Valid() bool {
	return p == PermissionViewer || p == PermissionEditor
}

// Relationship is a directed edge: UserID may act on RelatedUserID's records.
type Relationship struct {
	ID            uuid.UUID  `json:"relationship_id" db:"relationship_id"`
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	RelatedUserID uuid.UUID  `json:"related_user_id" db:"related_user_id"`
	Relation      string     `json:"relation" db:"relation"`
	Permission    Permission `json:"permission" db:"permission"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`

	RelatedUser *Profile `json:"related_user,omitempty" db:"related_user"`
}

type CreateRelationshipRequest struct {
	RelatedUserEmail string     `json:"related_user_email" binding:"required,email"`
	Relation         string     `json:"relation" binding:"required"`
	Permission       Permission `json:"permission" binding:"omitempty,permission"`
}

type UpdateRelationshipRequest struct {
	Relation   *string     `json:"relation" binding:"omitempty,min=1"`
	Permission *Permission `json:"permission" binding:"omitempty,permission"`
}
