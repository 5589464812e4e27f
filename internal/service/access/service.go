// Package access decides what an acting user may do with another user's
// medicines, based on the directed family edge actor -> owner.
package access

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
	"github.com/jwalitptl/medihelp-api/pkg/errors"
)

// Grant is the strongest right an actor holds over an owner's records.
type Grant int

const (
	GrantNone Grant = iota
	GrantViewer
	GrantEditor
	GrantOwner
)

func (g Grant) String() string {
	switch g {
	case GrantOwner:
		return "owner"
	case GrantEditor:
		return "editor"
	case GrantViewer:
		return "viewer"
	default:
		return "none"
	}
}

// Satisfies reports whether g is enough for the required permission.
func (g Grant) Satisfies(required model.Permission) bool {
	switch required {
	case model.PermissionViewer:
		return g >= GrantViewer
	case model.PermissionEditor:
		return g >= GrantEditor
	default:
		return false
	}
}

// EdgeLookup reports the permission on the edge actor -> owner, if any.
type EdgeLookup func() (model.Permission, bool)

// Decide is the pure permission decision. edge is consulted only when the
// actor is not the owner.
func Decide(ownerID, actorID uuid.UUID, edge EdgeLookup) Grant {
	if ownerID == actorID {
		return GrantOwner
	}
	if edge == nil {
		return GrantNone
	}
	perm, ok := edge()
	if !ok {
		return GrantNone
	}
	switch perm {
	case model.PermissionEditor:
		return GrantEditor
	case model.PermissionViewer:
		return GrantViewer
	default:
		return GrantNone
	}
}

// ForbiddenError is returned when the actor lacks the required permission.
func ForbiddenError(required model.Permission) *errors.AppError {
	return errors.Forbidden(fmt.Sprintf("Not authorized to perform this action. Requires '%s' permission.", required))
}

type Resolver interface {
	Resolve(ctx context.Context, actor, userMedicineID uuid.UUID, required model.Permission) (*model.UserMedicine, error)
	AuthorizeUser(ctx context.Context, actor, ownerID uuid.UUID, required model.Permission) error
}

type Service struct {
	userMedicines repository.UserMedicineRepository
	relationships repository.RelationshipRepository
}

func NewService(userMedicines repository.UserMedicineRepository, relationships repository.RelationshipRepository) *Service {
	return &Service{
		userMedicines: userMedicines,
		relationships: relationships,
	}
}

// Resolve loads the user-medicine and checks that actor holds required on it.
func (s *Service) Resolve(ctx context.Context, actor, userMedicineID uuid.UUID, required model.Permission) (*model.UserMedicine, error) {
	um, err := s.userMedicines.Get(ctx, userMedicineID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeUser(ctx, actor, um.UserID, required); err != nil {
		return nil, err
	}
	return um, nil
}

// AuthorizeUser checks that actor holds required over everything ownerID owns.
func (s *Service) AuthorizeUser(ctx context.Context, actor, ownerID uuid.UUID, required model.Permission) error {
	var lookupErr error
	grant := Decide(ownerID, actor, func() (model.Permission, bool) {
		edge, err := s.relationships.FindEdge(ctx, actor, ownerID)
		if err != nil {
			if errors.CodeOf(err) != errors.ErrNotFound {
				lookupErr = err
			}
			return "", false
		}
		return edge.Permission, true
	})
	if lookupErr != nil {
		return fmt.Errorf("failed to look up relationship: %w", lookupErr)
	}
	if !grant.Satisfies(required) {
		return ForbiddenError(required)
	}
	return nil
}
