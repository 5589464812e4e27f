package relationship

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/email"
	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
	"github.com/jwalitptl/medihelp-api/internal/service/event"
	"github.com/jwalitptl/medihelp-api/pkg/errors"
	"github.com/jwalitptl/medihelp-api/pkg/logger"
)

const (
	msgUserNotFound  = "User with the specified email not found."
	msgSelfRelation  = "You cannot add yourself as a family member."
	msgAlreadyLinked = "This user is already in your family list."
	msgNotCreator    = "Only the user who created this relationship can change it."
)

type RelationshipServicer interface {
	Add(ctx context.Context, actor uuid.UUID, req *model.CreateRelationshipRequest) (*model.Relationship, error)
	List(ctx context.Context, actor uuid.UUID) ([]*model.Relationship, error)
	Update(ctx context.Context, actor, id uuid.UUID, req *model.UpdateRelationshipRequest) (*model.Relationship, error)
	Delete(ctx context.Context, actor, id uuid.UUID) error
}

type Service struct {
	repo     repository.RelationshipRepository
	profiles repository.ProfileRepository
	mailer   email.Service
	events   event.Emitter
	logger   *logger.Logger
}

func NewService(
	repo repository.RelationshipRepository,
	profiles repository.ProfileRepository,
	mailer email.Service,
	events event.Emitter,
	logger *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		mailer:   mailer,
		events:   events,
		logger:   logger,
	}
}

// Add creates the edge actor -> user identified by req.RelatedUserEmail.
func (s *Service) Add(ctx context.Context, actor uuid.UUID, req *model.CreateRelationshipRequest) (*model.Relationship, error) {
	perm := req.Permission
	if perm == "" {
		perm = model.PermissionViewer
	}
	if !perm.Valid() {
		return nil, errors.Validation(fmt.Sprintf("invalid permission %q: must be viewer or editor", perm))
	}

	target, err := s.profiles.GetByEmail(ctx, req.RelatedUserEmail)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrNotFound {
			return nil, errors.NotFoundMessage(msgUserNotFound)
		}
		return nil, fmt.Errorf("failed to look up related user: %w", err)
	}
	if target.ID == actor {
		return nil, errors.Validation(msgSelfRelation)
	}

	_, err = s.repo.FindEdge(ctx, actor, target.ID)
	if err == nil {
		return nil, errors.Conflict(msgAlreadyLinked, nil)
	}
	if errors.CodeOf(err) != errors.ErrNotFound {
		return nil, fmt.Errorf("failed to check existing relationship: %w", err)
	}

	rel := &model.Relationship{
		UserID:        actor,
		RelatedUserID: target.ID,
		Relation:      req.Relation,
		Permission:    perm,
	}
	if err := s.repo.Create(ctx, rel); err != nil {
		if errors.CodeOf(err) == errors.ErrConflict {
			return nil, errors.Conflict(msgAlreadyLinked, err)
		}
		return nil, fmt.Errorf("failed to create relationship: %w", err)
	}
	rel.RelatedUser = target

	s.events.Emit(ctx, model.EventRelationshipCreated, rel)
	s.notify(ctx, actor, req.RelatedUserEmail, rel.Relation)
	return rel, nil
}

func (s *Service) notify(ctx context.Context, actor uuid.UUID, to, relation string) {
	name := "A MediHelp user"
	if p, err := s.profiles.Get(ctx, actor); err == nil && p.Name != nil && *p.Name != "" {
		name = *p.Name
	}
	if err := s.mailer.SendFamilyNotice(ctx, to, name, relation); err != nil {
		s.logger.Error(err, "failed to send family notice", "actor", actor.String())
	}
}

func (s *Service) List(ctx context.Context, actor uuid.UUID) ([]*model.Relationship, error) {
	rels, err := s.repo.ListByUser(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	return rels, nil
}

func (s *Service) Update(ctx context.Context, actor, id uuid.UUID, req *model.UpdateRelationshipRequest) (*model.Relationship, error) {
	rel, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Relation != nil {
		rel.Relation = *req.Relation
	}
	if req.Permission != nil {
		if !req.Permission.Valid() {
			return nil, errors.Validation(fmt.Sprintf("invalid permission %q: must be viewer or editor", *req.Permission))
		}
		rel.Permission = *req.Permission
	}

	if err := s.repo.Update(ctx, rel); err != nil {
		return nil, fmt.Errorf("failed to update relationship: %w", err)
	}

	s.events.Emit(ctx, model.EventRelationshipUpdated, rel)
	return rel, nil
}

func (s *Service) Delete(ctx context.Context, actor, id uuid.UUID) error {
	rel, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete relationship: %w", err)
	}

	s.events.Emit(ctx, model.EventRelationshipDeleted, map[string]string{
		"relationship_id": rel.ID.String(),
		"user_id":         rel.UserID.String(),
		"related_user_id": rel.RelatedUserID.String(),
	})
	return nil
}

func (s *Service) owned(ctx context.Context, actor, id uuid.UUID) (*model.Relationship, error) {
	rel, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rel.UserID != actor {
		return nil, errors.Forbidden(msgNotCreator)
	}
	return rel, nil
}
