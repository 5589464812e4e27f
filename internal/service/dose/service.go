package dose

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
	"github.com/jwalitptl/medihelp-api/internal/service/access"
	"github.com/jwalitptl/medihelp-api/internal/service/event"
	"github.com/jwalitptl/medihelp-api/pkg/errors"
)

type DoseServicer interface {
	Create(ctx context.Context, actor uuid.UUID, req *model.CreateDoseRequest) (*model.Dose, error)
	ListForMedicine(ctx context.Context, actor, userMedicineID uuid.UUID) ([]*model.Dose, error)
	Update(ctx context.Context, actor, id uuid.UUID, req *model.UpdateDoseRequest) (*model.Dose, error)
	Delete(ctx context.Context, actor, id uuid.UUID) error
}

type Service struct {
	repo   repository.DoseRepository
	access access.Resolver
	events event.Emitter
}

func NewService(repo repository.DoseRepository, resolver access.Resolver, events event.Emitter) *Service {
	return &Service{
		repo:   repo,
		access: resolver,
		events: events,
	}
}

func (s *Service) Create(ctx context.Context, actor uuid.UUID, req *model.CreateDoseRequest) (*model.Dose, error) {
	if req.DoseTime == nil {
		return nil, errors.Validation("dose_time is required")
	}
	if _, err := s.access.Resolve(ctx, actor, req.UserMedicineID, model.PermissionEditor); err != nil {
		return nil, err
	}

	dose := &model.Dose{
		UserMedicineID: req.UserMedicineID,
		DoseTime:       *req.DoseTime,
		Quantity:       model.DefaultDoseQuantity,
	}
	if req.Quantity != nil && strings.TrimSpace(*req.Quantity) != "" {
		dose.Quantity = *req.Quantity
	}
	if err := s.repo.Create(ctx, dose); err != nil {
		return nil, fmt.Errorf("failed to create dose: %w", err)
	}

	s.events.Emit(ctx, model.EventDoseCreated, dose)
	return dose, nil
}

// ListForMedicine returns the schedule ordered by time of day.
func (s *Service) ListForMedicine(ctx context.Context, actor, userMedicineID uuid.UUID) ([]*model.Dose, error) {
	if _, err := s.access.Resolve(ctx, actor, userMedicineID, model.PermissionViewer); err != nil {
		return nil, err
	}
	doses, err := s.repo.ListByUserMedicine(ctx, userMedicineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doses: %w", err)
	}
	return doses, nil
}

func (s *Service) Update(ctx context.Context, actor, id uuid.UUID, req *model.UpdateDoseRequest) (*model.Dose, error) {
	dose, err := s.authorized(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.DoseTime != nil {
		dose.DoseTime = *req.DoseTime
	}
	if req.Quantity != nil && strings.TrimSpace(*req.Quantity) != "" {
		dose.Quantity = *req.Quantity
	}
	if err := s.repo.Update(ctx, dose); err != nil {
		return nil, fmt.Errorf("failed to update dose: %w", err)
	}

	s.events.Emit(ctx, model.EventDoseUpdated, dose)
	return dose, nil
}

func (s *Service) Delete(ctx context.Context, actor, id uuid.UUID) error {
	dose, err := s.authorized(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete dose: %w", err)
	}

	s.events.Emit(ctx, model.EventDoseDeleted, map[string]string{
		"dose_id":          dose.ID.String(),
		"user_medicine_id": dose.UserMedicineID.String(),
	})
	return nil
}

// authorized loads the dose and requires editor on its parent medicine.
func (s *Service) authorized(ctx context.Context, actor, id uuid.UUID) (*model.Dose, error) {
	dose, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.Resolve(ctx, actor, dose.UserMedicineID, model.PermissionEditor); err != nil {
		return nil, err
	}
	return dose, nil
}
