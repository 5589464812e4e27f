package medicine

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
	"github.com/jwalitptl/medihelp-api/internal/service/access"
	"github.com/jwalitptl/medihelp-api/internal/service/event"
	"github.com/jwalitptl/medihelp-api/pkg/errors"
	"github.com/jwalitptl/medihelp-api/pkg/openfda"
)

const msgOwnerOnly = "Only the owner can modify this medicine."

type MedicineServicer interface {
	Enroll(ctx context.Context, userID uuid.UUID, req *model.EnrollMedicineRequest) (*model.UserMedicine, error)
	List(ctx context.Context, actor, ownerID uuid.UUID) ([]*model.UserMedicine, error)
	Get(ctx context.Context, actor, id uuid.UUID) (*model.UserMedicine, error)
	Update(ctx context.Context, actor, id uuid.UUID, req *model.UpdateUserMedicineRequest) (*model.UserMedicine, error)
	Delete(ctx context.Context, actor, id uuid.UUID) error
	LookupLabel(ctx context.Context, name string) (*openfda.Label, error)
}

// LabelLookup fetches public drug label data.
type LabelLookup interface {
	Lookup(ctx context.Context, name string) (*openfda.Label, error)
}

type Service struct {
	catalogue     repository.MedicineRepository
	userMedicines repository.UserMedicineRepository
	access        access.Resolver
	labels        LabelLookup
	events        event.Emitter
}

func NewService(
	catalogue repository.MedicineRepository,
	userMedicines repository.UserMedicineRepository,
	resolver access.Resolver,
	labels LabelLookup,
	events event.Emitter,
) *Service {
	return &Service{
		catalogue:     catalogue,
		userMedicines: userMedicines,
		access:        resolver,
		labels:        labels,
		events:        events,
	}
}

// Enroll adds a medicine to userID's list, reusing the catalogue entry whose
// name matches case-insensitively or creating one.
func (s *Service) Enroll(ctx context.Context, userID uuid.UUID, req *model.EnrollMedicineRequest) (*model.UserMedicine, error) {
	name := strings.TrimSpace(req.MedicineName)
	if name == "" {
		return nil, errors.Validation("medicine_name is required")
	}

	med, err := s.findOrCreate(ctx, name, req.Manufacturer)
	if err != nil {
		return nil, err
	}

	um := &model.UserMedicine{
		UserID:     userID,
		MedicineID: med.ID,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Notes:      req.Notes,
		IsActive:   true,
	}
	if req.IsActive != nil {
		um.IsActive = *req.IsActive
	}
	if err := s.userMedicines.Create(ctx, um); err != nil {
		return nil, fmt.Errorf("failed to enroll medicine: %w", err)
	}
	um.Medicine = med

	s.events.Emit(ctx, model.EventMedicineEnrolled, um)
	return um, nil
}

func (s *Service) findOrCreate(ctx context.Context, name string, manufacturer *string) (*model.Medicine, error) {
	med, err := s.catalogue.FindByName(ctx, name)
	if err == nil {
		return med, nil
	}
	if errors.CodeOf(err) != errors.ErrNotFound {
		return nil, fmt.Errorf("failed to look up medicine: %w", err)
	}

	med = &model.Medicine{Name: name, Manufacturer: manufacturer}
	if err := s.catalogue.Create(ctx, med); err != nil {
		return nil, fmt.Errorf("failed to create medicine: %w", err)
	}
	return med, nil
}

// List returns ownerID's medicines when actor may view them.
func (s *Service) List(ctx context.Context, actor, ownerID uuid.UUID) ([]*model.UserMedicine, error) {
	if err := s.access.AuthorizeUser(ctx, actor, ownerID, model.PermissionViewer); err != nil {
		return nil, err
	}
	list, err := s.userMedicines.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, actor, id uuid.UUID) (*model.UserMedicine, error) {
	return s.access.Resolve(ctx, actor, id, model.PermissionViewer)
}

func (s *Service) Update(ctx context.Context, actor, id uuid.UUID, req *model.UpdateUserMedicineRequest) (*model.UserMedicine, error) {
	um, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.StartDate != nil {
		um.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		um.EndDate = req.EndDate
	}
	if req.Notes != nil {
		um.Notes = req.Notes
	}
	if req.IsActive != nil {
		um.IsActive = *req.IsActive
	}

	if err := s.userMedicines.Update(ctx, um); err != nil {
		return nil, fmt.Errorf("failed to update medicine: %w", err)
	}

	s.events.Emit(ctx, model.EventMedicineUpdated, um)
	return um, nil
}

// Delete removes the enrollment together with its doses.
func (s *Service) Delete(ctx context.Context, actor, id uuid.UUID) error {
	um, err := s.owned(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.userMedicines.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete medicine: %w", err)
	}

	s.events.Emit(ctx, model.EventMedicineDeleted, map[string]string{
		"id":          um.ID.String(),
		"user_id":     um.UserID.String(),
		"medicine_id": um.MedicineID.String(),
	})
	return nil
}

func (s *Service) owned(ctx context.Context, actor, id uuid.UUID) (*model.UserMedicine, error) {
	um, err := s.userMedicines.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if um.UserID != actor {
		return nil, errors.Forbidden(msgOwnerOnly)
	}
	return um, nil
}

func (s *Service) LookupLabel(ctx context.Context, name string) (*openfda.Label, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.Validation("name is required")
	}
	label, err := s.labels.Lookup(ctx, name)
	if err != nil {
		if stderrors.Is(err, openfda.ErrNoLabel) {
			return nil, errors.NotFoundMessage(fmt.Sprintf("No drug label found for '%s'.", name))
		}
		return nil, errors.Upstream("Failed to fetch drug label", err)
	}
	return label, nil
}
