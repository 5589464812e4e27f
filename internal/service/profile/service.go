package profile

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
	"github.com/jwalitptl/medihelp-api/pkg/errors"
)

type Service struct {
	repo repository.ProfileRepository
}

func NewService(repo repository.ProfileRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	return s.repo.Get(ctx, userID)
}

// List pages through all profiles; the limit is clamped to 1..100.
func (s *Service) List(ctx context.Context, page model.Pagination) ([]*model.Profile, error) {
	page.Normalize()
	profiles, err := s.repo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.Profile, error) {
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = req.Name
	}
	if req.Phone != nil {
		p.Phone = req.Phone
	}
	if req.Gender != nil {
		p.Gender = req.Gender
	}
	if req.DateOfBirth != nil {
		p.DateOfBirth = req.DateOfBirth
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.CodeOf(err) == errors.ErrConflict {
			return nil, errors.Conflict("Phone number already in use", err)
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return p, nil
}
