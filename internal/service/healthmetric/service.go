package healthmetric

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
	"github.com/jwalitptl/medihelp-api/pkg/errors"
)

type Service struct {
	repo repository.HealthMetricRepository
	now  func() time.Time
}

func NewService(repo repository.HealthMetricRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateHealthMetricRequest) (*model.HealthMetric, error) {
	m := &model.HealthMetric{
		UserID:     userID,
		MetricType: req.MetricType,
		Value:      req.Value,
		Unit:       req.Unit,
		Timestamp:  s.now().UTC(),
	}
	if req.Timestamp != nil {
		m.Timestamp = *req.Timestamp
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create health metric: %w", err)
	}
	return m, nil
}

// List returns the user's metrics, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*model.HealthMetric, error) {
	metrics, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list health metrics: %w", err)
	}
	return metrics, nil
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, req *model.UpdateHealthMetricRequest) (*model.HealthMetric, error) {
	m, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.MetricType != nil {
		m.MetricType = *req.MetricType
	}
	if req.Value != nil {
		m.Value = *req.Value
	}
	if req.Unit != nil {
		m.Unit = req.Unit
	}
	if req.Timestamp != nil {
		m.Timestamp = *req.Timestamp
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to update health metric: %w", err)
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete health metric: %w", err)
	}
	return nil
}

func (s *Service) owned(ctx context.Context, userID, id uuid.UUID) (*model.HealthMetric, error) {
	m, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.UserID != userID {
		return nil, errors.Forbidden("Not authorized to modify this health metric.")
	}
	return m, nil
}
