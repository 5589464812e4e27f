package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
)

type healthMetricRepository struct {
	BaseRepository
}

func NewHealthMetricRepository(base BaseRepository) repository.HealthMetricRepository {
	return &healthMetricRepository{base}
}

const healthMetricColumns = `metric_id, user_id, metric_type, value, unit, "timestamp"`

func (r *healthMetricRepository) Create(ctx context.Context, m *model.HealthMetric) error {
	m.ID = uuid.New()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO health_metrics (metric_id, user_id, metric_type, value, unit, "timestamp")
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.UserID, m.MetricType, m.Value, m.Unit, m.Timestamp,
	)
	return translate(err, "Health metric", "create")
}

func (r *healthMetricRepository) Get(ctx context.Context, id uuid.UUID) (*model.HealthMetric, error) {
	var m model.HealthMetric
	err := r.db.GetContext(ctx, &m, `SELECT `+healthMetricColumns+` FROM health_metrics WHERE metric_id = $1`, id)
	if err != nil {
		return nil, translate(err, "Health metric", "get")
	}
	return &m, nil
}

func (r *healthMetricRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.HealthMetric, error) {
	metrics := []*model.HealthMetric{}
	err := r.db.SelectContext(ctx, &metrics, `
		SELECT `+healthMetricColumns+`
		FROM health_metrics
		WHERE user_id = $1
		ORDER BY "timestamp" DESC`, userID)
	if err != nil {
		return nil, translate(err, "Health metric", "list")
	}
	return metrics, nil
}

func (r *healthMetricRepository) Update(ctx context.Context, m *model.HealthMetric) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE health_metrics SET
			metric_type = $1,
			value = $2,
			unit = $3,
			"timestamp" = $4
		WHERE metric_id = $5`,
		m.MetricType, m.Value, m.Unit, m.Timestamp, m.ID,
	)
	if err != nil {
		return translate(err, "Health metric", "update")
	}
	return expectOne(res, "Health metric")
}

func (r *healthMetricRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM health_metrics WHERE metric_id = $1`, id)
	if err != nil {
		return translate(err, "Health metric", "delete")
	}
	return expectOne(res, "Health metric")
}
