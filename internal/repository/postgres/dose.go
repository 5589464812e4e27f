package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
)

type doseRepository struct {
	BaseRepository
}

func NewDoseRepository(base BaseRepository) repository.DoseRepository {
	return &doseRepository{base}
}

const doseColumns = `dose_id, user_medicine_id, dose_time, quantity, created_at`

func (r *doseRepository) Create(ctx context.Context, d *model.Dose) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now().UTC()
	if d.Quantity == "" {
		d.Quantity = model.DefaultDoseQuantity
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO doses (dose_id, user_medicine_id, dose_time, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.UserMedicineID, d.DoseTime, d.Quantity, d.CreatedAt,
	)
	return translate(err, "Dose", "create")
}

func (r *doseRepository) Get(ctx context.Context, id uuid.UUID) (*model.Dose, error) {
	var d model.Dose
	if err := r.db.GetContext(ctx, &d, `SELECT `+doseColumns+` FROM doses WHERE dose_id = $1`, id); err != nil {
		return nil, translate(err, "Dose", "get")
	}
	return &d, nil
}

func (r *doseRepository) ListByUserMedicine(ctx context.Context, userMedicineID uuid.UUID) ([]*model.Dose, error) {
	doses := []*model.Dose{}
	err := r.db.SelectContext(ctx, &doses, `
		SELECT `+doseColumns+`
		FROM doses
		WHERE user_medicine_id = $1
		ORDER BY dose_time`, userMedicineID)
	if err != nil {
		return nil, translate(err, "Dose", "list")
	}
	return doses, nil
}

func (r *doseRepository) Update(ctx context.Context, d *model.Dose) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE doses SET dose_time = $1, quantity = $2 WHERE dose_id = $3`,
		d.DoseTime, d.Quantity, d.ID,
	)
	if err != nil {
		return translate(err, "Dose", "update")
	}
	return expectOne(res, "Dose")
}

func (r *doseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM doses WHERE dose_id = $1`, id)
	if err != nil {
		return translate(err, "Dose", "delete")
	}
	return expectOne(res, "Dose")
}
