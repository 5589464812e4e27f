package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
)

type userMedicineRepository struct {
	BaseRepository
}

func NewUserMedicineRepository(base BaseRepository) repository.UserMedicineRepository {
	return &userMedicineRepository{base}
}

const userMedicineSelect = `
	SELECT um.id, um.user_id, um.medicine_id, um.start_date, um.end_date,
		um.notes, um.is_active, um.created_at,
		m.medicine_id AS "medicine.medicine_id",
		m.name AS "medicine.name",
		m.generic_name AS "medicine.generic_name",
		m.manufacturer AS "medicine.manufacturer",
		m.created_at AS "medicine.created_at"
	FROM user_medicines um
	JOIN medicines m ON m.medicine_id = um.medicine_id`

func (r *userMedicineRepository) Create(ctx context.Context, um *model.UserMedicine) error {
	um.ID = uuid.New()
	um.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_medicines (
			id, user_id, medicine_id, start_date, end_date, notes, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		um.ID, um.UserID, um.MedicineID, um.StartDate, um.EndDate,
		um.Notes, um.IsActive, um.CreatedAt,
	)
	return translate(err, "Medicine", "create")
}

func (r *userMedicineRepository) Get(ctx context.Context, id uuid.UUID) (*model.UserMedicine, error) {
	var um model.UserMedicine
	if err := r.db.GetContext(ctx, &um, userMedicineSelect+` WHERE um.id = $1`, id); err != nil {
		return nil, translate(err, "Medicine", "get")
	}
	return &um, nil
}

func (r *userMedicineRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.UserMedicine, error) {
	list := []*model.UserMedicine{}
	err := r.db.SelectContext(ctx, &list,
		userMedicineSelect+` WHERE um.user_id = $1 ORDER BY um.created_at DESC, um.id`, userID)
	if err != nil {
		return nil, translate(err, "Medicine", "list")
	}
	return list, nil
}

func (r *userMedicineRepository) Update(ctx context.Context, um *model.UserMedicine) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE user_medicines SET
			start_date = $1,
			end_date = $2,
			notes = $3,
			is_active = $4
		WHERE id = $5`,
		um.StartDate, um.EndDate, um.Notes, um.IsActive, um.ID,
	)
	if err != nil {
		return translate(err, "Medicine", "update")
	}
	return expectOne(res, "Medicine")
}

func (r *userMedicineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM doses WHERE user_medicine_id = $1`, id); err != nil {
			return translate(err, "Dose", "delete")
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM user_medicines WHERE id = $1`, id)
		if err != nil {
			return translate(err, "Medicine", "delete")
		}
		return expectOne(res, "Medicine")
	})
}
