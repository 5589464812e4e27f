package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
)

type medicineRepository struct {
	BaseRepository
}

func NewMedicineRepository(base BaseRepository) repository.MedicineRepository {
	return &medicineRepository{base}
}

const medicineColumns = `medicine_id, name, generic_name, manufacturer, usage, dosage,
	side_effects, interactions, precautions, storage, created_at`

func (r *medicineRepository) Create(ctx context.Context, m *model.Medicine) error {
	m.ID = uuid.New()
	m.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medicines (medicine_id, name, generic_name, manufacturer, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.Name, m.GenericName, m.Manufacturer, m.CreatedAt,
	)
	return translate(err, "Medicine", "create")
}

func (r *medicineRepository) Get(ctx context.Context, id uuid.UUID) (*model.Medicine, error) {
	var m model.Medicine
	err := r.db.GetContext(ctx, &m, `SELECT `+medicineColumns+` FROM medicines WHERE medicine_id = $1`, id)
	if err != nil {
		return nil, translate(err, "Medicine", "get")
	}
	return &m, nil
}

// FindByName matches case-insensitively; the oldest entry wins.
func (r *medicineRepository) FindByName(ctx context.Context, name string) (*model.Medicine, error) {
	var m model.Medicine
	err := r.db.GetContext(ctx, &m, `
		SELECT `+medicineColumns+`
		FROM medicines
		WHERE lower(name) = lower($1)
		ORDER BY created_at, medicine_id
		LIMIT 1`, name)
	if err != nil {
		return nil, translate(err, "Medicine", "find")
	}
	return &m, nil
}
