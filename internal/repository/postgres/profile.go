package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
)

type profileRepository struct {
	BaseRepository
}

func NewProfileRepository(base BaseRepository) repository.ProfileRepository {
	return &profileRepository{base}
}

const profileColumns = `p.id, p.name, p.phone, p.gender, p.date_of_birth, p.updated_at`

func (r *profileRepository) Get(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var p model.Profile
	err := r.db.GetContext(ctx, &p, `SELECT `+profileColumns+` FROM profiles p WHERE p.id = $1`, id)
	if err != nil {
		return nil, translate(err, "Profile", "get")
	}
	return &p, nil
}

// GetByEmail resolves an account email to its profile.
func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var p model.Profile
	err := r.db.GetContext(ctx, &p, `
		SELECT `+profileColumns+`
		FROM profiles p
		JOIN users u ON u.user_id = p.id
		WHERE lower(u.email) = lower($1)`, email)
	if err != nil {
		return nil, translate(err, "Profile", "get")
	}
	return &p, nil
}

func (r *profileRepository) List(ctx context.Context, page model.Pagination) ([]*model.Profile, error) {
	page.Normalize()
	profiles := []*model.Profile{}
	err := r.db.SelectContext(ctx, &profiles, `
		SELECT `+profileColumns+`
		FROM profiles p
		ORDER BY p.id
		OFFSET $1 LIMIT $2`, page.Skip, page.Limit)
	if err != nil {
		return nil, translate(err, "Profile", "list")
	}
	return profiles, nil
}

func (r *profileRepository) Update(ctx context.Context, p *model.Profile) error {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE profiles SET
			name = $1,
			phone = $2,
			gender = $3,
			date_of_birth = $4,
			updated_at = $5
		WHERE id = $6`,
		p.Name, p.Phone, p.Gender, p.DateOfBirth, now, p.ID,
	)
	if err != nil {
		return translate(err, "Profile", "update")
	}
	if err := expectOne(res, "Profile"); err != nil {
		return err
	}
	p.UpdatedAt = &now
	return nil
}
