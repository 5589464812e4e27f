package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
)

type userRepository struct {
	BaseRepository
}

func NewUserRepository(base BaseRepository) repository.UserRepository {
	return &userRepository{base}
}

func (r *userRepository) CreateWithProfile(ctx context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now().UTC()

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO users (
				user_id, name, email, phone, password_hash, gender, date_of_birth, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			user.ID, user.Name, user.Email, user.Phone, user.PasswordHash,
			user.Gender, user.DateOfBirth, user.CreatedAt,
		); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO profiles (id, name, phone, gender, date_of_birth, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			user.ID, user.Name, user.Phone, user.Gender, user.DateOfBirth, user.CreatedAt,
		)
		return err
	})
	return translate(err, "User", "create")
}

const userColumns = `user_id, name, email, phone, password_hash, gender, date_of_birth, created_at`

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, id)
	if err != nil {
		return nil, translate(err, "User", "get")
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	if err != nil {
		return nil, translate(err, "User", "get")
	}
	return &user, nil
}
