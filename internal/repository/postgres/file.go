package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
)

type fileRepository struct {
	BaseRepository
}

func NewFileRepository(base BaseRepository) repository.FileRepository {
	return &fileRepository{base}
}

const fileColumns = `file_id, user_id, file_url, file_type, description, file_hash, extracted_text, uploaded_at`

func (r *fileRepository) Create(ctx context.Context, f *model.File) error {
	f.ID = uuid.New()
	f.UploadedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO files (
			file_id, user_id, file_url, file_type, description, file_hash, extracted_text, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.ID, f.UserID, f.FileURL, f.FileType, f.Description, f.FileHash, f.ExtractedText, f.UploadedAt,
	)
	return translate(err, "File", "create")
}

func (r *fileRepository) Get(ctx context.Context, id uuid.UUID) (*model.File, error) {
	var f model.File
	if err := r.db.GetContext(ctx, &f, `SELECT `+fileColumns+` FROM files WHERE file_id = $1`, id); err != nil {
		return nil, translate(err, "File", "get")
	}
	return &f, nil
}

func (r *fileRepository) GetByHash(ctx context.Context, hash string) (*model.File, error) {
	var f model.File
	if err := r.db.GetContext(ctx, &f, `SELECT `+fileColumns+` FROM files WHERE file_hash = $1`, hash); err != nil {
		return nil, translate(err, "File", "get")
	}
	return &f, nil
}

func (r *fileRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.File, error) {
	files := []*model.File{}
	err := r.db.SelectContext(ctx, &files, `
		SELECT `+fileColumns+`
		FROM files
		WHERE user_id = $1
		ORDER BY uploaded_at DESC`, userID)
	if err != nil {
		return nil, translate(err, "File", "list")
	}
	return files, nil
}
