package postgres

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
)

type chatHistoryRepository struct {
	BaseRepository
}

func NewChatHistoryRepository(base BaseRepository) repository.ChatHistoryRepository {
	return &chatHistoryRepository{base}
}

func (r *chatHistoryRepository) GetMedicineChat(ctx context.Context, userID, medicineID uuid.UUID) (*model.ChatConversation, error) {
	var conv model.ChatConversation
	err := r.db.GetContext(ctx, &conv, `
		SELECT history_id, user_id, medicine_id, history, created_at, updated_at
		FROM ai_chat_histories
		WHERE user_id = $1 AND medicine_id = $2`, userID, medicineID)
	if err != nil {
		return nil, translate(err, "Chat history", "get")
	}
	return &conv, nil
}

func (r *chatHistoryRepository) SaveMedicineChat(ctx context.Context, conv *model.ChatConversation) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO ai_chat_histories (history_id, user_id, medicine_id, history)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, medicine_id)
		DO UPDATE SET history = EXCLUDED.history, updated_at = NOW()
		RETURNING history_id, created_at, updated_at`,
		uuid.New(), conv.UserID, conv.MedicineID, conv.History,
	).Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt)
	return translate(err, "Chat history", "save")
}

func (r *chatHistoryRepository) GetGeneralChat(ctx context.Context, userID uuid.UUID) (*model.ChatConversation, error) {
	var conv model.ChatConversation
	err := r.db.GetContext(ctx, &conv, `
		SELECT history_id, user_id, history, created_at, updated_at
		FROM general_chat_histories
		WHERE user_id = $1`, userID)
	if err != nil {
		return nil, translate(err, "Chat history", "get")
	}
	return &conv, nil
}

func (r *chatHistoryRepository) SaveGeneralChat(ctx context.Context, conv *model.ChatConversation) error {
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO general_chat_histories (history_id, user_id, history)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id)
		DO UPDATE SET history = EXCLUDED.history, updated_at = NOW()
		RETURNING history_id, created_at, updated_at`,
		uuid.New(), conv.UserID, conv.History,
	).Scan(&conv.ID, &conv.CreatedAt, &conv.UpdatedAt)
	return translate(err, "Chat history", "save")
}
