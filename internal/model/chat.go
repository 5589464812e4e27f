package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/pkg/ai"
)

// ChatHistory is a conversation stored as a JSONB array of turns.
type ChatHistory []ai.Message

// Value encodes as a string; lib/pq would send []byte as bytea.
func (h ChatHistory) Value() (driver.Value, error) {
	if h == nil {
		return "[]", nil
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (h *ChatHistory) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*h = ChatHistory{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into ChatHistory", src)
	}
	return json.Unmarshal(b, h)
}

// ChatConversation is a stored chat. MedicineID is nil for the general assistant.
type ChatConversation struct {
	ID         uuid.UUID   `json:"history_id" db:"history_id"`
	UserID     uuid.UUID   `json:"user_id" db:"user_id"`
	MedicineID *uuid.UUID  `json:"medicine_id,omitempty" db:"medicine_id"`
	History    ChatHistory `json:"history" db:"history"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`
}

type ChatRequest struct {
	MedicineID uuid.UUID `json:"medicine_id" binding:"required"`
	Prompt     string    `json:"prompt" binding:"required"`
}

type GeneralChatRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type ChatHistoryResponse struct {
	History ChatHistory `json:"history"`
}

type OCRRequest struct {
	Text string `json:"text" binding:"required"`
}

type OCRResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
