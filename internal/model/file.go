package model

import (
	"time"

	"github.com/google/uuid"
)

// File is an uploaded document. FileHash is the de-duplication key.
type File struct {
	ID            uuid.UUID `json:"file_id" db:"file_id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	FileURL       string    `json:"file_url" db:"file_url"`
	FileType      *string   `json:"file_type" db:"file_type"`
	Description   *string   `json:"description" db:"description"`
	FileHash      *string   `json:"-" db:"file_hash"`
	ExtractedText *string   `json:"-" db:"extracted_text"`
	UploadedAt    time.Time `json:"uploaded_at" db:"uploaded_at"`
}

type CreateFileRequest struct {
	FileURL     string  `json:"file_url" binding:"required,url"`
	FileType    *string `json:"file_type"`
	Description *string `json:"description"`
}

type ProcessFileRequest struct {
	FileURL     string  `json:"file_url" binding:"required,url"`
	FileHash    string  `json:"file_hash" binding:"required"`
	FileType    *string `json:"file_type"`
	Description *string `json:"description"`
}

type ProcessFileResponse struct {
	FileID        uuid.UUID `json:"file_id"`
	ExtractedText string    `json:"extracted_text"`
}

type FileChatRequest struct {
	FileID uuid.UUID `json:"file_id" binding:"required"`
	Prompt string    `json:"prompt" binding:"required"`
}
