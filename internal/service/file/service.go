package file

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
	"github.com/jwalitptl/medihelp-api/internal/service/event"
	"github.com/jwalitptl/medihelp-api/pkg/ai"
	"github.com/jwalitptl/medihelp-api/pkg/errors"
	"github.com/jwalitptl/medihelp-api/pkg/logger"
	"github.com/jwalitptl/medihelp-api/pkg/metrics"
)

type FileServicer interface {
	Create(ctx context.Context, userID uuid.UUID, req *model.CreateFileRequest) (*model.File, error)
	List(ctx context.Context, userID uuid.UUID) ([]*model.File, error)
	Process(ctx context.Context, userID uuid.UUID, req *model.ProcessFileRequest) (*model.ProcessFileResponse, error)
	ChatAboutFile(ctx context.Context, userID uuid.UUID, req *model.FileChatRequest) (string, error)
}

type Service struct {
	repo       repository.FileRepository
	downloader Downloader
	ai         ai.Generator
	events     event.Emitter
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

func NewService(
	repo repository.FileRepository,
	downloader Downloader,
	generator ai.Generator,
	events event.Emitter,
	logger *logger.Logger,
	metrics *metrics.Metrics,
) *Service {
	return &Service{
		repo:       repo,
		downloader: downloader,
		ai:         generator,
		events:     events,
		logger:     logger,
		metrics:    metrics,
	}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateFileRequest) (*model.File, error) {
	f := &model.File{
		UserID:      userID,
		FileURL:     req.FileURL,
		FileType:    req.FileType,
		Description: req.Description,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return f, nil
}

// List returns the user's files, newest first.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*model.File, error) {
	files, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// Process returns the extracted text for the file identified by
// req.FileHash, downloading and extracting only on first sight of the hash.
// The hash is trusted as supplied. Work continues after the caller's context
// is cancelled.
func (s *Service) Process(ctx context.Context, userID uuid.UUID, req *model.ProcessFileRequest) (*model.ProcessFileResponse, error) {
	ctx = context.WithoutCancel(ctx)
	if req.FileHash == "" {
		return nil, errors.Validation("file_hash is required")
	}

	existing, err := s.repo.GetByHash(ctx, req.FileHash)
	if err == nil {
		s.observe("hit")
		return response(existing), nil
	}
	if errors.CodeOf(err) != errors.ErrNotFound {
		return nil, fmt.Errorf("failed to look up file hash: %w", err)
	}
	s.observe("miss")

	content, err := s.downloader.Download(ctx, req.FileURL)
	if err != nil {
		return nil, errors.Upstream("Failed to download file", err)
	}
	text := ExtractText(content)

	hash := req.FileHash
	f := &model.File{
		UserID:        userID,
		FileURL:       req.FileURL,
		FileType:      req.FileType,
		Description:   req.Description,
		FileHash:      &hash,
		ExtractedText: &text,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		if errors.CodeOf(err) != errors.ErrConflict {
			return nil, fmt.Errorf("failed to create file: %w", err)
		}
		// Lost a race on the same hash; the stored row wins.
		s.logger.Debug("file hash inserted concurrently", "file_hash", req.FileHash)
		winner, getErr := s.repo.GetByHash(ctx, req.FileHash)
		if getErr != nil {
			return nil, fmt.Errorf("failed to re-read file after conflict: %w", getErr)
		}
		return response(winner), nil
	}

	s.events.Emit(ctx, model.EventFileProcessed, map[string]string{
		"file_id": f.ID.String(),
		"user_id": userID.String(),
	})
	return response(f), nil
}

func response(f *model.File) *model.ProcessFileResponse {
	resp := &model.ProcessFileResponse{FileID: f.ID}
	if f.ExtractedText != nil {
		resp.ExtractedText = *f.ExtractedText
	}
	return resp
}

func (s *Service) observe(result string) {
	if s.metrics != nil {
		s.metrics.FileCacheLookups.WithLabelValues(result).Inc()
	}
}

// ChatAboutFile answers prompt using the stored text of one of the user's files.
func (s *Service) ChatAboutFile(ctx context.Context, userID uuid.UUID, req *model.FileChatRequest) (string, error) {
	ctx = context.WithoutCancel(ctx)
	f, err := s.repo.Get(ctx, req.FileID)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrNotFound {
			return "", errors.NotFoundMessage("File not found.")
		}
		return "", err
	}
	if f.UserID != userID {
		return "", errors.Forbidden("Not authorized to access this file.")
	}

	document := ""
	if f.ExtractedText != nil {
		document = *f.ExtractedText
	}
	prompt := fmt.Sprintf(
		"Answer the question using only the document below. If the document does not contain the answer, say so.\n\n--- DOCUMENT ---\n%s\n--- END DOCUMENT ---\n\nQuestion: %s",
		document, req.Prompt,
	)

	reply, err := s.ai.Generate(ctx, "file_chat", []ai.Message{ai.NewMessage(ai.RoleUser, prompt)}, false)
	if err != nil {
		return "", errors.Upstream("AI chat failed", err)
	}
	return reply, nil
}
