package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/internal/repository"
	"github.com/jwalitptl/medihelp-api/pkg/ai"
	"github.com/jwalitptl/medihelp-api/pkg/errors"
	"github.com/jwalitptl/medihelp-api/pkg/logger"
)

const (
	generalPersona = "You are Medi Qube, a helpful and friendly medical AI assistant. " +
		"Explain things simply and clearly. Users will ask you general " +
		"questions about medicines, diseases, and health. Do not give " +
		"personal medical advice, but provide helpful, factual information."
	generalGreeting = "Of course! I'm here to help. What would you like to know?"

	ocrPrompt = "The following text was read by OCR from a medicine package or label. " +
		"Identify the medicine. Reply with a JSON object with exactly two string fields: " +
		`"name" (the medicine's name) and "description" (one or two sentences on what it is used for).` +
		"\n\nOCR text:\n%s"

	ocrUnknownName        = "Unknown"
	ocrUnknownDescription = "Could not extract medicine details from the provided text."
)

func medicinePersona(name string) string {
	return fmt.Sprintf("You are a helpful and friendly medical assistant. Explain things simply and clearly. "+
		"The user wants to ask questions about the medicine: %s. "+
		"Do not give medical advice, but provide helpful, factual information.", name)
}

func medicineGreeting(name string) string {
	return fmt.Sprintf("Of course! I can provide information about %s. What would you like to know?", name)
}

type Service struct {
	medicines repository.MedicineRepository
	histories repository.ChatHistoryRepository
	ai        ai.Generator
	logger    *logger.Logger
}

func NewService(medicines repository.MedicineRepository, histories repository.ChatHistoryRepository,
	generator ai.Generator, logger *logger.Logger) *Service {
	return &Service{
		medicines: medicines,
		histories: histories,
		ai:        generator,
		logger:    logger,
	}
}

// MedicineChat continues the user's conversation about one catalogue medicine.
// A cancelled caller context does not abort the provider call or the save.
func (s *Service) MedicineChat(ctx context.Context, userID uuid.UUID, req *model.ChatRequest) (string, error) {
	ctx = context.WithoutCancel(ctx)
	med, err := s.medicines.Get(ctx, req.MedicineID)
	if err != nil {
		if errors.CodeOf(err) == errors.ErrNotFound {
			return "", errors.NotFoundMessage("Medicine not found.")
		}
		return "", err
	}

	conv, err := s.histories.GetMedicineChat(ctx, userID, med.ID)
	if err != nil {
		if errors.CodeOf(err) != errors.ErrNotFound {
			return "", fmt.Errorf("failed to load chat history: %w", err)
		}
		medicineID := med.ID
		conv = &model.ChatConversation{
			UserID:     userID,
			MedicineID: &medicineID,
			History:    seed(medicinePersona(med.Name), medicineGreeting(med.Name)),
		}
	}

	reply, err := s.converse(ctx, "medicine_chat", conv, req.Prompt)
	if err != nil {
		return "", err
	}
	if err := s.histories.SaveMedicineChat(ctx, conv); err != nil {
		return "", fmt.Errorf("failed to save chat history: %w", err)
	}
	return reply, nil
}

// MedicineHistory returns the stored conversation, or an empty one.
func (s *Service) MedicineHistory(ctx context.Context, userID, medicineID uuid.UUID) (model.ChatHistory, error) {
	conv, err := s.histories.GetMedicineChat(ctx, userID, medicineID)
	return historyOrEmpty(conv, err)
}

func (s *Service) GeneralChat(ctx context.Context, userID uuid.UUID, req *model.GeneralChatRequest) (string, error) {
	ctx = context.WithoutCancel(ctx)
	conv, err := s.histories.GetGeneralChat(ctx, userID)
	if err != nil {
		if errors.CodeOf(err) != errors.ErrNotFound {
			return "", fmt.Errorf("failed to load chat history: %w", err)
		}
		conv = &model.ChatConversation{
			UserID:  userID,
			History: seed(generalPersona, generalGreeting),
		}
	}

	reply, err := s.converse(ctx, "general_chat", conv, req.Prompt)
	if err != nil {
		return "", err
	}
	if err := s.histories.SaveGeneralChat(ctx, conv); err != nil {
		return "", fmt.Errorf("failed to save chat history: %w", err)
	}
	return reply, nil
}

func (s *Service) GeneralHistory(ctx context.Context, userID uuid.UUID) (model.ChatHistory, error) {
	conv, err := s.histories.GetGeneralChat(ctx, userID)
	return historyOrEmpty(conv, err)
}

// AnalyzeOCR extracts a medicine name and description from OCR text.
// An unusable answer degrades to a fixed placeholder.
func (s *Service) AnalyzeOCR(ctx context.Context, text string) (*model.OCRResponse, error) {
	ctx = context.WithoutCancel(ctx)
	msgs := []ai.Message{ai.NewMessage(ai.RoleUser, fmt.Sprintf(ocrPrompt, text))}
	raw, err := s.ai.Generate(ctx, "ocr_analyze", msgs, true)
	if err != nil {
		return nil, errors.Upstream("AI analysis failed", err)
	}

	var out model.OCRResponse
	if err := json.Unmarshal([]byte(stripFence(raw)), &out); err != nil || strings.TrimSpace(out.Name) == "" {
		s.logger.Warn("unusable OCR analysis from provider", "response", raw)
		return &model.OCRResponse{Name: ocrUnknownName, Description: ocrUnknownDescription}, nil
	}
	return &out, nil
}

// converse sends history plus prompt and appends both turns to conv.
func (s *Service) converse(ctx context.Context, operation string, conv *model.ChatConversation, prompt string) (string, error) {
	turn := ai.NewMessage(ai.RoleUser, prompt)
	contents := append(append([]ai.Message{}, conv.History...), turn)

	reply, err := s.ai.Generate(ctx, operation, contents, false)
	if err != nil {
		return "", errors.Upstream("AI chat failed", err)
	}

	conv.History = append(conv.History, turn, ai.NewMessage(ai.RoleModel, reply))
	return reply, nil
}

func seed(persona, greeting string) model.ChatHistory {
	return model.ChatHistory{
		ai.NewMessage(ai.RoleUser, persona),
		ai.NewMessage(ai.RoleModel, greeting),
	}
}

func historyOrEmpty(conv *model.ChatConversation, err error) (model.ChatHistory, error) {
	if err != nil {
		if errors.CodeOf(err) == errors.ErrNotFound {
			return model.ChatHistory{}, nil
		}
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	if conv.History == nil {
		return model.ChatHistory{}, nil
	}
	return conv.History, nil
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
