package assistant

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/medihelp-api/internal/handler"
	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/pkg/ai"
	"github.com/jwalitptl/medihelp-api/pkg/errors"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) MedicineChat(ctx context.Context, userID uuid.UUID, req *model.ChatRequest) (string, error) {
	args := m.Called(ctx, userID, req)
	return args.String(0), args.Error(1)
}

func (m *mockService) MedicineHistory(ctx context.Context, userID, medicineID uuid.UUID) (model.ChatHistory, error) {
	args := m.Called(ctx, userID, medicineID)
	h, _ := args.Get(0).(model.ChatHistory)
	return h, args.Error(1)
}

func (m *mockService) GeneralChat(ctx context.Context, userID uuid.UUID, req *model.GeneralChatRequest) (string, error) {
	args := m.Called(ctx, userID, req)
	return args.String(0), args.Error(1)
}

func (m *mockService) GeneralHistory(ctx context.Context, userID uuid.UUID) (model.ChatHistory, error) {
	args := m.Called(ctx, userID)
	h, _ := args.Get(0).(model.ChatHistory)
	return h, args.Error(1)
}

func (m *mockService) AnalyzeOCR(ctx context.Context, text string) (*model.OCRResponse, error) {
	args := m.Called(ctx, text)
	out, _ := args.Get(0).(*model.OCRResponse)
	return out, args.Error(1)
}

func setup(actor uuid.UUID) (*gin.Engine, *mockService) {
	gin.SetMode(gin.TestMode)
	svc := new(mockService)
	r := gin.New()
	g := r.Group("")
	g.Use(func(c *gin.Context) {
		c.Set(handler.ContextUserID, actor)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(g)
	return r, svc
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMedicineChat(t *testing.T) {
	actor, medicineID := uuid.New(), uuid.New()
	r, svc := setup(actor)
	svc.On("MedicineChat", mock.Anything, actor, &model.ChatRequest{MedicineID: medicineID, Prompt: "side effects?"}).
		Return("Drowsiness is common.", nil)

	w := post(r, "/ai/chat", `{"medicine_id":"`+medicineID.String()+`","prompt":"side effects?"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","data":{"response":"Drowsiness is common."}}`, w.Body.String())
}

func TestMedicineChatUpstreamFailure(t *testing.T) {
	actor := uuid.New()
	r, svc := setup(actor)
	svc.On("MedicineChat", mock.Anything, actor, mock.Anything).
		Return("", errors.Upstream("AI chat failed", assert.AnError))

	w := post(r, "/ai/chat", `{"medicine_id":"`+uuid.NewString()+`","prompt":"hi"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "AI chat failed")
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestGeneralHistory(t *testing.T) {
	actor := uuid.New()
	r, svc := setup(actor)
	svc.On("GeneralHistory", mock.Anything, actor).
		Return(model.ChatHistory{ai.NewMessage("user", "hello")}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ai/general-chat", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"history":[`)
	assert.Contains(t, w.Body.String(), "hello")
}

func TestOCRAnalyze(t *testing.T) {
	r, svc := setup(uuid.New())
	svc.On("AnalyzeOCR", mock.Anything, "PARACETAMOL 500mg").
		Return(&model.OCRResponse{Name: "Paracetamol", Description: "Pain reliever"}, nil)

	w := post(r, "/ai/ocr-analyze", `{"text":"PARACETAMOL 500mg"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Paracetamol"`)

	w = post(r, "/ai/ocr-analyze", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
