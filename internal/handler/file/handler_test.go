package file

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medihelp-api/internal/handler"
	"github.com/jwalitptl/medihelp-api/internal/model"
	"github.com/jwalitptl/medihelp-api/pkg/errors"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Create(ctx context.Context, userID uuid.UUID, req *model.CreateFileRequest) (*model.File, error) {
	args := m.Called(ctx, userID, req)
	f, _ := args.Get(0).(*model.File)
	return f, args.Error(1)
}

func (m *mockService) List(ctx context.Context, userID uuid.UUID) ([]*model.File, error) {
	args := m.Called(ctx, userID)
	files, _ := args.Get(0).([]*model.File)
	return files, args.Error(1)
}

func (m *mockService) Process(ctx context.Context, userID uuid.UUID, req *model.ProcessFileRequest) (*model.ProcessFileResponse, error) {
	args := m.Called(ctx, userID, req)
	resp, _ := args.Get(0).(*model.ProcessFileResponse)
	return resp, args.Error(1)
}

func (m *mockService) ChatAboutFile(ctx context.Context, userID uuid.UUID, req *model.FileChatRequest) (string, error) {
	args := m.Called(ctx, userID, req)
	return args.String(0), args.Error(1)
}

func setup(actor uuid.UUID) (*gin.Engine, *mockService) {
	gin.SetMode(gin.TestMode)
	svc := new(mockService)
	r := gin.New()
	api := r.Group("")
	api.Use(func(c *gin.Context) {
		c.Set(handler.ContextUserID, actor)
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(api)
	return r, svc
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProcessFile(t *testing.T) {
	user := uuid.New()
	r, svc := setup(user)
	fileID := uuid.New()

	svc.On("Process", mock.Anything, user, mock.MatchedBy(func(req *model.ProcessFileRequest) bool {
		return req.FileHash == "abc123" && req.FileURL == "https://files.example.com/label.txt"
	})).Return(&model.ProcessFileResponse{FileID: fileID, ExtractedText: "Take with food"}, nil)

	w := post(r, "/ai/files/process-file", `{"file_url":"https://files.example.com/label.txt","file_hash":"abc123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data model.ProcessFileResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, fileID, resp.Data.FileID)
	assert.Equal(t, "Take with food", resp.Data.ExtractedText)
	svc.AssertExpectations(t)
}

func TestProcessFileRejectsMissingHash(t *testing.T) {
	r, svc := setup(uuid.New())

	w := post(r, "/ai/files/process-file", `{"file_url":"https://files.example.com/label.txt"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessFileDownloadFailure(t *testing.T) {
	r, svc := setup(uuid.New())
	svc.On("Process", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.Upstream("Failed to download file", context.DeadlineExceeded))

	w := post(r, "/ai/files/process-file", `{"file_url":"https://files.example.com/x.pdf","file_hash":"h"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to download file")
	assert.NotContains(t, w.Body.String(), "deadline")
}

func TestChatWithFileOfAnotherUser(t *testing.T) {
	r, svc := setup(uuid.New())
	svc.On("ChatAboutFile", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.Forbidden("Not authorized to access this file."))

	w := post(r, "/ai/files/chat-with-file", `{"file_id":"`+uuid.NewString()+`","prompt":"summarise"}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Not authorized to access this file.")
}

func TestCreateAndListFiles(t *testing.T) {
	user := uuid.New()
	r, svc := setup(user)
	created := &model.File{ID: uuid.New(), UserID: user, FileURL: "https://files.example.com/rx.png"}

	svc.On("Create", mock.Anything, user, mock.Anything).Return(created, nil)
	svc.On("List", mock.Anything, user).Return([]*model.File{created}, nil)

	w := post(r, "/files", `{"file_url":"https://files.example.com/rx.png"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/files", nil)
	lw := httptest.NewRecorder()
	r.ServeHTTP(lw, req)
	require.Equal(t, http.StatusOK, lw.Code)
	assert.Contains(t, lw.Body.String(), created.ID.String())
}
