package assistant

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/handler"
	"github.com/jwalitptl/medihelp-api/internal/model"
)

type Service interface {
	MedicineChat(ctx context.Context, userID uuid.UUID, req *model.ChatRequest) (string, error)
	MedicineHistory(ctx context.Context, userID, medicineID uuid.UUID) (model.ChatHistory, error)
	GeneralChat(ctx context.Context, userID uuid.UUID, req *model.GeneralChatRequest) (string, error)
	GeneralHistory(ctx context.Context, userID uuid.UUID) (model.ChatHistory, error)
	AnalyzeOCR(ctx context.Context, text string) (*model.OCRResponse, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	ai := r.Group("/ai")
	{
		ai.POST("/chat", h.MedicineChat)
		ai.GET("/chat/:medicineId", h.MedicineHistory)
		ai.POST("/general-chat", h.GeneralChat)
		ai.GET("/general-chat", h.GeneralHistory)
		ai.POST("/ocr-analyze", h.AnalyzeOCR)
	}
}

func (h *Handler) MedicineChat(c *gin.Context) {
	var req model.ChatRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	reply, err := h.svc.MedicineChat(c.Request.Context(), handler.CurrentUser(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.ChatResponse{Response: reply}))
}

func (h *Handler) MedicineHistory(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "medicineId")
	if !ok {
		return
	}

	history, err := h.svc.MedicineHistory(c.Request.Context(), handler.CurrentUser(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.ChatHistoryResponse{History: history}))
}

func (h *Handler) GeneralChat(c *gin.Context) {
	var req model.GeneralChatRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	reply, err := h.svc.GeneralChat(c.Request.Context(), handler.CurrentUser(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.ChatResponse{Response: reply}))
}

func (h *Handler) GeneralHistory(c *gin.Context) {
	history, err := h.svc.GeneralHistory(c.Request.Context(), handler.CurrentUser(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.ChatHistoryResponse{History: history}))
}

func (h *Handler) AnalyzeOCR(c *gin.Context) {
	var req model.OCRRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	out, err := h.svc.AnalyzeOCR(c.Request.Context(), req.Text)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}
