package file

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medihelp-api/internal/handler"
	"github.com/jwalitptl/medihelp-api/internal/model"
	fileService "github.com/jwalitptl/medihelp-api/internal/service/file"
)

type Handler struct {
	service fileService.FileServicer
}

func NewHandler(service fileService.FileServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	files := r.Group("/files")
	{
		files.POST("", h.Create)
		files.GET("", h.List)
	}

	ai := r.Group("/ai/files")
	{
		ai.POST("/process-file", h.Process)
		ai.POST("/chat-with-file", h.Chat)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateFileRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	f, err := h.service.Create(c.Request.Context(), handler.CurrentUser(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(f))
}

func (h *Handler) List(c *gin.Context) {
	files, err := h.service.List(c.Request.Context(), handler.CurrentUser(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(files))
}

func (h *Handler) Process(c *gin.Context) {
	var req model.ProcessFileRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	resp, err := h.service.Process(c.Request.Context(), handler.CurrentUser(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(resp))
}

func (h *Handler) Chat(c *gin.Context) {
	var req model.FileChatRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	reply, err := h.service.ChatAboutFile(c.Request.Context(), handler.CurrentUser(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.ChatResponse{Response: reply}))
}
