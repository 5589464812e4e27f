package healthmetric

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/handler"
	"github.com/jwalitptl/medihelp-api/internal/model"
)

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req *model.CreateHealthMetricRequest) (*model.HealthMetric, error)
	List(ctx context.Context, userID uuid.UUID) ([]*model.HealthMetric, error)
	Update(ctx context.Context, userID, id uuid.UUID, req *model.UpdateHealthMetricRequest) (*model.HealthMetric, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	metrics := r.Group("/health_metrics")
	{
		metrics.POST("", h.Create)
		metrics.GET("", h.List)
		metrics.PUT("/:id", h.Update)
		metrics.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateHealthMetricRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	m, err := h.svc.Create(c.Request.Context(), handler.CurrentUser(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(m))
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), handler.CurrentUser(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateHealthMetricRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	m, err := h.svc.Update(c.Request.Context(), handler.CurrentUser(c), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(m))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), handler.CurrentUser(c), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
