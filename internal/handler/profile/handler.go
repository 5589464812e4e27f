package profile

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/handler"
	"github.com/jwalitptl/medihelp-api/internal/model"
)

type Service interface {
	Me(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	List(ctx context.Context, page model.Pagination) ([]*model.Profile, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.Profile, error)
}

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	profiles := r.Group("/profiles")
	{
		profiles.GET("", h.List)
		profiles.GET("/me", h.Me)
		profiles.PUT("/me", h.UpdateMe)
	}
}

func (h *Handler) Me(c *gin.Context) {
	p, err := h.svc.Me(c.Request.Context(), handler.CurrentUser(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}

func (h *Handler) List(c *gin.Context) {
	skip, ok := handler.QueryInt(c, "skip", 0)
	if !ok {
		return
	}
	limit, ok := handler.QueryInt(c, "limit", model.DefaultPageLimit)
	if !ok {
		return
	}

	profiles, err := h.svc.List(c.Request.Context(), model.Pagination{Skip: skip, Limit: limit})
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(profiles))
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var req model.UpdateProfileRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.UpdateMe(c.Request.Context(), handler.CurrentUser(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(p))
}
