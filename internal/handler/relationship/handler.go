package relationship

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medihelp-api/internal/handler"
	"github.com/jwalitptl/medihelp-api/internal/model"
	relationshipService "github.com/jwalitptl/medihelp-api/internal/service/relationship"
)

type Handler struct {
	service relationshipService.RelationshipServicer
}

func NewHandler(service relationshipService.RelationshipServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	relationships := r.Group("/relationships")
	{
		relationships.POST("", h.Add)
		relationships.GET("", h.List)
		relationships.PUT("/:id", h.Update)
		relationships.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Add(c *gin.Context) {
	var req model.CreateRelationshipRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	rel, err := h.service.Add(c.Request.Context(), handler.CurrentUser(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(rel))
}

func (h *Handler) List(c *gin.Context) {
	rels, err := h.service.List(c.Request.Context(), handler.CurrentUser(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(rels))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateRelationshipRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	rel, err := h.service.Update(c.Request.Context(), handler.CurrentUser(c), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(rel))
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), handler.CurrentUser(c), id); err != nil {
		handler.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
