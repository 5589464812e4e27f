package dose

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/medihelp-api/internal/handler"
	"github.com/jwalitptl/medihelp-api/internal/model"
	doseService "github.com/jwalitptl/medihelp-api/internal/service/dose"
)

type Handler struct {
	service doseService.DoseServicer
}

func NewHandler(service doseService.DoseServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	doses := r.Group("/doses")
	{
		doses.POST("", h.Create)
		doses.GET("", h.List)
		doses.GET("/for-medicine/:id", h.ListForMedicine)
		doses.PUT("/:id", h.Update)
		doses.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateDoseRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	dose, err := h.service.Create(c.Request.Context(), handler.CurrentUser(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(dose))
}

// List is ListForMedicine keyed by ?user_medicine_id=.
func (h *Handler) List(c *gin.Context) {
	id, present, ok := handler.QueryUUID(c, "user_medicine_id")
	if !ok {
		return
	}
	if !present {
		c.AbortWithStatusJSON(http.StatusBadRequest, handler.NewErrorResponse("user_medicine_id is required"))
		return
	}
	h.list(c, id)
}

func (h *Handler) ListForMedicine(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	h.list(c, id)
}

func (h *Handler) list(c *gin.Context, userMedicineID uuid.UUID) {
	doses, err := h.service.ListForMedicine(c.Request.Context(), handler.CurrentUser(c), userMedicineID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doses))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateDoseRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	dose, err := h.service.Update(c.Request.Context(), handler.CurrentUser(c), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(dose))
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
