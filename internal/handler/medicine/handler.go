package medicine

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/medihelp-api/internal/handler"
	"github.com/jwalitptl/medihelp-api/internal/model"
	medicineService "github.com/jwalitptl/medihelp-api/internal/service/medicine"
)

type Handler struct {
	service medicineService.MedicineServicer
}

func NewHandler(service medicineService.MedicineServicer) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	medicines := r.Group("/medicines")
	{
		medicines.POST("", h.Enroll)
		medicines.GET("", h.List)
		medicines.GET("/info", h.Info)
		medicines.GET("/:id", h.Get)
		medicines.PUT("/:id", h.Update)
		medicines.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Enroll(c *gin.Context) {
	var req model.EnrollMedicineRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	um, err := h.service.Enroll(c.Request.Context(), handler.CurrentUser(c), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(um))
}

// List returns the caller's medicines, or another user's via ?user_id=.
func (h *Handler) List(c *gin.Context) {
	actor := handler.CurrentUser(c)
	owner, present, ok := handler.QueryUUID(c, "user_id")
	if !ok {
		return
	}
	if !present {
		owner = actor
	}

	list, err := h.service.List(c.Request.Context(), actor, owner)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(list))
}

func (h *Handler) Info(c *gin.Context) {
	label, err := h.service.LookupLabel(c.Request.Context(), c.Query("name"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(label))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}

	um, err := h.service.Get(c.Request.Context(), handler.CurrentUser(c), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(um))
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateUserMedicineRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	um, err := h.service.Update(c.Request.Context(), handler.CurrentUser(c), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(um))
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
