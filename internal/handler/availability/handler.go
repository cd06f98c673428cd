package availability

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ebookinghq/booking-api/internal/handler"
	"github.com/ebookinghq/booking-api/internal/middleware"
	"github.com/ebookinghq/booking-api/internal/model"
	"github.com/ebookinghq/booking-api/internal/service/availability"
	apperrors "github.com/ebookinghq/booking-api/pkg/errors"
	"github.com/ebookinghq/booking-api/pkg/validator"
)

type Handler struct {
	service *availability.Service
}

func NewHandler(service *availability.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	windows := r.Group("/availabilities")
	{
		windows.GET("", h.ListWindows)
		windows.GET("/slots", h.ComputeSlots)
		windows.POST("", h.CreateWindow)
		windows.PUT("/:id", h.UpdateWindow)
		windows.DELETE("/:id", h.DeleteWindow)
	}
}

func (h *Handler) CreateWindow(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		handler.Error(c, apperrors.Unauthorized("authentication required"))
		return
	}

	var req model.CreateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	window, err := h.service.CreateWindow(c.Request.Context(), caller, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(window))
}

func (h *Handler) UpdateWindow(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		handler.Error(c, apperrors.Unauthorized("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid window ID"))
		return
	}

	var req model.UpdateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if err := validator.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	window, err := h.service.UpdateWindow(c.Request.Context(), caller, id, &req)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(window))
}

func (h *Handler) DeleteWindow(c *gin.Context) {
	caller, ok := middleware.CallerFromContext(c)
	if !ok {
		handler.Error(c, apperrors.Unauthorized("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid window ID"))
		return
	}

	if err := h.service.DeleteWindow(c.Request.Context(), caller, id); err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ListWindows(c *gin.Context) {
	providerID, err := uuid.Parse(c.Query("provider_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
		return
	}

	windows, err := h.service.ListWindows(c.Request.Context(), providerID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(windows))
}

func (h *Handler) ComputeSlots(c *gin.Context) {
	providerID, err := uuid.Parse(c.Query("provider_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid provider ID"))
		return
	}

	date, err := model.ParseDate(c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid date, expected YYYY-MM-DD"))
		return
	}

	q := availability.SlotQuery{
		ProviderID: providerID,
		Date:       date,
	}

	if raw := c.Query("service_id"); raw != "" {
		serviceID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid service ID"))
			return
		}
		q.ServiceID = &serviceID
	}

	if raw := c.Query("step"); raw != "" {
		step, err := parseMinutes(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid step"))
			return
		}
		q.StepMinutes = &step
	}

	if raw := c.Query("duration"); raw != "" {
		duration, err := parseMinutes(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid duration"))
			return
		}
		q.DurationMinutes = &duration
	}

	slots, err := h.service.Slots(c.Request.Context(), q)
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func parseMinutes(raw string) (int, error) {
	return strconv.Atoi(raw)
}

