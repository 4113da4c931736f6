package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/service"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
	"github.com/arka-edu/timetable-api/pkg/response"
)

// TimeSlotHandler exposes the weekly period grid.
type TimeSlotHandler struct {
	slots *service.TimeSlotService
}

func NewTimeSlotHandler(slots *service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{slots: slots}
}

func (h *TimeSlotHandler) List(c *gin.Context) {
	slots, err := h.slots.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// ReplaceGrid swaps the entire weekly grid in one request.
func (h *TimeSlotHandler) ReplaceGrid(c *gin.Context) {
	var req dto.ReplaceTimeSlotsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slots, err := h.slots.ReplaceGrid(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}
