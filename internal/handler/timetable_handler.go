package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/models"
	"github.com/arka-edu/timetable-api/internal/service"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
	"github.com/arka-edu/timetable-api/pkg/response"
)

// TimetableHandler exposes published timetable views and manual edits.
type TimetableHandler struct {
	timetables *service.TimetableService
}

func NewTimetableHandler(timetables *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetables: timetables}
}

func timetableFilter(c *gin.Context) models.TimetableFilter {
	return models.TimetableFilter{
		SectionID: c.Query("sectionId"),
		TeacherID: c.Query("teacherId"),
		RoomID:    c.Query("roomId"),
	}
}

// Current serves the latest successful generation's timetable.
func (h *TimetableHandler) Current(c *gin.Context) {
	view, err := h.timetables.Current(c.Request.Context(), timetableFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ByGeneration serves one run's timetable, including historical runs.
func (h *TimetableHandler) ByGeneration(c *gin.Context) {
	view, err := h.timetables.ByGeneration(c.Request.Context(), c.Param("id"), timetableFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Move relocates one entry (and its lab block) to a new slot and
// optionally a new room.
func (h *TimetableHandler) Move(c *gin.Context) {
	var req dto.MoveSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.timetables.Move(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Lock pins an entry against manual moves.
func (h *TimetableHandler) Lock(c *gin.Context) {
	if err := h.timetables.SetLocked(c.Request.Context(), c.Param("id"), true); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Unlock releases a pinned entry.
func (h *TimetableHandler) Unlock(c *gin.Context) {
	if err := h.timetables.SetLocked(c.Request.Context(), c.Param("id"), false); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
