package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/service"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
	"github.com/arka-edu/timetable-api/pkg/response"
)

// ImportHandler accepts roster CSV uploads.
type ImportHandler struct {
	imports *service.ImportService
}

func NewImportHandler(imports *service.ImportService) *ImportHandler {
	return &ImportHandler{imports: imports}
}

func (h *ImportHandler) readUpload(c *gin.Context) ([]byte, bool) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "multipart field \"file\" is required"))
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.imports.MaxFileSizeBytes()+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return nil, false
	}
	return data, true
}

func (h *ImportHandler) respond(c *gin.Context, summary *dto.ImportSummary, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

func (h *ImportHandler) Teachers(c *gin.Context) {
	data, ok := h.readUpload(c)
	if !ok {
		return
	}
	summary, err := h.imports.ImportTeachers(c.Request.Context(), data)
	h.respond(c, summary, err)
}

func (h *ImportHandler) Courses(c *gin.Context) {
	data, ok := h.readUpload(c)
	if !ok {
		return
	}
	summary, err := h.imports.ImportCourses(c.Request.Context(), data)
	h.respond(c, summary, err)
}

func (h *ImportHandler) Sections(c *gin.Context) {
	data, ok := h.readUpload(c)
	if !ok {
		return
	}
	summary, err := h.imports.ImportSections(c.Request.Context(), data)
	h.respond(c, summary, err)
}

func (h *ImportHandler) Rooms(c *gin.Context) {
	data, ok := h.readUpload(c)
	if !ok {
		return
	}
	summary, err := h.imports.ImportRooms(c.Request.Context(), data)
	h.respond(c, summary, err)
}

func (h *ImportHandler) TimeSlots(c *gin.Context) {
	data, ok := h.readUpload(c)
	if !ok {
		return
	}
	summary, err := h.imports.ImportTimeSlots(c.Request.Context(), data)
	h.respond(c, summary, err)
}

func (h *ImportHandler) Offerings(c *gin.Context) {
	data, ok := h.readUpload(c)
	if !ok {
		return
	}
	summary, err := h.imports.ImportOfferings(c.Request.Context(), data)
	h.respond(c, summary, err)
}
