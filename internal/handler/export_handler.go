package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arka-edu/timetable-api/internal/models"
	"github.com/arka-edu/timetable-api/internal/service"
	"github.com/arka-edu/timetable-api/pkg/response"
)

// ExportHandler renders and serves timetable export files.
type ExportHandler struct {
	exports *service.ExportService
}

func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Export renders the requested view. format defaults to csv; an empty
// generationId exports the latest successful run.
func (h *ExportHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	filter := models.TimetableFilter{
		SectionID: c.Query("sectionId"),
		TeacherID: c.Query("teacherId"),
		RoomID:    c.Query("roomId"),
	}
	result, err := h.exports.Export(c.Request.Context(), c.Query("generationId"), format, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download streams an archived export referenced by a signed token.
func (h *ExportHandler) Download(c *gin.Context) {
	file, name, err := h.exports.OpenDownload(c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", "attachment; filename="+name)
	c.File(file.Name())
}
