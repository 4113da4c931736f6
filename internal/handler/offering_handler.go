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

// OfferingHandler exposes teaching assignment endpoints.
type OfferingHandler struct {
	offerings *service.OfferingService
}

func NewOfferingHandler(offerings *service.OfferingService) *OfferingHandler {
	return &OfferingHandler{offerings: offerings}
}

func (h *OfferingHandler) List(c *gin.Context) {
	filter := models.OfferingFilter{
		TeacherID: c.Query("teacherId"),
		CourseID:  c.Query("courseId"),
		SectionID: c.Query("sectionId"),
	}
	offerings, err := h.offerings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offerings, nil)
}

func (h *OfferingHandler) Get(c *gin.Context) {
	offering, err := h.offerings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offering, nil)
}

func (h *OfferingHandler) Create(c *gin.Context) {
	var req dto.CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	offering, err := h.offerings.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, offering)
}

func (h *OfferingHandler) Update(c *gin.Context) {
	var req dto.CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	offering, err := h.offerings.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offering, nil)
}

func (h *OfferingHandler) Delete(c *gin.Context) {
	if err := h.offerings.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
