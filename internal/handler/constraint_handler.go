package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/service"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
	"github.com/arka-edu/timetable-api/pkg/response"
)

// ConstraintHandler exposes availability and preference endpoints.
type ConstraintHandler struct {
	constraints *service.ConstraintService
}

func NewConstraintHandler(constraints *service.ConstraintService) *ConstraintHandler {
	return &ConstraintHandler{constraints: constraints}
}

func (h *ConstraintHandler) List(c *gin.Context) {
	constraints, err := h.constraints.List(c.Request.Context(), c.Query("kind"), c.Query("teacherId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, constraints, nil)
}

func (h *ConstraintHandler) Create(c *gin.Context) {
	var req dto.CreateConstraintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	constraint, err := h.constraints.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, constraint)
}

func (h *ConstraintHandler) Delete(c *gin.Context) {
	if err := h.constraints.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
