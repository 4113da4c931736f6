package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arka-edu/timetable-api/internal/dto"
	"github.com/arka-edu/timetable-api/internal/service"
	appErrors "github.com/arka-edu/timetable-api/pkg/errors"
	"github.com/arka-edu/timetable-api/pkg/response"
)

// GenerationHandler exposes timetable generation runs.
type GenerationHandler struct {
	generations *service.GenerationService
}

func NewGenerationHandler(generations *service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generations: generations}
}

// Start kicks off an asynchronous generation run. The response carries
// the pending run; clients poll Get for completion.
func (h *GenerationHandler) Start(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	run, err := h.generations.Start(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, dto.NewGenerationRunResponse(run), nil)
}

func (h *GenerationHandler) Get(c *gin.Context) {
	run, err := h.generations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewGenerationRunResponse(run), nil)
}

func (h *GenerationHandler) Latest(c *gin.Context) {
	run, err := h.generations.Latest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewGenerationRunResponse(run), nil)
}

func (h *GenerationHandler) List(c *gin.Context) {
	limit := 20
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	runs, err := h.generations.List(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.GenerationRunResponse, 0, len(runs))
	for i := range runs {
		out = append(out, dto.NewGenerationRunResponse(&runs[i]))
	}
	response.JSON(c, http.StatusOK, out, nil)
}
