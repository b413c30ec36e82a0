package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/combined-routes/internal/models"
	"github.com/jengzang/combined-routes/internal/service"
	"github.com/jengzang/combined-routes/pkg/response"
)

// RunHandler handles HTTP requests for recorded runs
type RunHandler struct {
	catalog *service.CatalogService
}

// NewRunHandler creates a new run handler
func NewRunHandler(catalog *service.CatalogService) *RunHandler {
	return &RunHandler{catalog: catalog}
}

// GetRuns handles GET /api/v1/runs
func (h *RunHandler) GetRuns(c *gin.Context) {
	var filter models.RunFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.catalog.GetRuns(filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// GetRun handles GET /api/v1/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	run, err := h.catalog.GetRun(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, run)
}

// GetRunTracks handles GET /api/v1/runs/:id/tracks
func (h *RunHandler) GetRunTracks(c *gin.Context) {
	tracks, err := h.catalog.GetRunTracks(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, gin.H{
		"data":  tracks,
		"count": len(tracks),
	})
}

func (h *RunHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, service.ErrRunNotFound) {
		response.NotFound(c, "Run not found")
		return
	}
	response.InternalError(c, err.Error())
}
