package workers

import (
	"github.com/gin-gonic/gin"

	"github.com/meridharani/dharani-api/internal/pkg/response"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// SetAvailability godoc
// @Summary Toggle the authenticated worker's availability
// @Tags workers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SetAvailabilityRequest true "Availability flag"
// @Success 200 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /workers/availability [put]
func (h *Handler) SetAvailability(c *gin.Context) {
	var req SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	workerID := c.GetString("userID")
	if err := h.repo.SetAvailability(c.Request.Context(), workerID, *req.Available); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{"available": *req.Available})
}

// Stats godoc
// @Summary Get the authenticated worker's performance stats
// @Tags workers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /workers/stats [get]
func (h *Handler) Stats(c *gin.Context) {
	profile, err := h.repo.GetProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, StatsResponse{
		Available:         profile.Available,
		Reputation:        profile.Reputation,
		ActiveAssignments: profile.ActiveAssignments,
		MaxConcurrent:     profile.MaxConcurrent,
		JobsCompleted:     profile.JobsCompleted,
		TotalPoints:       profile.TotalPoints,
	})
}
