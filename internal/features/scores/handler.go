package scores

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/pkg/pagination"
	"github.com/meridharani/dharani-api/internal/pkg/response"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// Me godoc
// @Summary Get the authenticated user's points, level and recent awards
// @Tags scores
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.APIResponse
// @Router /scores/me [get]
func (h *Handler) Me(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		response.Unauthorized(c, "Invalid session")
		return
	}

	points, level, err := h.repo.MyTotals(c.Request.Context(), userID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	recent, err := h.repo.RecentEvents(c.Request.Context(), userID, 20)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, MyScoreResponse{
		TotalPoints: points,
		Level:       level,
		Recent:      recent,
	})
}

// Leaderboard godoc
// @Summary Citizen leaderboard ranked by total points
// @Tags scores
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.APIResponse
// @Router /scores/leaderboard [get]
func (h *Handler) Leaderboard(c *gin.Context) {
	page, limit := pagination.FromQuery(c.Query("page"), c.Query("limit"))
	p := pagination.New(page, limit, 0)

	entries, total, err := h.repo.Leaderboard(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Paginated(c, entries, total, p.Limit, p.Page)
}
