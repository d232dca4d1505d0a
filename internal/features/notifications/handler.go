package notifications

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

// List godoc
// @Summary List the authenticated user's notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.APIResponse
// @Router /notifications [get]
func (h *Handler) List(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		response.Unauthorized(c, "Invalid session")
		return
	}

	page, limit := pagination.FromQuery(c.Query("page"), c.Query("limit"))
	p := pagination.New(page, limit, 0)

	notifications, total, err := h.repo.ListByUser(c.Request.Context(), userID, p)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Paginated(c, notifications, total, p.Limit, p.Page)
}

// MarkRead godoc
// @Summary Mark a notification as read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /notifications/{id}/read [post]
func (h *Handler) MarkRead(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid notification id", "INVALID_ID")
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		response.Unauthorized(c, "Invalid session")
		return
	}

	if err := h.repo.MarkRead(c.Request.Context(), id, userID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, nil, "Notification marked read")
}
