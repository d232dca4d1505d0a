package dispatch

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/pkg/pagination"
	"github.com/meridharani/dharani-api/internal/pkg/response"
)

type Handler struct {
	engine *Engine
	repo   *Repository
}

func NewHandler(engine *Engine, repo *Repository) *Handler {
	return &Handler{engine: engine, repo: repo}
}

func (h *Handler) workerID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		response.Unauthorized(c, "Invalid session")
		return primitive.NilObjectID, false
	}
	return id, true
}

// List godoc
// @Summary List the authenticated worker's assignments
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.APIResponse
// @Router /assignments [get]
func (h *Handler) List(c *gin.Context) {
	var query ListAssignmentsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	workerID, ok := h.workerID(c)
	if !ok {
		return
	}

	p := pagination.New(query.Page, query.Limit, 0)
	assignments, total, err := h.repo.ListByWorker(c.Request.Context(), workerID, query.Status, p)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Paginated(c, assignments, total, p.Limit, p.Page)
}

// Get godoc
// @Summary Get one of the authenticated worker's assignments
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /assignments/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid assignment id", "INVALID_ID")
		return
	}

	workerID, ok := h.workerID(c)
	if !ok {
		return
	}

	assignment, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if assignment.WorkerID != workerID {
		response.NotFound(c, "Assignment not found", "NOT_FOUND")
		return
	}

	response.Success(c, assignment)
}

// Accept godoc
// @Summary Accept an offered assignment
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /assignments/{id}/accept [post]
func (h *Handler) Accept(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid assignment id", "INVALID_ID")
		return
	}

	workerID, ok := h.workerID(c)
	if !ok {
		return
	}

	assignment, err := h.engine.Accept(c.Request.Context(), id, workerID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, assignment, "Assignment accepted")
}

// Decline godoc
// @Summary Decline an offered assignment
// @Tags assignments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /assignments/{id}/decline [post]
func (h *Handler) Decline(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid assignment id", "INVALID_ID")
		return
	}

	workerID, ok := h.workerID(c)
	if !ok {
		return
	}

	if err := h.engine.Decline(c.Request.Context(), id, workerID); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, nil, "Assignment declined")
}
