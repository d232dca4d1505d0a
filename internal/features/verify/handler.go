package verify

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/features/reports"
	"github.com/meridharani/dharani-api/internal/pkg/cloudinary"
	"github.com/meridharani/dharani-api/internal/pkg/pagination"
	"github.com/meridharani/dharani-api/internal/pkg/response"
	"github.com/meridharani/dharani-api/pkg/apperr"
)

type Handler struct {
	service *Service
	repo    *Repository
	uploads *cloudinary.Service
}

func NewHandler(service *Service, repo *Repository, uploads *cloudinary.Service) *Handler {
	return &Handler{service: service, repo: repo, uploads: uploads}
}

// Verify godoc
// @Summary Submit an after-cleanup photo for verification
// @Tags assignments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Assignment ID"
// @Param proof formData file true "After-cleanup photo (jpg/png/webp, max 10MB)"
// @Success 200 {object} response.APIResponse
// @Success 202 {object} response.APIResponse "Routed to manual review"
// @Failure 409 {object} response.APIResponse
// @Failure 504 {object} response.APIResponse
// @Router /assignments/{id}/verify [post]
func (h *Handler) Verify(c *gin.Context) {
	assignmentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid assignment id", "INVALID_ID")
		return
	}

	workerID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		response.Unauthorized(c, "Invalid session")
		return
	}

	header, err := c.FormFile("proof")
	if err != nil {
		response.BadRequest(c, "Proof photo is required", "PROOF_REQUIRED")
		return
	}
	if err := cloudinary.ValidateImageFile(header); err != nil {
		response.BadRequest(c, err.Error(), "INVALID_IMAGE")
		return
	}

	file, err := header.Open()
	if err != nil {
		response.InternalServerError(c, "Could not read uploaded file")
		return
	}
	defer file.Close()

	upload, err := h.uploads.UploadProofImage(c.Request.Context(), file, uuid.NewString())
	if err != nil {
		response.InternalServerError(c, "Image upload failed", "UPLOAD_FAILED")
		return
	}
	proof := reports.ImageRef{URL: upload.URL, PublicID: upload.PublicID}

	outcome, err := h.service.Verify(c.Request.Context(), assignmentID, workerID, proof)
	if err != nil {
		h.uploads.Delete(c.Request.Context(), upload.PublicID)
		if errors.Is(err, apperr.ErrVerificationInconclusive) {
			response.Accepted(c, nil, "Verification already under review")
			return
		}
		response.FromError(c, err)
		return
	}

	switch outcome.Result {
	case OutcomePendingReview:
		response.Accepted(c, outcome, "Verification routed to manual review")
	case OutcomeNotCleaned:
		response.Success(c, outcome, "Cleanup not verified, please retry")
	default:
		response.Success(c, outcome, "Cleanup verified")
	}
}

// ListReview godoc
// @Summary List verifications waiting on a manual decision
// @Tags review
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.APIResponse
// @Router /review [get]
func (h *Handler) ListReview(c *gin.Context) {
	page, limit := pagination.FromQuery(c.Query("page"), c.Query("limit"))
	p := pagination.New(page, limit, 0)

	items, total, err := h.repo.ListPending(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Paginated(c, items, total, p.Limit, p.Page)
}

// ResolveReview godoc
// @Summary Apply a manual decision to an inconclusive verification
// @Tags review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review item ID"
// @Param request body ResolveReviewRequest true "Decision"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /review/{id}/resolve [post]
func (h *Handler) ResolveReview(c *gin.Context) {
	reviewID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid review id", "INVALID_ID")
		return
	}

	reviewerID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		response.Unauthorized(c, "Invalid session")
		return
	}

	var req ResolveReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindJSONError(c, err)
		return
	}

	if err := h.service.ResolveReview(c.Request.Context(), reviewID, reviewerID, *req.Approve); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, nil, "Review resolved")
}
