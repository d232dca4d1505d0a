package reports

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/features/auth"
	"github.com/meridharani/dharani-api/internal/pkg/cloudinary"
	"github.com/meridharani/dharani-api/internal/pkg/geo"
	"github.com/meridharani/dharani-api/internal/pkg/pagination"
	"github.com/meridharani/dharani-api/internal/pkg/response"
)

type Handler struct {
	service *Service
	repo    *Repository
	uploads *cloudinary.Service
}

func NewHandler(service *Service, repo *Repository, uploads *cloudinary.Service) *Handler {
	return &Handler{service: service, repo: repo, uploads: uploads}
}

// Create godoc
// @Summary Submit a waste report with a photo
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Waste photo (jpg/png/webp, max 10MB)"
// @Param latitude formData number true "Latitude"
// @Param longitude formData number true "Longitude"
// @Param description formData string false "Optional description"
// @Success 201 {object} response.APIResponse
// @Failure 400 {object} response.APIResponse
// @Router /reports [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateReportRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid report fields", "INVALID_FORM")
		return
	}

	point := geo.Point{Latitude: req.Latitude, Longitude: req.Longitude}
	if !geo.Valid(point) {
		response.BadRequest(c, "Coordinates out of range", "INVALID_COORDINATES")
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		response.BadRequest(c, "Waste photo is required", "IMAGE_REQUIRED")
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

	trackingID := uuid.NewString()
	upload, err := h.uploads.UploadReportImage(c.Request.Context(), file, trackingID)
	if err != nil {
		response.InternalServerError(c, "Image upload failed", "UPLOAD_FAILED")
		return
	}

	reporterID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		response.Unauthorized(c, "Invalid session")
		return
	}

	report := &Report{
		TrackingID:  trackingID,
		ReporterID:  reporterID,
		Description: req.Description,
		Location: auth.Location{
			Point:   point,
			Area:    req.Area,
			City:    req.City,
			Pincode: req.Pincode,
		},
		Image: ImageRef{URL: upload.URL, PublicID: upload.PublicID},
	}

	if err := h.service.Submit(c.Request.Context(), report); err != nil {
		// don't leave the uploaded asset orphaned
		h.uploads.Delete(c.Request.Context(), upload.PublicID)
		response.FromError(c, err)
		return
	}

	response.Created(c, report, "Report submitted")
}

// List godoc
// @Summary List the authenticated citizen's reports
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} response.APIResponse
// @Router /reports [get]
func (h *Handler) List(c *gin.Context) {
	var query ListReportsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	reporterID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		response.Unauthorized(c, "Invalid session")
		return
	}

	p := pagination.New(query.Page, query.Limit, 0)
	reports, total, err := h.repo.ListByReporter(c.Request.Context(), reporterID, query.Status, p)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Paginated(c, reports, total, p.Limit, p.Page)
}

// Get godoc
// @Summary Get one of the authenticated citizen's reports
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /reports/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid report id", "INVALID_ID")
		return
	}

	report, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if report.ReporterID.Hex() != c.GetString("userID") {
		response.NotFound(c, "Report not found", "NOT_FOUND")
		return
	}

	response.Success(c, report)
}

// Track godoc
// @Summary Track a report's progress by its public tracking id
// @Description Public endpoint, no authentication. Returns the status
// @Description timeline without reporter details.
// @Tags reports
// @Produce json
// @Param trackingId path string true "Tracking ID"
// @Success 200 {object} response.APIResponse
// @Failure 404 {object} response.APIResponse
// @Router /track/{trackingId} [get]
func (h *Handler) Track(c *gin.Context) {
	report, err := h.repo.GetByTrackingID(c.Request.Context(), c.Param("trackingId"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{
		"trackingId": report.TrackingID,
		"status":     report.Status,
		"category":   report.Category,
		"timeline":   report.Timeline,
		"createdAt":  report.CreatedAt,
		"resolvedAt": report.ResolvedAt,
	})
}

// Retry godoc
// @Summary Requeue a rejected report
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Success 200 {object} response.APIResponse
// @Failure 409 {object} response.APIResponse
// @Router /reports/{id}/retry [post]
func (h *Handler) Retry(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid report id", "INVALID_ID")
		return
	}

	requesterID, err := primitive.ObjectIDFromHex(c.GetString("userID"))
	if err != nil {
		response.Unauthorized(c, "Invalid session")
		return
	}

	report, err := h.service.RetryClassification(c.Request.Context(), id, requesterID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, report, "Report requeued")
}
