package reports

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/meridharani/dharani-api/internal/features/auth"
	"github.com/meridharani/dharani-api/internal/middleware"
	"github.com/meridharani/dharani-api/internal/pkg/cloudinary"
	"github.com/meridharani/dharani-api/internal/pkg/ratelimit"
	"github.com/meridharani/dharani-api/internal/pkg/vision"
)

// RegisterRoutes mounts the report endpoints and returns the service and
// repository so the dispatch and verification features can be wired to
// them.
func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, classifier vision.Classifier, uploads *cloudinary.Service, scores ScoreKeeper, notifier Notifier, limiter *ratelimit.RateLimiter, workers int, minConfidence float64) (*Service, *Repository) {
	repo := NewRepository(db)
	service := NewService(repo, classifier, scores, notifier, workers, minConfidence)
	handler := NewHandler(service, repo, uploads)

	// public tracking, no auth
	router.GET("/track/:trackingId", handler.Track)

	reports := router.Group("/reports")
	reports.Use(middleware.Auth(), middleware.RequireRole(auth.RoleCitizen))
	{
		reports.POST("", ratelimit.Middleware(limiter), handler.Create)
		reports.GET("", handler.List)
		reports.GET("/:id", handler.Get)
		reports.POST("/:id/retry", handler.Retry)
	}

	return service, repo
}
