package verify

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/meridharani/dharani-api/internal/features/auth"
	"github.com/meridharani/dharani-api/internal/middleware"
	"github.com/meridharani/dharani-api/internal/pkg/cloudinary"
	"github.com/meridharani/dharani-api/internal/pkg/vision"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, assignments AssignmentStore, pool WorkerPool, resolver ReportResolver, scores ScoreKeeper, notifier Notifier, classifier vision.Classifier, uploads *cloudinary.Service, cleanThreshold, dirtyThreshold float64) *Service {
	repo := NewRepository(db)
	service := NewService(repo, assignments, pool, resolver, scores, notifier, classifier, cleanThreshold, dirtyThreshold)
	handler := NewHandler(service, repo, uploads)

	router.POST("/assignments/:id/verify",
		middleware.Auth(), middleware.RequireRole(auth.RoleWorker), handler.Verify)

	review := router.Group("/review")
	review.Use(middleware.Auth(), middleware.RequireRole(auth.RoleAdmin))
	{
		review.GET("", handler.ListReview)
		review.POST("/:id/resolve", handler.ResolveReview)
	}

	return service
}
