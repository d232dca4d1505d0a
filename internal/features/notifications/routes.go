package notifications

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/meridharani/dharani-api/internal/features/auth"
	"github.com/meridharani/dharani-api/internal/middleware"
	"github.com/meridharani/dharani-api/internal/pkg/push"
)

// RegisterRoutes mounts the notification endpoints and returns the
// service for the pipelines to emit through.
func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, users *auth.Repository, pushSvc *push.Service) *Service {
	repo := NewRepository(db)
	service := NewService(repo, users, pushSvc)
	handler := NewHandler(repo)

	notifications := router.Group("/notifications")
	notifications.Use(middleware.Auth())
	{
		notifications.GET("", handler.List)
		notifications.POST("/:id/read", handler.MarkRead)
	}

	return service
}
