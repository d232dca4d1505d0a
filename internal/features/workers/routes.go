package workers

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/meridharani/dharani-api/internal/features/auth"
	"github.com/meridharani/dharani-api/internal/middleware"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database) *Repository {
	repo := NewRepository(db)
	handler := NewHandler(repo)

	workers := router.Group("/workers")
	workers.Use(middleware.Auth(), middleware.RequireRole(auth.RoleWorker))
	{
		workers.PUT("/availability", handler.SetAvailability)
		workers.GET("/stats", handler.Stats)
	}

	return repo
}
