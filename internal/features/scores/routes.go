package scores

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/meridharani/dharani-api/internal/middleware"
)

// RegisterRoutes mounts the score endpoints and returns the service so
// the report and dispatch pipelines can award points.
func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database) *Service {
	repo := NewRepository(db)
	service := NewService(repo)
	handler := NewHandler(repo)

	scores := router.Group("/scores")
	scores.Use(middleware.Auth())
	{
		scores.GET("/me", handler.Me)
		scores.GET("/leaderboard", handler.Leaderboard)
	}

	return service
}
