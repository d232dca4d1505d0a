// ================== internal/features/auth/routes.go ==================
package auth

import (
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/meridharani/dharani-api/internal/config"
	"github.com/meridharani/dharani-api/internal/middleware"
)

func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, cfg *config.Config) *Repository {
	repo := NewRepository(db)
	handler := NewHandler(repo, cfg)

	auth := router.Group("/auth")
	{
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
		auth.POST("/google", handler.GoogleSignIn)

		me := auth.Group("")
		me.Use(middleware.Auth())
		{
			me.GET("/me", handler.Me)
			me.PUT("/me/location", handler.UpdateLocation)
			me.PUT("/me/device", handler.UpdateDeviceToken)
		}
	}

	return repo
}
