package dispatch

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/meridharani/dharani-api/internal/features/auth"
	"github.com/meridharani/dharani-api/internal/features/reports"
	"github.com/meridharani/dharani-api/internal/middleware"
)

// RegisterRoutes mounts the assignment endpoints and returns the engine
// (for the report pipeline and verification) and the scheduler (started
// by main).
func RegisterRoutes(router *gin.RouterGroup, db *mongo.Database, pool WorkerPool, reportRepo *reports.Repository, reportSvc *reports.Service, scores ScoreKeeper, notifier Notifier, weights Weights, offerTTL, tick time.Duration) (*Engine, *Repository, *Scheduler) {
	repo := NewRepository(db)
	engine := NewEngine(repo, pool, reportRepo, reportSvc, scores, notifier, weights, offerTTL)
	scheduler := NewScheduler(engine, reportRepo, reportSvc, tick)
	handler := NewHandler(engine, repo)

	assignments := router.Group("/assignments")
	assignments.Use(middleware.Auth(), middleware.RequireRole(auth.RoleWorker))
	{
		assignments.GET("", handler.List)
		assignments.GET("/:id", handler.Get)
		assignments.POST("/:id/accept", handler.Accept)
		assignments.POST("/:id/decline", handler.Decline)
	}

	return engine, repo, scheduler
}
