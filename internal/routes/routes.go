package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/meridharani/dharani-api/internal/config"
	"github.com/meridharani/dharani-api/internal/features/auth"
	"github.com/meridharani/dharani-api/internal/features/dispatch"
	"github.com/meridharani/dharani-api/internal/features/notifications"
	"github.com/meridharani/dharani-api/internal/features/reports"
	"github.com/meridharani/dharani-api/internal/features/scores"
	"github.com/meridharani/dharani-api/internal/features/verify"
	"github.com/meridharani/dharani-api/internal/features/workers"
	"github.com/meridharani/dharani-api/internal/pkg/cloudinary"
	"github.com/meridharani/dharani-api/internal/pkg/logger"
	"github.com/meridharani/dharani-api/internal/pkg/push"
	"github.com/meridharani/dharani-api/internal/pkg/ratelimit"
	"github.com/meridharani/dharani-api/internal/pkg/vision"
)

// Background holds the long-running pieces main starts after the routes
// are mounted.
type Background struct {
	Reports   *reports.Service
	Scheduler *dispatch.Scheduler
}

// SetupRoutes wires every feature together under /api/v1
func SetupRoutes(router *gin.Engine, db *mongo.Database, cfg *config.Config) *Background {
	api := router.Group("/api/v1")

	// shared infrastructure
	classifier := vision.NewClient(cfg.VisionBaseURL, cfg.VisionAPIKey, cfg.VisionTimeout, cfg.VisionMaxAttempts, cfg.VisionBackoff)

	uploads, err := cloudinary.NewService(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
	if err != nil {
		logger.Warn("cloudinary not configured: %v", err)
	}

	pushSvc, err := push.NewService(context.Background(), cfg.FirebaseServiceAccountPath)
	if err != nil {
		logger.Warn("push notifications disabled: %v", err)
	}

	submitLimiter := ratelimit.New(10, time.Minute)
	submitLimiter.StartCleanup(5 * time.Minute)

	// features
	usersRepo := auth.RegisterRoutes(api, db, cfg)
	workersRepo := workers.RegisterRoutes(api, db)
	scoreSvc := scores.RegisterRoutes(api, db)
	notifSvc := notifications.RegisterRoutes(api, db, usersRepo, pushSvc)

	reportSvc, reportRepo := reports.RegisterRoutes(api, db, classifier, uploads, scoreSvc, notifSvc, submitLimiter, cfg.ClassifyWorkers, cfg.ClassifyMinConfidence)

	weights := dispatch.Weights{
		Distance:   cfg.DispatchDistanceWeight,
		Load:       cfg.DispatchLoadWeight,
		Reputation: cfg.DispatchReputationWeight,
	}
	engine, assignRepo, scheduler := dispatch.RegisterRoutes(api, db, workersRepo, reportRepo, reportSvc, scoreSvc, notifSvc, weights, cfg.OfferTTL, cfg.SchedulerTick)
	reportSvc.SetDispatcher(engine)

	verify.RegisterRoutes(api, db, assignRepo, workersRepo, reportSvc, scoreSvc, notifSvc, classifier, uploads, cfg.VerifyCleanThreshold, cfg.VerifyDirtyThreshold)

	return &Background{Reports: reportSvc, Scheduler: scheduler}
}
