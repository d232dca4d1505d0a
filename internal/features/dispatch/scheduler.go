package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/meridharani/dharani-api/internal/features/reports"
	"github.com/meridharani/dharani-api/internal/pkg/logger"
	"github.com/meridharani/dharani-api/pkg/apperr"
)

// Reports rejected for a collaborator timeout get this many automatic
// retries before they need a manual requeue.
const maxAutoRetries = 5

// Scheduler is the background sweep that keeps the pipeline moving:
// stale offers expire, classified reports without a worker get
// re-dispatched, and reports rejected by a collaborator timeout are
// reset for another attempt.
type Scheduler struct {
	engine     *Engine
	reportRepo *reports.Repository
	reportSvc  *reports.Service
	tick       time.Duration
}

func NewScheduler(engine *Engine, reportRepo *reports.Repository, reportSvc *reports.Service, tick time.Duration) *Scheduler {
	return &Scheduler{
		engine:     engine,
		reportRepo: reportRepo,
		reportSvc:  reportSvc,
		tick:       tick,
	}
}

// Start runs the sweep loop until ctx is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
	logger.Info("dispatch scheduler started, tick %s", s.tick)
}

func (s *Scheduler) sweep(ctx context.Context) {
	s.engine.ExpireStaleOffers(ctx)
	s.redispatchClassified(ctx)
	s.resetTimedOutRejections(ctx)
}

// redispatchClassified retries reports that classified but found no
// worker at the time
func (s *Scheduler) redispatchClassified(ctx context.Context) {
	stuck, err := s.reportRepo.ListByStatus(ctx, reports.StatusClassified, s.tick, 50)
	if err != nil {
		logger.Error("list classified reports: %v", err)
		return
	}

	for i := range stuck {
		err := s.engine.DispatchReport(ctx, &stuck[i])
		if err == nil {
			continue
		}
		if errors.Is(err, apperr.ErrNoWorkerAvailable) {
			// still nobody free, stop early: later reports won't fare better
			return
		}
		logger.Error("re-dispatch report %s: %v", stuck[i].TrackingID, err)
	}
}

// resetTimedOutRejections gives collaborator-timeout rejections another
// pass through classification once the sweep interval has elapsed
func (s *Scheduler) resetTimedOutRejections(ctx context.Context) {
	rejected, err := s.reportRepo.ListByStatus(ctx, reports.StatusRejected, s.tick, 50)
	if err != nil {
		logger.Error("list rejected reports: %v", err)
		return
	}

	for i := range rejected {
		report := &rejected[i]
		if report.StatusReason != reports.ReasonClassifyTimeout {
			continue
		}
		if report.ClassifyAttempts >= maxAutoRetries {
			continue
		}
		if err := s.reportSvc.Requeue(ctx, report, "Retrying classification"); err != nil {
			logger.Error("reset rejected report %s: %v", report.TrackingID, err)
		}
	}
}
