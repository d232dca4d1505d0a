package dispatch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/features/reports"
	"github.com/meridharani/dharani-api/internal/features/workers"
	"github.com/meridharani/dharani-api/internal/pkg/geo"
	"github.com/meridharani/dharani-api/internal/pkg/logger"
	"github.com/meridharani/dharani-api/pkg/apperr"
)

// WorkerPool is the slice of worker state the engine needs: the scoring
// snapshot and the atomic slot operations.
type WorkerPool interface {
	ListAvailable(ctx context.Context) ([]workers.Candidate, error)
	ReserveSlot(ctx context.Context, workerID primitive.ObjectID) (bool, error)
	ReleaseSlot(ctx context.Context, workerID primitive.ObjectID) error
	AdjustReputation(ctx context.Context, workerID primitive.ObjectID, delta float64) error
}

// ScoreKeeper records point awards on the worker side of the ledger
type ScoreKeeper interface {
	AwardWorker(ctx context.Context, userID primitive.ObjectID, points int, reason string, reportID primitive.ObjectID) error
}

// Notifier delivers user-facing notifications
type Notifier interface {
	Notify(ctx context.Context, userID primitive.ObjectID, title, body string, data map[string]string)
}

// Weights tune the dispatch score. Lower score wins: distance in km,
// current load per assignment, and how far reputation sits below 5.
type Weights struct {
	Distance   float64
	Load       float64
	Reputation float64
}

// Point deltas on the worker ledger
const PointsOfferDeclined = -5

// Reputation deltas applied by dispatch outcomes
const reputationDeclineDelta = -0.2

// Engine picks the best worker for a classified report and manages the
// offer lifecycle.
type Engine struct {
	repo       *Repository
	pool       WorkerPool
	reportRepo *reports.Repository
	reportSvc  *reports.Service
	scores     ScoreKeeper
	notifier   Notifier
	weights    Weights
	offerTTL   time.Duration
}

func NewEngine(repo *Repository, pool WorkerPool, reportRepo *reports.Repository, reportSvc *reports.Service, scores ScoreKeeper, notifier Notifier, weights Weights, offerTTL time.Duration) *Engine {
	return &Engine{
		repo:       repo,
		pool:       pool,
		reportRepo: reportRepo,
		reportSvc:  reportSvc,
		scores:     scores,
		notifier:   notifier,
		weights:    weights,
		offerTTL:   offerTTL,
	}
}

type rankedCandidate struct {
	workers.Candidate
	Score      float64
	DistanceKm float64
}

// rank scores the candidate snapshot against a report location and
// orders it best-first. Candidates at or over their cap are dropped.
// The snapshot arrives in registration order and the sort is stable, so
// ties go to the earliest-registered worker.
func rank(candidates []workers.Candidate, location geo.Point, w Weights) []rankedCandidate {
	ranked := make([]rankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.ActiveAssignments >= c.MaxConcurrent {
			continue
		}
		distance := geo.DistanceKm(location, c.Location.Point)
		ranked = append(ranked, rankedCandidate{
			Candidate:  c,
			DistanceKm: distance,
			Score: w.Distance*distance +
				w.Load*float64(c.ActiveAssignments) +
				w.Reputation*(5-c.Reputation),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score < ranked[j].Score
	})
	return ranked
}

// DispatchReport offers the report to the best available worker. It walks
// the ranked snapshot and takes the first worker whose slot reservation
// succeeds; the snapshot may be stale, the reservation never is. Returns
// ErrNoWorkerAvailable when the snapshot is empty or every reservation is
// lost.
func (e *Engine) DispatchReport(ctx context.Context, report *reports.Report) error {
	candidates, err := e.pool.ListAvailable(ctx)
	if err != nil {
		return fmt.Errorf("list available workers: %w", err)
	}

	for _, candidate := range rank(candidates, report.Location.Point, e.weights) {
		reserved, err := e.pool.ReserveSlot(ctx, candidate.ID)
		if err != nil {
			return fmt.Errorf("reserve slot: %w", err)
		}
		if !reserved {
			continue
		}

		assignment := &Assignment{
			ReportID:       report.ID,
			WorkerID:       candidate.ID,
			Category:       report.Category,
			ReportLocation: report.Location,
			ReportImage:    report.Image.URL,
			Score:          candidate.Score,
			DistanceKm:     candidate.DistanceKm,
			OfferExpiresAt: time.Now().Add(e.offerTTL),
		}
		if err := e.repo.Create(ctx, assignment); err != nil {
			e.releaseSlot(ctx, candidate.ID)
			return fmt.Errorf("create assignment: %w", err)
		}

		if err := e.reportRepo.Transition(ctx, report.ID, reports.StatusClassified, reports.StatusAssigned, "", "Offered to "+candidate.FullName); err != nil {
			// lost the race on the report, roll the offer back
			if delErr := e.repo.Delete(ctx, assignment.ID); delErr != nil {
				logger.Error("roll back assignment %s: %v", assignment.ID.Hex(), delErr)
			}
			e.releaseSlot(ctx, candidate.ID)
			return err
		}

		e.notifier.Notify(ctx, candidate.ID,
			"New cleanup job",
			fmt.Sprintf("A %s waste report %.1f km away needs cleanup", report.Category, candidate.DistanceKm),
			map[string]string{"assignmentId": assignment.ID.Hex(), "reportId": report.ID.Hex()},
		)

		logger.Info("report %s offered to worker %s (score %.2f, %.2f km)",
			report.TrackingID, candidate.ID.Hex(), candidate.Score, candidate.DistanceKm)
		return nil
	}

	return apperr.ErrNoWorkerAvailable
}

// Accept handles a worker taking an offer
func (e *Engine) Accept(ctx context.Context, assignmentID, workerID primitive.ObjectID) (*Assignment, error) {
	if err := e.repo.Accept(ctx, assignmentID, workerID); err != nil {
		return nil, err
	}

	assignment, err := e.repo.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	if err := e.reportRepo.Transition(ctx, assignment.ReportID, reports.StatusAssigned, reports.StatusInProgress, "", "Worker accepted the job"); err != nil {
		logger.Error("move report %s to in_progress: %v", assignment.ReportID.Hex(), err)
	}

	if report, err := e.reportRepo.GetByID(ctx, assignment.ReportID); err == nil {
		e.notifier.Notify(ctx, report.ReporterID,
			"Cleanup underway",
			"A worker accepted your report and is on the way",
			map[string]string{"reportId": report.ID.Hex(), "trackingId": report.TrackingID},
		)
	}

	return assignment, nil
}

// Decline handles a worker turning an offer down: the offer expires, the
// slot is released, the worker takes the penalty, and the report goes
// back through the queue for re-dispatch.
func (e *Engine) Decline(ctx context.Context, assignmentID, workerID primitive.ObjectID) error {
	assignment, err := e.repo.GetByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if assignment.WorkerID != workerID {
		return apperr.ErrForbidden
	}

	if err := e.repo.Expire(ctx, assignmentID, ExpiryDeclined); err != nil {
		return err
	}
	e.releaseSlot(ctx, workerID)

	if err := e.scores.AwardWorker(ctx, workerID, PointsOfferDeclined, "offer_declined", assignment.ReportID); err != nil {
		logger.Error("record decline penalty for worker %s: %v", workerID.Hex(), err)
	}
	if err := e.pool.AdjustReputation(ctx, workerID, reputationDeclineDelta); err != nil {
		logger.Error("adjust reputation for worker %s: %v", workerID.Hex(), err)
	}

	e.requeueReport(ctx, assignment.ReportID, reports.ReasonOfferDeclined, "Offer declined, finding another worker")
	return nil
}

// ExpireStaleOffers sweeps offers past their TTL. Called by the
// scheduler on every tick.
func (e *Engine) ExpireStaleOffers(ctx context.Context) {
	stale, err := e.repo.ListExpiredOffers(ctx, 100)
	if err != nil {
		logger.Error("list expired offers: %v", err)
		return
	}

	for _, assignment := range stale {
		if err := e.repo.Expire(ctx, assignment.ID, ExpiryTimedOut); err != nil {
			// someone accepted or declined between the list and the update
			continue
		}
		e.releaseSlot(ctx, assignment.WorkerID)
		logger.Info("offer %s to worker %s expired", assignment.ID.Hex(), assignment.WorkerID.Hex())

		e.requeueReport(ctx, assignment.ReportID, reports.ReasonOfferExpired, "Offer expired, finding another worker")
	}
}

// releaseSlot returns a reserved slot to the pool. A failed release
// leaks the slot until the worker's next completion.
func (e *Engine) releaseSlot(ctx context.Context, workerID primitive.ObjectID) {
	if err := e.pool.ReleaseSlot(ctx, workerID); err != nil {
		logger.Error("release slot for worker %s: %v", workerID.Hex(), err)
	}
}

// requeueReport walks a report through the only allowed backward path:
// assigned -> rejected(reason) -> pending, then back onto the classify
// queue (which short-circuits to dispatch since the category is kept).
func (e *Engine) requeueReport(ctx context.Context, reportID primitive.ObjectID, reason, message string) {
	report, err := e.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		logger.Error("load report %s for requeue: %v", reportID.Hex(), err)
		return
	}
	if report.Status != reports.StatusAssigned {
		return
	}

	if err := e.reportRepo.Transition(ctx, reportID, reports.StatusAssigned, reports.StatusRejected, reason, message); err != nil {
		logger.Error("reject report %s for requeue: %v", reportID.Hex(), err)
		return
	}
	report.Status = reports.StatusRejected
	if err := e.reportSvc.Requeue(ctx, report, "Back in the queue"); err != nil {
		logger.Error("requeue report %s: %v", reportID.Hex(), err)
	}
}
