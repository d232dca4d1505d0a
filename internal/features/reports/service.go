package reports

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/pkg/logger"
	"github.com/meridharani/dharani-api/internal/pkg/vision"
	"github.com/meridharani/dharani-api/pkg/apperr"
)

// Dispatcher finds a worker for a classified report. It lives in the
// dispatch feature; the indirection keeps the two packages from importing
// each other.
type Dispatcher interface {
	DispatchReport(ctx context.Context, report *Report) error
}

// ScoreKeeper records point awards on the score ledger
type ScoreKeeper interface {
	AwardCitizen(ctx context.Context, userID primitive.ObjectID, points int, reason string, reportID primitive.ObjectID) error
}

// Notifier delivers user-facing notifications
type Notifier interface {
	Notify(ctx context.Context, userID primitive.ObjectID, title, body string, data map[string]string)
}

// Service owns the report lifecycle up to classification. Submitted
// reports are pushed onto an in-process queue and classified by a fixed
// pool of workers, so the citizen's request never waits on the inference
// collaborator.
type Service struct {
	repo       *Repository
	classifier vision.Classifier
	scores     ScoreKeeper
	notifier   Notifier

	mu         sync.RWMutex
	dispatcher Dispatcher

	queue         chan primitive.ObjectID
	workers       int
	minConfidence float64
}

// Points awarded on the citizen side of the ledger
const (
	PointsReportSubmitted = 10
	PointsReportResolved  = 25
)

func NewService(repo *Repository, classifier vision.Classifier, scores ScoreKeeper, notifier Notifier, workers int, minConfidence float64) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		repo:          repo,
		classifier:    classifier,
		scores:        scores,
		notifier:      notifier,
		queue:         make(chan primitive.ObjectID, 256),
		workers:       workers,
		minConfidence: minConfidence,
	}
}

// SetDispatcher wires the dispatch engine in after construction. Must be
// called before Start.
func (s *Service) SetDispatcher(d Dispatcher) {
	s.mu.Lock()
	s.dispatcher = d
	s.mu.Unlock()
}

// Start launches the classification workers. They drain the queue until
// ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case id := <-s.queue:
					s.classify(ctx, id)
				}
			}
		}()
	}
	logger.Info("classification pool started with %d workers", s.workers)
}

// Submit persists a new report, credits the citizen, and queues it for
// classification
func (s *Service) Submit(ctx context.Context, report *Report) error {
	if err := s.repo.Create(ctx, report); err != nil {
		return err
	}

	if err := s.scores.AwardCitizen(ctx, report.ReporterID, PointsReportSubmitted, "report_submitted", report.ID); err != nil {
		logger.Error("award submit points for report %s: %v", report.TrackingID, err)
	}

	s.Enqueue(report.ID)
	return nil
}

// Enqueue hands a report to the classification pool. Never blocks: if the
// queue is full the report stays pending and the scheduler sweep picks it
// up later.
func (s *Service) Enqueue(id primitive.ObjectID) {
	select {
	case s.queue <- id:
	default:
		logger.Warn("classification queue full, report %s left for sweep", id.Hex())
	}
}

// Requeue resets a rejected report to pending and puts it back on the
// queue. Used when a declined or expired offer sends the report back for
// re-dispatch, and by the citizen-facing retry endpoint.
func (s *Service) Requeue(ctx context.Context, report *Report, message string) error {
	if err := s.repo.Transition(ctx, report.ID, StatusRejected, StatusPending, "", message); err != nil {
		return err
	}
	s.Enqueue(report.ID)
	return nil
}

// RetryClassification lets the reporter requeue their own rejected report
func (s *Service) RetryClassification(ctx context.Context, reportID, requesterID primitive.ObjectID) (*Report, error) {
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.ReporterID != requesterID {
		return nil, apperr.ErrForbidden
	}
	if report.Status != StatusRejected {
		return nil, apperr.ErrInvalidTransition
	}

	if err := s.Requeue(ctx, report, "Retry requested"); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, reportID)
}

func (s *Service) classify(ctx context.Context, id primitive.ObjectID) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.Error("load report %s for classification: %v", id.Hex(), err)
		return
	}
	if report.Status != StatusPending {
		return
	}

	// A requeued report already carries its category; skip straight to
	// dispatch.
	if report.Category != "" {
		if err := s.repo.Transition(ctx, id, StatusPending, StatusClassified, "", "Re-queued for dispatch"); err != nil {
			logger.Error("requeue report %s: %v", report.TrackingID, err)
			return
		}
		s.dispatch(ctx, id)
		return
	}

	result, err := s.classifier.Classify(ctx, report.Image.URL)
	if err != nil {
		s.repo.IncrementClassifyAttempts(ctx, id)
		if errors.Is(err, apperr.ErrCollaboratorTimeout) {
			logger.Warn("classification timed out for report %s", report.TrackingID)
			s.reject(ctx, report, ReasonClassifyTimeout, "Classification service unavailable")
			return
		}
		// transient failure, leave pending for the sweep
		logger.Error("classify report %s: %v", report.TrackingID, err)
		return
	}

	if result.Confidence < s.minConfidence {
		s.repo.IncrementClassifyAttempts(ctx, id)
		s.reject(ctx, report, ReasonClassifyUnreliable, "Image could not be classified reliably")
		return
	}

	category := result.Category
	if !vision.KnownCategory(category) {
		category = vision.CategoryOther
	}

	if err := s.repo.SetClassification(ctx, id, category, result.Confidence); err != nil {
		logger.Error("record classification for report %s: %v", report.TrackingID, err)
		return
	}

	s.notifier.Notify(ctx, report.ReporterID,
		"Report classified",
		"Your report was identified as "+strings.ReplaceAll(category, "-", " ")+" waste",
		map[string]string{"reportId": id.Hex(), "trackingId": report.TrackingID},
	)

	s.dispatch(ctx, id)
}

func (s *Service) dispatch(ctx context.Context, id primitive.ObjectID) {
	s.mu.RLock()
	dispatcher := s.dispatcher
	s.mu.RUnlock()
	if dispatcher == nil {
		logger.Warn("no dispatcher wired, report %s stays classified", id.Hex())
		return
	}

	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logger.Error("load report %s for dispatch: %v", id.Hex(), err)
		return
	}
	if report.Status != StatusClassified {
		return
	}

	if err := dispatcher.DispatchReport(ctx, report); err != nil {
		if errors.Is(err, apperr.ErrNoWorkerAvailable) {
			// stays classified, the scheduler retries
			logger.Info("no worker available for report %s", report.TrackingID)
			return
		}
		logger.Error("dispatch report %s: %v", report.TrackingID, err)
	}
}

func (s *Service) reject(ctx context.Context, report *Report, reason, message string) {
	if err := s.repo.Transition(ctx, report.ID, report.Status, StatusRejected, reason, message); err != nil {
		logger.Error("reject report %s: %v", report.TrackingID, err)
		return
	}
	s.notifier.Notify(ctx, report.ReporterID,
		"Report rejected",
		message,
		map[string]string{"reportId": report.ID.Hex(), "trackingId": report.TrackingID, "reason": reason},
	)
}

// MarkResolved finalizes a report after verified cleanup and credits the
// reporter. Called by the verification flow.
func (s *Service) MarkResolved(ctx context.Context, reportID primitive.ObjectID) error {
	report, err := s.repo.GetByID(ctx, reportID)
	if err != nil {
		return err
	}

	if err := s.repo.Transition(ctx, reportID, report.Status, StatusResolved, "", "Cleanup verified"); err != nil {
		return err
	}

	if err := s.scores.AwardCitizen(ctx, report.ReporterID, PointsReportResolved, "report_resolved", reportID); err != nil {
		logger.Error("award resolution points for report %s: %v", report.TrackingID, err)
	}

	s.notifier.Notify(ctx, report.ReporterID,
		"Report resolved",
		"The waste you reported has been cleaned up and verified",
		map[string]string{"reportId": reportID.Hex(), "trackingId": report.TrackingID},
	)
	return nil
}
