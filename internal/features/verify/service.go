package verify

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/features/dispatch"
	"github.com/meridharani/dharani-api/internal/features/reports"
	"github.com/meridharani/dharani-api/internal/pkg/logger"
	"github.com/meridharani/dharani-api/internal/pkg/vision"
	"github.com/meridharani/dharani-api/pkg/apperr"
)

// ReviewStore holds inconclusive verifications for a human decision.
// Repository implements it.
type ReviewStore interface {
	Create(ctx context.Context, item *ReviewItem) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*ReviewItem, error)
	Resolve(ctx context.Context, id, reviewerID primitive.ObjectID, approve bool) error
}

// AssignmentStore is the slice of assignment persistence verification
// needs. dispatch.Repository implements it.
type AssignmentStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*dispatch.Assignment, error)
	Complete(ctx context.Context, id primitive.ObjectID, proof reports.ImageRef, cleanScore float64) error
	SetPendingReview(ctx context.Context, id primitive.ObjectID, pending bool, proof *reports.ImageRef, cleanScore *float64) error
}

// WorkerPool is the worker-state slice verification needs
type WorkerPool interface {
	RecordCompletion(ctx context.Context, workerID primitive.ObjectID) error
	AdjustReputation(ctx context.Context, workerID primitive.ObjectID, delta float64) error
}

// ReportResolver closes a report once its cleanup is verified
type ReportResolver interface {
	MarkResolved(ctx context.Context, reportID primitive.ObjectID) error
}

// ScoreKeeper records point awards on the worker side of the ledger
type ScoreKeeper interface {
	AwardWorker(ctx context.Context, userID primitive.ObjectID, points int, reason string, reportID primitive.ObjectID) error
}

// Notifier delivers user-facing notifications
type Notifier interface {
	Notify(ctx context.Context, userID primitive.ObjectID, title, body string, data map[string]string)
}

// Points awarded for a verified cleanup
const PointsJobCompleted = 50

const reputationCompletionDelta = 0.1

// Service runs cleanup verification: the worker's after photo goes to
// the vision collaborator next to the original report photo, and the
// clean score decides between auto-completion, a retry, or the manual
// review queue.
type Service struct {
	reviews     ReviewStore
	assignments AssignmentStore
	pool        WorkerPool
	resolver    ReportResolver
	scores      ScoreKeeper
	notifier    Notifier
	classifier  vision.Classifier

	cleanThreshold float64
	dirtyThreshold float64
}

func NewService(reviews ReviewStore, assignments AssignmentStore, pool WorkerPool, resolver ReportResolver, scores ScoreKeeper, notifier Notifier, classifier vision.Classifier, cleanThreshold, dirtyThreshold float64) *Service {
	return &Service{
		reviews:        reviews,
		assignments:    assignments,
		pool:           pool,
		resolver:       resolver,
		scores:         scores,
		notifier:       notifier,
		classifier:     classifier,
		cleanThreshold: cleanThreshold,
		dirtyThreshold: dirtyThreshold,
	}
}

// Verify assesses a worker's proof photo against the original report
// image. Only accepted assignments can be verified; anything else is
// ErrInvalidTransition with no state change.
func (s *Service) Verify(ctx context.Context, assignmentID, workerID primitive.ObjectID, proof reports.ImageRef) (*Outcome, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.WorkerID != workerID {
		return nil, apperr.ErrForbidden
	}
	if assignment.Status != dispatch.StatusAccepted {
		return nil, apperr.ErrInvalidTransition
	}
	if assignment.PendingReview {
		return nil, apperr.ErrVerificationInconclusive
	}

	comparison, err := s.classifier.CompareCleanup(ctx, assignment.ReportImage, proof.URL)
	if err != nil {
		return nil, err
	}
	score := comparison.CleanScore

	switch {
	case score >= s.cleanThreshold:
		if err := s.complete(ctx, assignment, proof, score); err != nil {
			return nil, err
		}
		return &Outcome{Result: OutcomeCompleted, CleanScore: score}, nil

	case score <= s.dirtyThreshold:
		// keep the evidence, the assignment stays accepted
		if err := s.assignments.SetPendingReview(ctx, assignmentID, false, &proof, &score); err != nil {
			return nil, err
		}
		s.notifier.Notify(ctx, workerID,
			"Cleanup not verified",
			"The site still looks uncleaned. Finish the job and upload a new photo.",
			map[string]string{"assignmentId": assignmentID.Hex()},
		)
		return &Outcome{Result: OutcomeNotCleaned, CleanScore: score}, nil

	default:
		if err := s.assignments.SetPendingReview(ctx, assignmentID, true, &proof, &score); err != nil {
			return nil, err
		}
		if err := s.reviews.Create(ctx, &ReviewItem{
			AssignmentID: assignmentID,
			ReportID:     assignment.ReportID,
			WorkerID:     workerID,
			BeforeImage:  assignment.ReportImage,
			Proof:        proof,
			CleanScore:   score,
		}); err != nil {
			return nil, err
		}
		s.notifier.Notify(ctx, workerID,
			"Verification under review",
			"We could not verify the cleanup automatically. A reviewer will take a look.",
			map[string]string{"assignmentId": assignmentID.Hex()},
		)
		return &Outcome{Result: OutcomePendingReview, CleanScore: score}, nil
	}
}

func (s *Service) complete(ctx context.Context, assignment *dispatch.Assignment, proof reports.ImageRef, score float64) error {
	if err := s.assignments.Complete(ctx, assignment.ID, proof, score); err != nil {
		return err
	}

	if err := s.pool.RecordCompletion(ctx, assignment.WorkerID); err != nil {
		logger.Error("record completion for worker %s: %v", assignment.WorkerID.Hex(), err)
	}
	if err := s.pool.AdjustReputation(ctx, assignment.WorkerID, reputationCompletionDelta); err != nil {
		logger.Error("adjust reputation for worker %s: %v", assignment.WorkerID.Hex(), err)
	}
	if err := s.scores.AwardWorker(ctx, assignment.WorkerID, PointsJobCompleted, "job_completed", assignment.ReportID); err != nil {
		logger.Error("award completion points for worker %s: %v", assignment.WorkerID.Hex(), err)
	}

	if err := s.resolver.MarkResolved(ctx, assignment.ReportID); err != nil {
		logger.Error("resolve report %s: %v", assignment.ReportID.Hex(), err)
	}

	s.notifier.Notify(ctx, assignment.WorkerID,
		"Cleanup verified",
		"Nice work, the cleanup checks out. Points are on your account.",
		map[string]string{"assignmentId": assignment.ID.Hex()},
	)
	return nil
}

// ResolveReview applies a human decision to an inconclusive
// verification: approval runs the normal completion path, refusal sends
// the assignment back to the worker.
func (s *Service) ResolveReview(ctx context.Context, reviewID, reviewerID primitive.ObjectID, approve bool) error {
	item, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if item.Resolved {
		return apperr.ErrInvalidTransition
	}

	assignment, err := s.assignments.GetByID(ctx, item.AssignmentID)
	if err != nil {
		return err
	}

	// the review closes only after the assignment state change lands;
	// a failed decision leaves the item open for another pass
	if approve {
		if err := s.complete(ctx, assignment, item.Proof, item.CleanScore); err != nil {
			return err
		}
	} else {
		if err := s.assignments.SetPendingReview(ctx, item.AssignmentID, false, nil, nil); err != nil {
			return err
		}
		s.notifier.Notify(ctx, item.WorkerID,
			"Cleanup not verified",
			"A reviewer could not confirm the cleanup. Finish the job and upload a new photo.",
			map[string]string{"assignmentId": item.AssignmentID.Hex()},
		)
	}

	return s.reviews.Resolve(ctx, reviewID, reviewerID, approve)
}
