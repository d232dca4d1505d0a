package verify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/features/dispatch"
	"github.com/meridharani/dharani-api/internal/features/reports"
	"github.com/meridharani/dharani-api/internal/pkg/vision"
	"github.com/meridharani/dharani-api/pkg/apperr"
)

type fakeReviews struct {
	items    map[primitive.ObjectID]*ReviewItem
	resolved int
}

func (f *fakeReviews) Create(ctx context.Context, item *ReviewItem) error {
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	if f.items == nil {
		f.items = map[primitive.ObjectID]*ReviewItem{}
	}
	f.items[item.ID] = item
	return nil
}

func (f *fakeReviews) GetByID(ctx context.Context, id primitive.ObjectID) (*ReviewItem, error) {
	item, ok := f.items[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copy := *item
	return &copy, nil
}

func (f *fakeReviews) Resolve(ctx context.Context, id, reviewerID primitive.ObjectID, approve bool) error {
	item, ok := f.items[id]
	if !ok || item.Resolved {
		return apperr.ErrInvalidTransition
	}
	item.Resolved = true
	item.Approved = &approve
	item.ResolvedBy = reviewerID
	f.resolved++
	return nil
}

type fakeAssignments struct {
	assignment  *dispatch.Assignment
	completed   bool
	completeErr error
	reviewFlags []bool
}

func (f *fakeAssignments) GetByID(ctx context.Context, id primitive.ObjectID) (*dispatch.Assignment, error) {
	if f.assignment == nil || f.assignment.ID != id {
		return nil, apperr.ErrNotFound
	}
	copy := *f.assignment
	return &copy, nil
}

func (f *fakeAssignments) Complete(ctx context.Context, id primitive.ObjectID, proof reports.ImageRef, cleanScore float64) error {
	if f.completeErr != nil {
		return f.completeErr
	}
	f.completed = true
	return nil
}

func (f *fakeAssignments) SetPendingReview(ctx context.Context, id primitive.ObjectID, pending bool, proof *reports.ImageRef, cleanScore *float64) error {
	f.reviewFlags = append(f.reviewFlags, pending)
	return nil
}

type fakePool struct{ completions, reputations int }

func (f *fakePool) RecordCompletion(ctx context.Context, workerID primitive.ObjectID) error {
	f.completions++
	return nil
}

func (f *fakePool) AdjustReputation(ctx context.Context, workerID primitive.ObjectID, delta float64) error {
	f.reputations++
	return nil
}

type fakeResolver struct{ resolved int }

func (f *fakeResolver) MarkResolved(ctx context.Context, reportID primitive.ObjectID) error {
	f.resolved++
	return nil
}

type fakeScores struct{ awards []int }

func (f *fakeScores) AwardWorker(ctx context.Context, userID primitive.ObjectID, points int, reason string, reportID primitive.ObjectID) error {
	f.awards = append(f.awards, points)
	return nil
}

type fakeNotifier struct{ sent int }

func (f *fakeNotifier) Notify(ctx context.Context, userID primitive.ObjectID, title, body string, data map[string]string) {
	f.sent++
}

type fakeClassifier struct{ cleanScore float64 }

func (f *fakeClassifier) Classify(ctx context.Context, imageURL string) (*vision.Classification, error) {
	return &vision.Classification{Category: vision.CategoryPlastic, Confidence: 0.9}, nil
}

func (f *fakeClassifier) CompareCleanup(ctx context.Context, beforeURL, afterURL string) (*vision.Comparison, error) {
	return &vision.Comparison{CleanScore: f.cleanScore}, nil
}

type verifyFixture struct {
	svc      *Service
	reviews  *fakeReviews
	store    *fakeAssignments
	pool     *fakePool
	resolver *fakeResolver
	scores   *fakeScores

	assignmentID primitive.ObjectID
	workerID     primitive.ObjectID
}

func newTestService(status string, cleanScore float64) *verifyFixture {
	f := &verifyFixture{
		reviews:  &fakeReviews{},
		pool:     &fakePool{},
		resolver: &fakeResolver{},
		scores:   &fakeScores{},

		assignmentID: primitive.NewObjectID(),
		workerID:     primitive.NewObjectID(),
	}
	f.store = &fakeAssignments{assignment: &dispatch.Assignment{
		ID:          f.assignmentID,
		ReportID:    primitive.NewObjectID(),
		WorkerID:    f.workerID,
		Status:      status,
		ReportImage: "https://img.example/before.jpg",
	}}

	f.svc = NewService(f.reviews, f.store, f.pool, f.resolver, f.scores, &fakeNotifier{}, &fakeClassifier{cleanScore: cleanScore}, 0.7, 0.3)
	return f
}

func TestVerify_OfferedAssignmentRejected(t *testing.T) {
	f := newTestService(dispatch.StatusOffered, 0.9)

	outcome, err := f.svc.Verify(context.Background(), f.assignmentID, f.workerID, reports.ImageRef{URL: "https://img.example/after.jpg"})

	require.ErrorIs(t, err, apperr.ErrInvalidTransition)
	require.Nil(t, outcome)

	// no state change of any kind
	require.False(t, f.store.completed)
	require.Empty(t, f.store.reviewFlags)
	require.Empty(t, f.reviews.items)
	require.Zero(t, f.pool.completions)
	require.Zero(t, f.resolver.resolved)
}

func TestVerify_WrongWorkerForbidden(t *testing.T) {
	f := newTestService(dispatch.StatusAccepted, 0.9)

	_, err := f.svc.Verify(context.Background(), f.assignmentID, primitive.NewObjectID(), reports.ImageRef{})
	require.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestVerify_CleanScoreCompletes(t *testing.T) {
	f := newTestService(dispatch.StatusAccepted, 0.85)

	outcome, err := f.svc.Verify(context.Background(), f.assignmentID, f.workerID, reports.ImageRef{URL: "https://img.example/after.jpg"})

	require.NoError(t, err)
	require.Equal(t, OutcomeCompleted, outcome.Result)
	require.True(t, f.store.completed)
	require.Equal(t, 1, f.pool.completions)
	require.Equal(t, 1, f.resolver.resolved)
	require.Equal(t, []int{PointsJobCompleted}, f.scores.awards)
}

func TestVerify_DirtyScoreStaysAccepted(t *testing.T) {
	f := newTestService(dispatch.StatusAccepted, 0.1)

	outcome, err := f.svc.Verify(context.Background(), f.assignmentID, f.workerID, reports.ImageRef{URL: "https://img.example/after.jpg"})

	require.NoError(t, err)
	require.Equal(t, OutcomeNotCleaned, outcome.Result)
	require.False(t, f.store.completed)
	require.Equal(t, []bool{false}, f.store.reviewFlags)
	require.Empty(t, f.reviews.items)
	require.Zero(t, f.pool.completions)
	require.Zero(t, f.resolver.resolved)
}

func TestVerify_AmbiguousScoreQueuesReview(t *testing.T) {
	f := newTestService(dispatch.StatusAccepted, 0.5)

	outcome, err := f.svc.Verify(context.Background(), f.assignmentID, f.workerID, reports.ImageRef{URL: "https://img.example/after.jpg"})

	require.NoError(t, err)
	require.Equal(t, OutcomePendingReview, outcome.Result)
	require.Equal(t, []bool{true}, f.store.reviewFlags)
	require.Len(t, f.reviews.items, 1)
	for _, item := range f.reviews.items {
		require.Equal(t, f.assignmentID, item.AssignmentID)
		require.Equal(t, f.workerID, item.WorkerID)
		require.InDelta(t, 0.5, item.CleanScore, 1e-9)
		require.False(t, item.Resolved)
	}

	// not auto-closed
	require.False(t, f.store.completed)
	require.Zero(t, f.pool.completions)
	require.Zero(t, f.resolver.resolved)
	require.Empty(t, f.scores.awards)
}

func TestVerify_AlreadyPendingReview(t *testing.T) {
	f := newTestService(dispatch.StatusAccepted, 0.5)
	f.store.assignment.PendingReview = true

	_, err := f.svc.Verify(context.Background(), f.assignmentID, f.workerID, reports.ImageRef{})
	require.ErrorIs(t, err, apperr.ErrVerificationInconclusive)
}

func queueReview(t *testing.T, f *verifyFixture) primitive.ObjectID {
	t.Helper()

	item := &ReviewItem{
		AssignmentID: f.assignmentID,
		ReportID:     f.store.assignment.ReportID,
		WorkerID:     f.workerID,
		Proof:        reports.ImageRef{URL: "https://img.example/after.jpg"},
		CleanScore:   0.5,
	}
	require.NoError(t, f.reviews.Create(context.Background(), item))
	f.store.assignment.PendingReview = true
	return item.ID
}

func TestResolveReview_ApproveCompletes(t *testing.T) {
	f := newTestService(dispatch.StatusAccepted, 0.5)
	reviewID := queueReview(t, f)

	err := f.svc.ResolveReview(context.Background(), reviewID, primitive.NewObjectID(), true)

	require.NoError(t, err)
	require.True(t, f.store.completed)
	require.Equal(t, 1, f.resolver.resolved)
	require.Equal(t, []int{PointsJobCompleted}, f.scores.awards)
	require.Equal(t, 1, f.reviews.resolved)
	require.True(t, f.reviews.items[reviewID].Resolved)
}

func TestResolveReview_RefuseReleasesFlag(t *testing.T) {
	f := newTestService(dispatch.StatusAccepted, 0.5)
	reviewID := queueReview(t, f)

	err := f.svc.ResolveReview(context.Background(), reviewID, primitive.NewObjectID(), false)

	require.NoError(t, err)
	require.False(t, f.store.completed)
	require.Equal(t, []bool{false}, f.store.reviewFlags)
	require.Zero(t, f.resolver.resolved)
	require.True(t, f.reviews.items[reviewID].Resolved)
}

func TestResolveReview_CompletionFailureKeepsReviewOpen(t *testing.T) {
	f := newTestService(dispatch.StatusAccepted, 0.5)
	reviewID := queueReview(t, f)
	f.store.completeErr = errors.New("assignment moved")

	err := f.svc.ResolveReview(context.Background(), reviewID, primitive.NewObjectID(), true)

	require.Error(t, err)
	require.False(t, f.store.completed)
	require.False(t, f.reviews.items[reviewID].Resolved)
	require.Zero(t, f.reviews.resolved)
	require.Zero(t, f.resolver.resolved)
}

func TestResolveReview_AlreadyResolvedConflict(t *testing.T) {
	f := newTestService(dispatch.StatusAccepted, 0.5)
	reviewID := queueReview(t, f)
	require.NoError(t, f.svc.ResolveReview(context.Background(), reviewID, primitive.NewObjectID(), false))

	err := f.svc.ResolveReview(context.Background(), reviewID, primitive.NewObjectID(), true)
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)
	require.False(t, f.store.completed)
}
