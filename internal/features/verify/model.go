package verify

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/features/reports"
)

// Verification outcomes
const (
	OutcomeCompleted     = "completed"
	OutcomeNotCleaned    = "not_cleaned"
	OutcomePendingReview = "pending_review"
)

// Outcome is the result of one verification attempt
type Outcome struct {
	Result     string  `json:"result"`
	CleanScore float64 `json:"cleanScore"`
}

// ReviewItem is an inconclusive verification waiting on a human
// decision
type ReviewItem struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AssignmentID primitive.ObjectID `bson:"assignmentId" json:"assignmentId"`
	ReportID     primitive.ObjectID `bson:"reportId" json:"reportId"`
	WorkerID     primitive.ObjectID `bson:"workerId" json:"workerId"`
	BeforeImage  string             `bson:"beforeImage" json:"beforeImage"`
	Proof        reports.ImageRef   `bson:"proof" json:"proof"`
	CleanScore   float64            `bson:"cleanScore" json:"cleanScore"`
	Resolved     bool               `bson:"resolved" json:"resolved"`
	Approved     *bool              `bson:"approved,omitempty" json:"approved,omitempty"`
	ResolvedBy   primitive.ObjectID `bson:"resolvedBy,omitempty" json:"resolvedBy,omitempty"`
	ResolvedAt   *time.Time         `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

type ResolveReviewRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}
