package dispatch

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/features/auth"
	"github.com/meridharani/dharani-api/internal/features/reports"
)

// Assignment statuses. Monotonic: offered -> accepted -> completed, or
// offered -> expired. An inconclusive verification sets PendingReview
// instead of moving the status backward.
const (
	StatusOffered   = "offered"
	StatusAccepted  = "accepted"
	StatusCompleted = "completed"
	StatusExpired   = "expired"
)

// Why an offer expired
const (
	ExpiryDeclined = "declined"
	ExpiryTimedOut = "timed_out"
)

// Assignment is one offer of a report to a worker. The report snapshot
// fields (category, location, image) are denormalized so the worker's
// job list renders without a join.
type Assignment struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReportID       primitive.ObjectID `bson:"reportId" json:"reportId"`
	WorkerID       primitive.ObjectID `bson:"workerId" json:"workerId"`
	Category       string             `bson:"category" json:"category"`
	ReportLocation auth.Location      `bson:"reportLocation" json:"reportLocation"`
	ReportImage    string             `bson:"reportImage" json:"reportImage"`
	Status         string             `bson:"status" json:"status"`
	ExpiryReason   string             `bson:"expiryReason,omitempty" json:"expiryReason,omitempty"`
	Score          float64            `bson:"score" json:"score"`
	DistanceKm     float64            `bson:"distanceKm" json:"distanceKm"`
	OfferExpiresAt time.Time          `bson:"offerExpiresAt" json:"offerExpiresAt"`
	AcceptedAt     *time.Time         `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	CompletedAt    *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	PendingReview  bool               `bson:"pendingReview" json:"pendingReview"`
	Proof          *reports.ImageRef  `bson:"proof,omitempty" json:"proof,omitempty"`
	CleanScore     *float64           `bson:"cleanScore,omitempty" json:"cleanScore,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type ListAssignmentsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=offered accepted completed expired"`
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
}
