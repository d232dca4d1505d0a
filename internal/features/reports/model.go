package reports

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/features/auth"
)

// Report statuses. The lifecycle is forward-only:
//
//	pending -> classified -> assigned -> in_progress -> resolved
//
// Any non-terminal status can drop to rejected, and rejected can be reset
// to pending. That reset is the only backward edge.
const (
	StatusPending    = "pending"
	StatusClassified = "classified"
	StatusAssigned   = "assigned"
	StatusInProgress = "in_progress"
	StatusResolved   = "resolved"
	StatusRejected   = "rejected"
)

// Rejection reasons
const (
	ReasonClassifyTimeout    = "classification_timeout"
	ReasonClassifyUnreliable = "classification_unreliable"
	ReasonOfferDeclined      = "offer_declined"
	ReasonOfferExpired       = "offer_expired"
)

var statusRank = map[string]int{
	StatusPending:    0,
	StatusClassified: 1,
	StatusAssigned:   2,
	StatusInProgress: 3,
	StatusResolved:   4,
}

// CanTransition reports whether a report may move from one status to
// another. resolved is terminal.
func CanTransition(from, to string) bool {
	if from == to {
		return false
	}
	if to == StatusRejected {
		return from != StatusResolved && from != StatusRejected
	}
	if from == StatusRejected {
		return to == StatusPending
	}
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank > fromRank
}

// ImageRef points at an uploaded evidence photo
type ImageRef struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"publicId" json:"publicId"`
}

// TimelineStep is one event in a report's history, shown to the citizen
type TimelineStep struct {
	Step    string    `bson:"step" json:"step"`
	Message string    `bson:"message" json:"message"`
	At      time.Time `bson:"at" json:"at"`
}

// Report is a citizen-submitted waste record
type Report struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrackingID       string             `bson:"trackingId" json:"trackingId"`
	ReporterID       primitive.ObjectID `bson:"reporterId" json:"reporterId"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	Location         auth.Location      `bson:"location" json:"location"`
	Image            ImageRef           `bson:"image" json:"image"`
	Category         string             `bson:"category,omitempty" json:"category,omitempty"`
	Confidence       float64            `bson:"confidence,omitempty" json:"confidence,omitempty"`
	Status           string             `bson:"status" json:"status"`
	StatusReason     string             `bson:"statusReason,omitempty" json:"statusReason,omitempty"`
	ClassifyAttempts int                `bson:"classifyAttempts" json:"classifyAttempts"`
	Timeline         []TimelineStep     `bson:"timeline" json:"timeline"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
	ResolvedAt       *time.Time         `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
}

// Request DTOs

type CreateReportRequest struct {
	Description string  `form:"description" binding:"max=500"`
	Latitude    float64 `form:"latitude" binding:"required"`
	Longitude   float64 `form:"longitude" binding:"required"`
	Area        string  `form:"area"`
	City        string  `form:"city"`
	Pincode     string  `form:"pincode"`
}

type ListReportsQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending classified assigned in_progress resolved rejected"`
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
}
