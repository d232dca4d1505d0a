package workers

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/features/auth"
)

// Candidate is the slice of a worker account the dispatch engine scores
type Candidate struct {
	ID                primitive.ObjectID `bson:"_id" json:"id"`
	FullName          string             `bson:"fullName" json:"fullName"`
	Location          auth.Location      `bson:"location" json:"location"`
	Reputation        float64            `bson:"reputation" json:"reputation"`
	ActiveAssignments int                `bson:"activeAssignments" json:"activeAssignments"`
	MaxConcurrent     int                `bson:"maxConcurrent" json:"maxConcurrent"`
	RegisteredAt      time.Time          `bson:"createdAt" json:"registeredAt"`
}

// Request DTOs

type SetAvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// Response DTOs

type StatsResponse struct {
	Available         bool    `json:"available"`
	Reputation        float64 `json:"reputation"`
	ActiveAssignments int     `json:"activeAssignments"`
	MaxConcurrent     int     `json:"maxConcurrent"`
	JobsCompleted     int     `json:"jobsCompleted"`
	TotalPoints       int     `json:"totalPoints"`
}
