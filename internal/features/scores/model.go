package scores

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScoreEvent is one append-only ledger entry. Totals on the user
// document are derived; the events are the source of truth.
type ScoreEvent struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Role      string             `bson:"role" json:"role"`
	Points    int                `bson:"points" json:"points"`
	Reason    string             `bson:"reason" json:"reason"`
	ReportID  primitive.ObjectID `bson:"reportId,omitempty" json:"reportId,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// MyScoreResponse is the authenticated user's ledger summary
type MyScoreResponse struct {
	TotalPoints int          `json:"totalPoints"`
	Level       string       `json:"level,omitempty"`
	Recent      []ScoreEvent `json:"recent"`
}

// LeaderboardEntry is one row of the citizen leaderboard
type LeaderboardEntry struct {
	UserID      primitive.ObjectID `bson:"_id" json:"userId"`
	FullName    string             `bson:"fullName" json:"fullName"`
	TotalPoints int                `bson:"totalPoints" json:"totalPoints"`
	Level       string             `bson:"level" json:"level"`
}
