package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/pkg/geo"
)

// User roles
const (
	RoleCitizen = "citizen"
	RoleWorker  = "worker"
	// admins are provisioned out of band, registration only offers the two above
	RoleAdmin = "admin"
)

// Citizen levels by accumulated points
const (
	LevelEcoRookie     = "eco_rookie"     // < 100
	LevelEcoWarrior    = "eco_warrior"    // < 300
	LevelWasteWarrior  = "waste_warrior"  // < 600
	LevelGreenGuardian = "green_guardian" // < 1000
	LevelEcoChampion   = "eco_champion"
)

// Location is a user's home/base position
type Location struct {
	geo.Point `bson:",inline"`
	Area      string `bson:"area,omitempty" json:"area,omitempty"`
	City      string `bson:"city,omitempty" json:"city,omitempty"`
	Pincode   string `bson:"pincode,omitempty" json:"pincode,omitempty"`
}

// CitizenProfile tracks reporting activity and gamification state
type CitizenProfile struct {
	TotalReports int    `bson:"totalReports" json:"totalReports"`
	TotalPoints  int    `bson:"totalPoints" json:"totalPoints"`
	Level        string `bson:"level" json:"level"`
}

// WorkerProfile tracks dispatchability and performance
type WorkerProfile struct {
	Available         bool     `bson:"available" json:"available"`
	Reputation        float64  `bson:"reputation" json:"reputation"` // 0..5
	ActiveAssignments int      `bson:"activeAssignments" json:"activeAssignments"`
	MaxConcurrent     int      `bson:"maxConcurrent" json:"maxConcurrent"`
	JobsCompleted     int      `bson:"jobsCompleted" json:"jobsCompleted"`
	TotalPoints       int      `bson:"totalPoints" json:"totalPoints"`
	Specializations   []string `bson:"specializations,omitempty" json:"specializations,omitempty"`
}

// User is the main account record for citizens and workers
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Phone        string             `bson:"phone,omitempty" json:"phone,omitempty"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	FullName     string             `bson:"fullName" json:"fullName"`
	Location     Location           `bson:"location" json:"location"`
	DeviceToken  string             `bson:"deviceToken,omitempty" json:"-"`
	Citizen      *CitizenProfile    `bson:"citizenProfile,omitempty" json:"citizenProfile,omitempty"`
	Worker       *WorkerProfile     `bson:"workerProfile,omitempty" json:"workerProfile,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LevelForPoints maps a citizen's point total to a level name
func LevelForPoints(points int) string {
	switch {
	case points < 100:
		return LevelEcoRookie
	case points < 300:
		return LevelEcoWarrior
	case points < 600:
		return LevelWasteWarrior
	case points < 1000:
		return LevelGreenGuardian
	default:
		return LevelEcoChampion
	}
}

// Request DTOs

type RegisterRequest struct {
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required,min=8"`
	FullName  string   `json:"fullName" binding:"required,min=2,max=100"`
	Phone     string   `json:"phone"`
	Role      string   `json:"role" binding:"required,oneof=citizen worker"`
	Latitude  float64  `json:"latitude" binding:"required"`
	Longitude float64  `json:"longitude" binding:"required"`
	Area      string   `json:"area"`
	City      string   `json:"city"`
	Pincode   string   `json:"pincode"`
	Skills    []string `json:"skills"` // worker specializations
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleSignInRequest struct {
	IDToken string `json:"idToken" binding:"required"`
	Role    string `json:"role" binding:"omitempty,oneof=citizen worker"`
}

type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude" binding:"required"`
	Longitude float64 `json:"longitude" binding:"required"`
	Area      string  `json:"area"`
	City      string  `json:"city"`
	Pincode   string  `json:"pincode"`
}

type UpdateDeviceTokenRequest struct {
	DeviceToken string `json:"deviceToken" binding:"required"`
}

// Response DTOs

type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
