package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/meridharani/dharani-api/internal/features/auth"
	"github.com/meridharani/dharani-api/internal/features/workers"
	"github.com/meridharani/dharani-api/internal/pkg/geo"
)

var testWeights = Weights{Distance: 1.0, Load: 2.0, Reputation: 1.5}

// about 1 km of latitude
const kmLat = 1.0 / 111.2

func candidateAt(lat, lng float64, active, max int, reputation float64, registered time.Time) workers.Candidate {
	return workers.Candidate{
		ID:                primitive.NewObjectID(),
		Location:          auth.Location{Point: geo.Point{Latitude: lat, Longitude: lng}},
		Reputation:        reputation,
		ActiveAssignments: active,
		MaxConcurrent:     max,
		RegisteredAt:      registered,
	}
}

func TestRank_OverCapWorkerFiltered(t *testing.T) {
	report := geo.Point{Latitude: 12.9, Longitude: 77.6}
	now := time.Now()

	// W1: 1 km away, idle. W2: 0.5 km away but already at 3 of 2 slots.
	w1 := candidateAt(12.9+kmLat, 77.6, 0, 3, 5.0, now)
	w2 := candidateAt(12.9+kmLat/2, 77.6, 3, 2, 5.0, now)

	ranked := rank([]workers.Candidate{w1, w2}, report, testWeights)

	require.Len(t, ranked, 1)
	require.Equal(t, w1.ID, ranked[0].ID)
	require.InDelta(t, 1.0, ranked[0].DistanceKm, 0.05)
}

func TestRank_LoadOutweighsShortDistance(t *testing.T) {
	report := geo.Point{Latitude: 12.9, Longitude: 77.6}
	now := time.Now()

	// near but busy: 0.5 + 2*2 = 4.5; far but idle: 1.0
	near := candidateAt(12.9+kmLat/2, 77.6, 2, 5, 5.0, now)
	far := candidateAt(12.9+kmLat, 77.6, 0, 5, 5.0, now)

	ranked := rank([]workers.Candidate{near, far}, report, testWeights)

	require.Len(t, ranked, 2)
	require.Equal(t, far.ID, ranked[0].ID)
	require.Less(t, ranked[0].Score, ranked[1].Score)
}

func TestRank_ReputationPenalty(t *testing.T) {
	report := geo.Point{Latitude: 12.9, Longitude: 77.6}
	now := time.Now()

	// identical except reputation: 1.5*(5-3) = 3.0 penalty
	trusted := candidateAt(12.9+kmLat, 77.6, 0, 3, 5.0, now)
	shaky := candidateAt(12.9+kmLat, 77.6, 0, 3, 3.0, now)

	ranked := rank([]workers.Candidate{shaky, trusted}, report, testWeights)

	require.Len(t, ranked, 2)
	require.Equal(t, trusted.ID, ranked[0].ID)
	require.InDelta(t, 3.0, ranked[1].Score-ranked[0].Score, 0.001)
}

func TestRank_TieGoesToEarliestRegistered(t *testing.T) {
	report := geo.Point{Latitude: 12.9, Longitude: 77.6}

	// identical scores; the snapshot arrives in registration order and
	// the stable sort must keep it
	older := candidateAt(12.9+kmLat, 77.6, 0, 3, 5.0, time.Now().Add(-48*time.Hour))
	newer := candidateAt(12.9+kmLat, 77.6, 0, 3, 5.0, time.Now())

	ranked := rank([]workers.Candidate{older, newer}, report, testWeights)

	require.Len(t, ranked, 2)
	require.Equal(t, ranked[0].Score, ranked[1].Score)
	require.Equal(t, older.ID, ranked[0].ID)
}

func TestRank_EmptySnapshot(t *testing.T) {
	ranked := rank(nil, geo.Point{Latitude: 12.9, Longitude: 77.6}, testWeights)
	require.Empty(t, ranked)
}
