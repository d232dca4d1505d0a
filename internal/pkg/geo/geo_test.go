package geo

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceKm(t *testing.T) {
	// Vijayawada to Guntur is roughly 25-30 km
	vijayawada := Point{Latitude: 16.5062, Longitude: 80.6480}
	guntur := Point{Latitude: 16.3067, Longitude: 80.4365}

	d := DistanceKm(vijayawada, guntur)
	require.InDelta(t, 31.5, d, 5.0)

	// Zero distance to itself
	require.InDelta(t, 0, DistanceKm(vijayawada, vijayawada), 1e-9)

	// Symmetry
	require.InDelta(t, d, DistanceKm(guntur, vijayawada), 1e-9)
}

func TestValid(t *testing.T) {
	require.True(t, Valid(Point{Latitude: 12.9, Longitude: 77.6}))
	require.False(t, Valid(Point{Latitude: 91, Longitude: 0}))
	require.False(t, Valid(Point{Latitude: 0, Longitude: 0}))
	require.False(t, Valid(Point{Latitude: 45, Longitude: -181}))
}
