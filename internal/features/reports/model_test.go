package reports

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition_ForwardOnly(t *testing.T) {
	// the happy path
	require.True(t, CanTransition(StatusPending, StatusClassified))
	require.True(t, CanTransition(StatusClassified, StatusAssigned))
	require.True(t, CanTransition(StatusAssigned, StatusInProgress))
	require.True(t, CanTransition(StatusInProgress, StatusResolved))

	// skipping ahead is still forward
	require.True(t, CanTransition(StatusPending, StatusAssigned))

	// no backward transitions on the main track
	require.False(t, CanTransition(StatusClassified, StatusPending))
	require.False(t, CanTransition(StatusAssigned, StatusClassified))
	require.False(t, CanTransition(StatusResolved, StatusInProgress))
	require.False(t, CanTransition(StatusResolved, StatusPending))

	// no self-transitions
	for _, s := range []string{StatusPending, StatusClassified, StatusAssigned, StatusInProgress, StatusResolved, StatusRejected} {
		require.False(t, CanTransition(s, s), "self transition %s", s)
	}
}

func TestCanTransition_RejectedEdges(t *testing.T) {
	// any non-terminal status can be rejected
	require.True(t, CanTransition(StatusPending, StatusRejected))
	require.True(t, CanTransition(StatusClassified, StatusRejected))
	require.True(t, CanTransition(StatusAssigned, StatusRejected))
	require.True(t, CanTransition(StatusInProgress, StatusRejected))

	// resolved is terminal
	require.False(t, CanTransition(StatusResolved, StatusRejected))

	// the single allowed backward edge: rejected -> pending
	require.True(t, CanTransition(StatusRejected, StatusPending))
	require.False(t, CanTransition(StatusRejected, StatusClassified))
	require.False(t, CanTransition(StatusRejected, StatusResolved))
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	require.False(t, CanTransition("garbage", StatusPending))
	require.False(t, CanTransition(StatusPending, "garbage"))
}
