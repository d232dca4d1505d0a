package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelForPoints(t *testing.T) {
	cases := []struct {
		points int
		level  string
	}{
		{0, LevelEcoRookie},
		{99, LevelEcoRookie},
		{100, LevelEcoWarrior},
		{299, LevelEcoWarrior},
		{300, LevelWasteWarrior},
		{599, LevelWasteWarrior},
		{600, LevelGreenGuardian},
		{999, LevelGreenGuardian},
		{1000, LevelEcoChampion},
		{5000, LevelEcoChampion},
	}

	for _, tc := range cases {
		require.Equal(t, tc.level, LevelForPoints(tc.points), "points=%d", tc.points)
	}
}
