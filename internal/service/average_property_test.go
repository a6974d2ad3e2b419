package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"dicebot/internal/model"
)

func TestNextAverage(t *testing.T) {
	assert.Equal(t, 15.0, NextAverage(10, 20))
	assert.Equal(t, 22.5, NextAverage(15, 30))
	assert.Equal(t, 11.63, NextAverage(16.25, 7), "results round to two decimals")
	assert.Equal(t, 1.0, NextAverage(1, 1))
}

func TestFormatAverage(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{50, "50"},
		{22.5, "22.5"},
		{3.25, "3.25"},
		{1, "1"},
		{70.10, "70.1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAverage(tt.in))
	}
}

func TestRankLeaderboard_TiesKeepFirstAppearance(t *testing.T) {
	rolls := []*model.Roll{
		{ID: 1, UserID: 3, DieSize: 6, Result: 4},
		{ID: 2, UserID: 1, DieSize: 6, Result: 6},
		{ID: 3, UserID: 2, DieSize: 6, Result: 4},
	}

	board := RankLeaderboard(rolls)
	assert.Equal(t, []int64{1, 3, 2}, userIDs(board))
}

func userIDs(entries []*model.LeaderboardEntry) []int64 {
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	return ids
}

// genRolls draws rolls on one die in insertion order.
func genRolls(t *rapid.T, dieSize int) []*model.Roll {
	n := rapid.IntRange(0, 60).Draw(t, "numRolls")
	rolls := make([]*model.Roll, n)
	for i := 0; i < n; i++ {
		rolls[i] = &model.Roll{
			ID:      int64(i + 1),
			UserID:  rapid.Int64Range(1, 8).Draw(t, "userID"),
			DieSize: dieSize,
			Result:  rapid.IntRange(1, dieSize).Draw(t, "result"),
		}
	}
	return rolls
}

// TestLeaderboardOrderingProperty checks the leaderboard is sorted by average
// descending, lists every roller once, and breaks ties by first appearance.
func TestLeaderboardOrderingProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dieSize := rapid.IntRange(1, 100).Draw(t, "dieSize")
		rolls := genRolls(t, dieSize)

		board := RankLeaderboard(rolls)

		firstSeen := make(map[int64]int)
		for i, r := range rolls {
			if _, ok := firstSeen[r.UserID]; !ok {
				firstSeen[r.UserID] = i
			}
		}
		if len(board) != len(firstSeen) {
			t.Fatalf("expected %d entries, got %d", len(firstSeen), len(board))
		}

		for i := 1; i < len(board); i++ {
			prev, cur := board[i-1], board[i]
			if prev.Average < cur.Average {
				t.Fatalf("not descending at %d: %v < %v", i, prev.Average, cur.Average)
			}
			if prev.Average == cur.Average && firstSeen[prev.UserID] > firstSeen[cur.UserID] {
				t.Fatalf("tie between %d and %d not in first-appearance order", prev.UserID, cur.UserID)
			}
		}
	})
}

// TestRunningAverageBoundsProperty checks every running average stays within
// the die's range and matches the pairwise fold of the user's results.
func TestRunningAverageBoundsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dieSize := rapid.IntRange(1, 1000).Draw(t, "dieSize")
		rolls := genRolls(t, dieSize)

		expected := make(map[int64]float64)
		for _, r := range rolls {
			prev, ok := expected[r.UserID]
			if !ok {
				expected[r.UserID] = float64(r.Result)
				continue
			}
			expected[r.UserID] = NextAverage(prev, r.Result)
		}

		for _, entry := range RankLeaderboard(rolls) {
			if entry.Average < 1 || entry.Average > float64(dieSize) {
				t.Fatalf("average %v outside [1, %d]", entry.Average, dieSize)
			}
			if entry.Average != expected[entry.UserID] {
				t.Fatalf("user %d: expected %v, got %v", entry.UserID, expected[entry.UserID], entry.Average)
			}
		}
	})
}
