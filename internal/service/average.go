package service

import (
	"math"
	"sort"
	"strconv"

	"dicebot/internal/model"
)

// RoundAverage rounds v to two decimal places.
func RoundAverage(v float64) float64 {
	return math.Round(v*100) / 100
}

// NextAverage folds result into a running average.
// The value is the mean of the previous average and the new result, not the
// arithmetic mean of all results: later rolls weigh more.
func NextAverage(prev float64, result int) float64 {
	return RoundAverage((prev + float64(result)) / 2)
}

// FormatAverage renders an average without trailing zeros, so 50.0 prints as 50.
func FormatAverage(v float64) string {
	return strconv.FormatFloat(RoundAverage(v), 'f', -1, 64)
}

// RunningAverages computes a per-die running average over rolls taken in
// insertion order. The result is sorted by die size ascending.
func RunningAverages(rolls []*model.Roll) []model.DieAverage {
	averages := make(map[int]float64)
	for _, roll := range rolls {
		prev, ok := averages[roll.DieSize]
		if !ok {
			averages[roll.DieSize] = float64(roll.Result)
			continue
		}
		averages[roll.DieSize] = NextAverage(prev, roll.Result)
	}

	result := make([]model.DieAverage, 0, len(averages))
	for size, avg := range averages {
		result = append(result, model.DieAverage{DieSize: size, Average: avg})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DieSize < result[j].DieSize
	})
	return result
}

// RankLeaderboard computes each user's running average over rolls taken in
// insertion order and sorts users by average descending. Users with equal
// averages keep the order in which they first appear in rolls.
func RankLeaderboard(rolls []*model.Roll) []*model.LeaderboardEntry {
	entries := make([]*model.LeaderboardEntry, 0)
	byUser := make(map[int64]*model.LeaderboardEntry)

	for _, roll := range rolls {
		entry, ok := byUser[roll.UserID]
		if !ok {
			entry = &model.LeaderboardEntry{UserID: roll.UserID, Average: float64(roll.Result), Rolls: 1}
			byUser[roll.UserID] = entry
			entries = append(entries, entry)
			continue
		}
		entry.Average = NextAverage(entry.Average, roll.Result)
		entry.Rolls++
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Average > entries[j].Average
	})
	return entries
}
