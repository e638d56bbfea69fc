package main

import (
	"math"
	"time"
)

// computeAdminStats derives the admin dashboard numbers from the full entry and
// user lists:
//   - entries dated after now-7d
//   - entries dated strictly between now-14d and now-7d
//   - the floored mean, across non-admin users, of each user's calorie total
//
// Admin users are skipped. With no non-admin users the mean is 0.
func computeAdminStats(entries []entry, users []user, now time.Time) adminStats {
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	var stats adminStats
	caloriesByOwner := make(map[string]float64)
	for _, e := range entries {
		caloriesByOwner[e.Owner] += e.Calories

		t, ok := parseStoredDate(e.Date)
		if !ok {
			continue
		}
		if t.After(weekAgo) {
			stats.NewEntriesThisWeek++
		} else if t.After(twoWeeksAgo) && t.Before(weekAgo) {
			stats.NewEntriesLastWeek++
		}
	}

	var sum float64
	counted := 0
	for _, u := range users {
		if u.isAdmin() {
			continue
		}
		sum += caloriesByOwner[u.ID]
		counted++
	}
	// avoid div by zero; yields 0
	den := counted
	if den == 0 {
		den = 1
	}
	stats.AverageCaloriesPerUser = int(math.Floor(sum / float64(den)))
	return stats
}
