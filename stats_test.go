package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeAdminStats_Empty(t *testing.T) {
	assert.Equal(t, adminStats{}, computeAdminStats(nil, nil, testNow))
}

func TestComputeAdminStats_WeeklyCounts(t *testing.T) {
	day := 24 * time.Hour
	entries := []entry{
		{ID: "1", Date: at(testNow.Add(-1 * day))},
		{ID: "2", Date: at(testNow.Add(-6 * day))},
		{ID: "3", Date: at(testNow.Add(-7 * day))}, // boundary, in neither week
		{ID: "4", Date: at(testNow.Add(-8 * day))},
		{ID: "5", Date: at(testNow.Add(-13 * day))},
		{ID: "6", Date: at(testNow.Add(-20 * day))},
		{ID: "7", Date: "garbage"},
	}

	stats := computeAdminStats(entries, nil, testNow)

	assert.Equal(t, 2, stats.NewEntriesThisWeek)
	assert.Equal(t, 2, stats.NewEntriesLastWeek)
}

func TestComputeAdminStats_AverageSkipsAdmins(t *testing.T) {
	users := []user{{ID: "alice"}, {ID: "bob"}, {ID: "root", Role: roleAdmin}}
	entries := []entry{
		{Owner: "alice", Date: at(testNow), Calories: 1000},
		{Owner: "alice", Date: "unparsable", Calories: 500},
		{Owner: "bob", Date: at(testNow), Calories: 701},
		{Owner: "root", Date: at(testNow), Calories: 5000},
		{Owner: "", Date: at(testNow), Calories: 300},
	}

	stats := computeAdminStats(entries, users, testNow)

	// (1500 + 701) / 2 = 1100.5, floored.
	assert.Equal(t, 1100, stats.AverageCaloriesPerUser)
	assert.Equal(t, 4, stats.NewEntriesThisWeek)
}

func TestComputeAdminStats_OnlyAdmins(t *testing.T) {
	users := []user{{ID: "root", Role: roleAdmin}}
	entries := []entry{{Owner: "root", Date: at(testNow), Calories: 5000}}

	stats := computeAdminStats(entries, users, testNow)

	assert.Equal(t, 0, stats.AverageCaloriesPerUser)
}
