package main

import (
	"math"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
)

// groupByDay filters entries to the open interval (r.From, r.To), sorts them
// newest first and buckets them by calendar day in loc. Groups come out in
// reverse chronological order; entries with equal timestamps keep their input
// order. Entries whose date does not parse are dropped.
func groupByDay(entries []entry, r dateRange, now time.Time, loc *time.Location) []entryGroup {
	type dated struct {
		e entry
		t time.Time
	}
	kept := make([]dated, 0, len(entries))
	for _, e := range entries {
		t, ok := parseStoredDate(e.Date)
		if !ok {
			continue
		}
		if r.From != nil && !t.After(*r.From) {
			continue
		}
		if r.To != nil && !t.Before(*r.To) {
			continue
		}
		kept = append(kept, dated{e: e, t: t.In(loc)})
	}
	slices.SortStableFunc(kept, func(a, b dated) int { return b.t.Compare(a.t) })

	now = now.In(loc)
	today := dayKey(now)
	yesterday := dayKey(now.AddDate(0, 0, -1))

	groups := []entryGroup{}
	index := make(map[string]int)
	for _, d := range kept {
		key := dayKey(d.t)
		i, ok := index[key]
		if !ok {
			groups = append(groups, entryGroup{
				Name:    dayLabel(d.t, key, today, yesterday, now.Year()),
				IsToday: key == today,
				Entries: []entry{},
			})
			i = len(groups) - 1
			index[key] = i
		}
		groups[i].Entries = append(groups[i].Entries, d.e)
	}

	for i := range groups {
		var total float64
		for _, e := range groups[i].Entries {
			total += e.Calories
		}
		groups[i].TotalCalories = int(math.Floor(total))
	}
	return groups
}

func dayKey(t time.Time) string { return t.Format("2006-01-02") }

// dayLabel names a day "Today", "Yesterday", or e.g. "Mon 2nd Jan"; the year is
// appended only when it differs from the current one.
func dayLabel(t time.Time, key, today, yesterday string, currentYear int) string {
	switch key {
	case today:
		return "Today"
	case yesterday:
		return "Yesterday"
	}
	label := t.Format("Mon ") + humanize.Ordinal(t.Day()) + t.Format(" Jan")
	if t.Year() != currentYear {
		label += t.Format(", 2006")
	}
	return label
}

// exceedsLimit reports whether the group's total is over the user's daily limit.
// Users without a limit never exceed it.
func exceedsLimit(g entryGroup, u user) bool {
	if u.MaxCaloriesPerDay == nil {
		return false
	}
	return g.TotalCalories > *u.MaxCaloriesPerDay
}
