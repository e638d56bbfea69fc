package main

import (
	"time"
)

const roleAdmin = "admin"

/* ─── Domain structs ─────────────────────────────────────────────────── */

// user maps to the users table. Password (a bcrypt hash) is hidden from JSON
// responses. Role is "admin" or empty; MaxCaloriesPerDay is nil when the user
// has no daily limit configured.
type user struct {
	ID                string    `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Role              string    `json:"role,omitempty" db:"role"`
	MaxCaloriesPerDay *int      `json:"maxCaloriesPerDay,omitempty" db:"max_calories_per_day"`
	Password          string    `json:"-" db:"password"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
}

func (u user) isAdmin() bool { return u.Role == roleAdmin }

// entry maps to the entries table. Date is kept as the ISO-8601 string it was
// stored with; anything that needs a time parses it with parseStoredDate and
// skips rows that don't parse. Owner is empty for admin-created entries.
type entry struct {
	ID       string  `json:"id" db:"id"`
	Date     string  `json:"date" db:"date"`
	FoodName string  `json:"foodName" db:"food_name"`
	Calories float64 `json:"calories" db:"calories"`
	Owner    string  `json:"owner" db:"owner"`
}

// entryFields carries the writable entry fields. It is the body of a create
// request and the per-id value of an update change-set. Pointer fields
// distinguish "not provided" from zero.
type entryFields struct {
	Date     *string  `json:"date"`
	FoodName *string  `json:"foodName"`
	Calories *float64 `json:"calories"`
	Owner    *string  `json:"owner"`
}

func (f entryFields) empty() bool {
	return f.Date == nil && f.FoodName == nil && f.Calories == nil && f.Owner == nil
}

// scope is the caller's authorization context for gateway operations.
type scope struct {
	UserID string
	Admin  bool
}

func scopeFor(u user) scope {
	return scope{UserID: u.ID, Admin: u.isAdmin()}
}

/* ─── Derived views ──────────────────────────────────────────────────── */

// dateRange bounds a grouping pass. Both ends are exclusive and optional.
type dateRange struct {
	From *time.Time
	To   *time.Time
}

// entryGroup is one calendar day of entries in the viewer's time zone.
// LimitExceeded is filled in per caller by the handler; groupByDay leaves it false.
type entryGroup struct {
	Name          string  `json:"name"`
	IsToday       bool    `json:"isToday"`
	TotalCalories int     `json:"totalCalories"`
	LimitExceeded bool    `json:"limitExceeded"`
	Entries       []entry `json:"entries"`
}

// adminStats is the response shape for GET /api/admin/stats.
type adminStats struct {
	NewEntriesThisWeek     int `json:"newEntriesThisWeek"`
	NewEntriesLastWeek     int `json:"newEntriesLastWeek"`
	AverageCaloriesPerUser int `json:"averageCaloriesPerUser"`
}

/* ─── Request / response bodies ──────────────────────────────────────── */

// createEntryRequest is the request body for POST /api/entries.
type createEntryRequest struct {
	Data entryFields `json:"data"`
}

// updateEntriesRequest is the request body for PUT /api/entries: entry id → changes.
type updateEntriesRequest struct {
	Changes map[string]entryFields `json:"changes"`
}

// deleteEntriesRequest is the request body for DELETE /api/entries.
type deleteEntriesRequest struct {
	IDs []string `json:"ids"`
}

// groupedEntriesResponse is the response shape for GET /api/entries/grouped.
type groupedEntriesResponse struct {
	User   user         `json:"user"`
	Groups []entryGroup `json:"groups"`
}

// adminDashboard is the response shape for GET /api/admin/dashboard.
type adminDashboard struct {
	Users   []user     `json:"users"`
	Entries []entry    `json:"entries"`
	Stats   adminStats `json:"stats"`
}
