package main

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// getAdminDashboard returns everything the admin panel renders: the non-admin
// users (for the owner column), every entry newest-inserted first, and stats.
// GET /api/admin/dashboard.
func (h *Handler) getAdminDashboard(c *gin.Context) {
	entries, users, ok := h.loadAll(c)
	if !ok {
		return
	}
	stats := computeAdminStats(entries, users, h.now())

	newestFirst := slices.Clone(entries)
	slices.Reverse(newestFirst)

	c.JSON(http.StatusOK, adminDashboard{
		Users:   nonAdmins(users),
		Entries: newestFirst,
		Stats:   stats,
	})
}

// getAdminStats returns weekly entry counts and the per-user calorie average.
// GET /api/admin/stats.
func (h *Handler) getAdminStats(c *gin.Context) {
	entries, users, ok := h.loadAll(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, computeAdminStats(entries, users, h.now()))
}

// getAdminUsers lists the users an entry can be assigned to.
// GET /api/admin/users.
func (h *Handler) getAdminUsers(c *gin.Context) {
	users, err := h.store.findUsers(c.Request.Context())
	if err != nil {
		abortWithError(c, "fetch users", err)
		return
	}
	c.JSON(http.StatusOK, nonAdmins(users))
}

// loadAll fetches every entry (admin scope) and every user. On failure it has
// already written the error response.
func (h *Handler) loadAll(c *gin.Context) ([]entry, []user, bool) {
	entries, err := h.entries.list(c.Request.Context(), scopeFor(currentUser(c)))
	if err != nil {
		abortWithError(c, "fetch entries", err)
		return nil, nil, false
	}
	users, err := h.store.findUsers(c.Request.Context())
	if err != nil {
		abortWithError(c, "fetch users", err)
		return nil, nil, false
	}
	return entries, users, true
}

func nonAdmins(users []user) []user {
	out := make([]user, 0, len(users))
	for _, u := range users {
		if !u.isAdmin() {
			out = append(out, u)
		}
	}
	return out
}
