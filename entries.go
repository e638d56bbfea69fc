package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// listEntries returns the caller's entries, or every entry for an admin.
// GET /api/entries. Order is insertion order.
func (h *Handler) listEntries(c *gin.Context) {
	entries, err := h.entries.list(c.Request.Context(), scopeFor(currentUser(c)))
	if err != nil {
		abortWithError(c, "fetch entries", err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// createEntry inserts a new entry. Non-admin callers always own what they create.
// POST /api/entries. Body: {"data": {"date", "foodName", "calories", "owner"?}}.
func (h *Handler) createEntry(c *gin.Context) {
	var body createEntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	e, err := h.entries.create(c.Request.Context(), body.Data, scopeFor(currentUser(c)))
	if err != nil {
		abortWithError(c, "create entry", err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// updateEntries applies field changes to any number of entries. Admin only.
// PUT /api/entries. Body: {"changes": {"<id>": {"calories": 300, ...}}}.
func (h *Handler) updateEntries(c *gin.Context) {
	var body updateEntriesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.entries.update(c.Request.Context(), body.Changes, scopeFor(currentUser(c))); err != nil {
		abortWithError(c, "update entries", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// deleteEntries removes entries by id. Admin only.
// DELETE /api/entries. Body: {"ids": ["<id>", ...]}.
func (h *Handler) deleteEntries(c *gin.Context) {
	var body deleteEntriesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	deleted, err := h.entries.delete(c.Request.Context(), body.IDs, scopeFor(currentUser(c)))
	if err != nil {
		abortWithError(c, "delete entries", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
}

// getGroupedEntries returns the caller's entries grouped by day, newest first,
// with each day's total checked against the caller's limit.
// GET /api/entries/grouped?from=YYYY-MM-DD&to=YYYY-MM-DD&tz=Europe/London.
// Both bounds are optional and exclusive; tz defaults to the server's zone.
func (h *Handler) getGroupedEntries(c *gin.Context) {
	u := currentUser(c)

	loc, err := loadLocation(c.Query("tz"), h.loc)
	if err != nil {
		abortWithError(c, "group entries", err)
		return
	}
	var r dateRange
	if r.From, err = parseBound(c.Query("from"), loc); err != nil {
		abortWithError(c, "group entries", err)
		return
	}
	if r.To, err = parseBound(c.Query("to"), loc); err != nil {
		abortWithError(c, "group entries", err)
		return
	}

	entries, err := h.entries.list(c.Request.Context(), scopeFor(u))
	if err != nil {
		abortWithError(c, "fetch entries", err)
		return
	}

	groups := groupByDay(entries, r, h.now(), loc)
	for i := range groups {
		groups[i].LimitExceeded = exceedsLimit(groups[i], u)
	}
	c.JSON(http.StatusOK, groupedEntriesResponse{User: u, Groups: groups})
}
