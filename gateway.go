package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// entryGateway applies ownership scoping and validation on top of the store.
// It holds no state between calls; every read goes to the store.
type entryGateway struct {
	store store
	loc   *time.Location // zone for client dates sent without an offset
	newID func() string
}

func newEntryGateway(s store, loc *time.Location) *entryGateway {
	return &entryGateway{store: s, loc: loc, newID: uuid.NewString}
}

// list returns every entry for an admin, otherwise only the caller's entries.
func (g *entryGateway) list(ctx context.Context, sc scope) ([]entry, error) {
	owner := sc.UserID
	if sc.Admin {
		owner = ""
	} else if owner == "" {
		return nil, errUnauthenticated
	}
	entries, err := g.store.findEntries(ctx, owner)
	recordGatewayOp("list", err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errStore, err)
	}
	if entries == nil {
		entries = []entry{}
	}
	return entries, nil
}

// create inserts a new entry. For non-admins the owner is always the caller,
// whatever the request says.
func (g *entryGateway) create(ctx context.Context, f entryFields, sc scope) (entry, error) {
	if f.Date == nil || f.FoodName == nil || f.Calories == nil {
		return entry{}, fmt.Errorf("%w: date, foodName and calories are required", errValidation)
	}
	if !sc.Admin {
		f.Owner = &sc.UserID
	}
	f, err := g.validateFields(ctx, f)
	if err != nil {
		return entry{}, err
	}

	e := entry{
		ID:       g.newID(),
		Date:     *f.Date,
		FoodName: *f.FoodName,
		Calories: *f.Calories,
	}
	if f.Owner != nil {
		e.Owner = *f.Owner
	}
	err = g.store.insertEntry(ctx, e)
	recordGatewayOp("create", err)
	if err != nil {
		return entry{}, fmt.Errorf("%w: %v", errStore, err)
	}
	return e, nil
}

// update applies a change-set of entry id → fields. Admin only. Ids that match
// no entry are ignored.
func (g *entryGateway) update(ctx context.Context, changes map[string]entryFields, sc scope) error {
	if !sc.Admin {
		return fmt.Errorf("%w: you are not authorised to update entries", errForbidden)
	}
	if len(changes) == 0 {
		return fmt.Errorf("%w: missing changes", errValidation)
	}

	checked := make(map[string]entryFields, len(changes))
	for _, id := range slices.Sorted(maps.Keys(changes)) {
		f := changes[id]
		if err := validateEntryID(id); err != nil {
			return err
		}
		if f.empty() {
			continue
		}
		nf, err := g.validateFields(ctx, f)
		if err != nil {
			return fmt.Errorf("entry %s: %w", id, err)
		}
		checked[id] = nf
	}
	if len(checked) == 0 {
		return nil
	}

	err := g.store.updateEntries(ctx, checked)
	recordGatewayOp("update", err)
	if err != nil {
		return fmt.Errorf("%w: %v", errStore, err)
	}
	return nil
}

// delete removes every entry whose id is in ids. Admin only.
func (g *entryGateway) delete(ctx context.Context, ids []string, sc scope) (int64, error) {
	if !sc.Admin {
		return 0, fmt.Errorf("%w: you are not authorised to delete entries", errForbidden)
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: missing ids", errValidation)
	}
	for _, id := range ids {
		if err := validateEntryID(id); err != nil {
			return 0, err
		}
	}

	n, err := g.store.deleteEntries(ctx, ids)
	recordGatewayOp("delete", err)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errStore, err)
	}
	return n, nil
}

/* ─── Validation ──────────────────────────────────────────────────────── */

// validateFields checks every provided field and returns a copy with the date
// normalised and the food name trimmed.
func (g *entryGateway) validateFields(ctx context.Context, f entryFields) (entryFields, error) {
	if f.Date != nil {
		date, err := normalizeEntryDate(*f.Date, g.loc)
		if err != nil {
			return f, err
		}
		f.Date = &date
	}
	if f.FoodName != nil {
		name := strings.TrimSpace(*f.FoodName)
		if name == "" {
			return f, fmt.Errorf("%w: foodName must not be empty", errValidation)
		}
		f.FoodName = &name
	}
	if f.Calories != nil && *f.Calories < 0 {
		return f, fmt.Errorf("%w: calories must not be negative", errValidation)
	}
	if f.Owner != nil && *f.Owner != "" {
		if err := g.checkOwner(ctx, *f.Owner); err != nil {
			return f, err
		}
	}
	return f, nil
}

// checkOwner verifies that id names an existing non-admin user.
func (g *entryGateway) checkOwner(ctx context.Context, id string) error {
	u, err := g.store.userByID(ctx, id)
	if errors.Is(err, errNotFound) {
		return fmt.Errorf("%w: owner %q does not exist", errValidation, id)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", errStore, err)
	}
	if u.isAdmin() {
		return fmt.Errorf("%w: owner must not be an administrator", errValidation)
	}
	return nil
}

func validateEntryID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: malformed entry id %q", errValidation, id)
	}
	return nil
}
