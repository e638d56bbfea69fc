package main

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gatewayFixture struct {
	store *sqliteStore
	gw    *entryGateway
	alice user
	bob   user
	admin user
}

func newGatewayFixture(t *testing.T) gatewayFixture {
	t.Helper()
	s := newTestStore(t)
	return gatewayFixture{
		store: s,
		gw:    newEntryGateway(s, testConfig().Location),
		alice: seedUser(t, s, "alice", "", 2000),
		bob:   seedUser(t, s, "bob", "", 0),
		admin: seedUser(t, s, "root", roleAdmin, 0),
	}
}

func fields(date, food string, calories float64) entryFields {
	return entryFields{Date: &date, FoodName: &food, Calories: &calories}
}

func ptr[T any](v T) *T { return &v }

func allEntries(t *testing.T, s store) []entry {
	t.Helper()
	entries, err := s.findEntries(context.Background(), "")
	require.NoError(t, err)
	return entries
}

func TestGatewayList_ScopesByOwner(t *testing.T) {
	f := newGatewayFixture(t)
	a1 := seedEntry(t, f.store, f.alice.ID, "2026-03-15T09:00:00.000Z", 100)
	b1 := seedEntry(t, f.store, f.bob.ID, "2026-03-15T10:00:00.000Z", 200)
	a2 := seedEntry(t, f.store, f.alice.ID, "2026-03-14T09:00:00.000Z", 300)
	ctx := context.Background()

	got, err := f.gw.list(ctx, scopeFor(f.alice))
	require.NoError(t, err)
	assert.Equal(t, []string{a1.ID, a2.ID}, entryIDs(got))

	got, err = f.gw.list(ctx, scopeFor(f.admin))
	require.NoError(t, err)
	assert.Equal(t, []string{a1.ID, b1.ID, a2.ID}, entryIDs(got))
}

func TestGatewayList_EmptyIsNotNil(t *testing.T) {
	f := newGatewayFixture(t)
	got, err := f.gw.list(context.Background(), scopeFor(f.bob))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGatewayList_RequiresIdentity(t *testing.T) {
	f := newGatewayFixture(t)
	_, err := f.gw.list(context.Background(), scope{})
	assert.ErrorIs(t, err, errUnauthenticated)
}

func TestGatewayCreate_ForcesOwnerForNonAdmin(t *testing.T) {
	f := newGatewayFixture(t)
	in := fields("2026-03-15T09:00:00Z", "  Porridge ", 350)
	in.Owner = &f.bob.ID

	e, err := f.gw.create(context.Background(), in, scopeFor(f.alice))
	require.NoError(t, err)

	assert.Equal(t, f.alice.ID, e.Owner)
	assert.Equal(t, "Porridge", e.FoodName)
	assert.Equal(t, "2026-03-15T09:00:00.000Z", e.Date)
	_, err = uuid.Parse(e.ID)
	assert.NoError(t, err)
	assert.Equal(t, []entry{e}, allEntries(t, f.store))
}

func TestGatewayCreate_AdminOwner(t *testing.T) {
	f := newGatewayFixture(t)
	ctx := context.Background()

	in := fields("2026-03-15T09:00:00Z", "Soup", 120)
	in.Owner = &f.bob.ID
	e, err := f.gw.create(ctx, in, scopeFor(f.admin))
	require.NoError(t, err)
	assert.Equal(t, f.bob.ID, e.Owner)

	unowned, err := f.gw.create(ctx, fields("2026-03-15T10:00:00Z", "Tea", 5), scopeFor(f.admin))
	require.NoError(t, err)
	assert.Equal(t, "", unowned.Owner)

	in.Owner = &f.admin.ID
	_, err = f.gw.create(ctx, in, scopeFor(f.admin))
	assert.ErrorIs(t, err, errValidation)

	in.Owner = ptr(uuid.NewString())
	_, err = f.gw.create(ctx, in, scopeFor(f.admin))
	assert.ErrorIs(t, err, errValidation)

	assert.Len(t, allEntries(t, f.store), 2)
}

func TestGatewayCreate_Validation(t *testing.T) {
	f := newGatewayFixture(t)
	sc := scopeFor(f.alice)

	tests := []struct {
		name string
		in   entryFields
	}{
		{"missing everything", entryFields{}},
		{"missing calories", entryFields{Date: ptr("2026-03-15T09:00:00Z"), FoodName: ptr("Toast")}},
		{"negative calories", fields("2026-03-15T09:00:00Z", "Toast", -1)},
		{"blank food name", fields("2026-03-15T09:00:00Z", "   ", 10)},
		{"bad date", fields("tomorrow", "Toast", 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.gw.create(context.Background(), tt.in, sc)
			assert.ErrorIs(t, err, errValidation)
		})
	}
	assert.Empty(t, allEntries(t, f.store))
}

func TestGatewayUpdate_NonAdminForbidden(t *testing.T) {
	f := newGatewayFixture(t)
	e := seedEntry(t, f.store, f.alice.ID, "2026-03-15T09:00:00.000Z", 100)
	before := allEntries(t, f.store)

	err := f.gw.update(context.Background(), map[string]entryFields{
		e.ID: {Calories: ptr(999.0)},
	}, scopeFor(f.alice))

	assert.ErrorIs(t, err, errForbidden)
	assert.Equal(t, before, allEntries(t, f.store))
}

func TestGatewayUpdate_Admin(t *testing.T) {
	f := newGatewayFixture(t)
	e1 := seedEntry(t, f.store, f.alice.ID, "2026-03-15T09:00:00.000Z", 100)
	e2 := seedEntry(t, f.store, f.alice.ID, "2026-03-15T10:00:00.000Z", 200)

	err := f.gw.update(context.Background(), map[string]entryFields{
		e1.ID:            {Calories: ptr(150.0), FoodName: ptr("Apple")},
		e2.ID:            {Owner: &f.bob.ID, Date: ptr("2026-03-14T10:00:00Z")},
		uuid.NewString(): {Calories: ptr(1.0)},
	}, scopeFor(f.admin))
	require.NoError(t, err)

	got := allEntries(t, f.store)
	require.Len(t, got, 2)
	assert.Equal(t, entry{ID: e1.ID, Date: e1.Date, FoodName: "Apple", Calories: 150, Owner: f.alice.ID}, got[0])
	assert.Equal(t, entry{ID: e2.ID, Date: "2026-03-14T10:00:00.000Z", FoodName: "Food", Calories: 200, Owner: f.bob.ID}, got[1])
}

func TestGatewayUpdate_Validation(t *testing.T) {
	f := newGatewayFixture(t)
	e := seedEntry(t, f.store, f.alice.ID, "2026-03-15T09:00:00.000Z", 100)
	before := allEntries(t, f.store)
	sc := scopeFor(f.admin)
	ctx := context.Background()

	assert.ErrorIs(t, f.gw.update(ctx, nil, sc), errValidation)
	assert.ErrorIs(t, f.gw.update(ctx, map[string]entryFields{"not-an-id": {Calories: ptr(1.0)}}, sc), errValidation)
	assert.ErrorIs(t, f.gw.update(ctx, map[string]entryFields{e.ID: {Calories: ptr(-5.0)}}, sc), errValidation)
	assert.ErrorIs(t, f.gw.update(ctx, map[string]entryFields{e.ID: {Owner: &f.admin.ID}}, sc), errValidation)

	// An empty change-set is a no-op.
	assert.NoError(t, f.gw.update(ctx, map[string]entryFields{e.ID: {}}, sc))
	assert.Equal(t, before, allEntries(t, f.store))
}

func TestGatewayDelete(t *testing.T) {
	f := newGatewayFixture(t)
	e1 := seedEntry(t, f.store, f.alice.ID, "2026-03-15T09:00:00.000Z", 100)
	e2 := seedEntry(t, f.store, f.bob.ID, "2026-03-15T10:00:00.000Z", 200)
	e3 := seedEntry(t, f.store, f.bob.ID, "2026-03-15T11:00:00.000Z", 300)
	ctx := context.Background()

	n, err := f.gw.delete(ctx, []string{e1.ID, e3.ID, uuid.NewString()}, scopeFor(f.admin))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, []string{e2.ID}, entryIDs(allEntries(t, f.store)))
}

func TestGatewayDelete_Rejections(t *testing.T) {
	f := newGatewayFixture(t)
	e := seedEntry(t, f.store, f.alice.ID, "2026-03-15T09:00:00.000Z", 100)
	before := allEntries(t, f.store)
	ctx := context.Background()

	_, err := f.gw.delete(ctx, []string{}, scopeFor(f.admin))
	assert.ErrorIs(t, err, errValidation)

	_, err = f.gw.delete(ctx, []string{e.ID}, scopeFor(f.alice))
	assert.ErrorIs(t, err, errForbidden)

	_, err = f.gw.delete(ctx, []string{e.ID, "nope"}, scopeFor(f.admin))
	assert.ErrorIs(t, err, errValidation)

	assert.Equal(t, before, allEntries(t, f.store))
}

func TestGateway_StoreFailureIsWrapped(t *testing.T) {
	f := newGatewayFixture(t)
	f.store.close()

	_, err := f.gw.list(context.Background(), scopeFor(f.admin))
	assert.ErrorIs(t, err, errStore)
}

func TestGatewayUpdate_ReportsFirstInvalidIDInOrder(t *testing.T) {
	f := newGatewayFixture(t)
	changes := map[string]entryFields{
		"zz-bad": {Calories: ptr(1.0)},
		"aa-bad": {Calories: ptr(1.0)},
		"mm-bad": {Calories: ptr(1.0)},
	}

	for i := 0; i < 20; i++ {
		err := f.gw.update(context.Background(), changes, scopeFor(f.admin))
		require.ErrorIs(t, err, errValidation)
		assert.Contains(t, err.Error(), `"aa-bad"`)
	}
}
