package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varunrmantri23/nexacode/internal/core"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, uid string) core.User {
	t.Helper()
	u := core.User{UID: uid, Email: uid + "@example.com", DisplayName: "User " + uid, Provider: "github.com", UpdatedAt: t0}
	require.NoError(t, s.UpsertUser(context.Background(), u))
	return u
}

func seedProject(t *testing.T, s *Store, id, title string, owner core.User) core.Project {
	t.Helper()
	p := core.Project{
		ID:        id,
		Title:     title,
		HTML:      "<h1>" + title + "</h1>",
		CSS:       "h1{}",
		JS:        "",
		Output:    core.ComposeDocument("<h1>"+title+"</h1>", "h1{}", ""),
		Owner:     owner,
		CreatedAt: t0,
		UpdatedAt: t0,
	}
	require.NoError(t, s.SaveProject(context.Background(), p))
	return p
}

func TestOpenFileDatabase(t *testing.T) {
	path := t.TempDir() + "/nested/nexacode.db"
	s, err := Open(path, WithMkdirAll(), WithBusyTimeout(2000))
	require.NoError(t, err)
	defer s.Close()

	seedUser(t, s, "u1")

	// Reopening applies the schema again without error.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
	_, err = s2.GetUser(context.Background(), "u1")
	require.NoError(t, err)
}

func TestUserUpsertKeepsEditedDisplayName(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1")

	require.NoError(t, s.UpdateDisplayName(ctx, "u1", "Ada", t0.Add(time.Hour)))
	require.NoError(t, s.UpsertUser(ctx, core.User{UID: "u1", Email: "new@example.com", DisplayName: "Provider Name", UpdatedAt: t0.Add(2 * time.Hour)}))

	got, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.DisplayName)
	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, t0.Add(2*time.Hour), got.UpdatedAt)
}

func TestUserNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetUser(context.Background(), "ghost")
	assert.True(t, errors.Is(err, core.ErrNotFound), "got %v", err)

	err = s.UpdateDisplayName(context.Background(), "ghost", "x", t0)
	assert.True(t, errors.Is(err, core.ErrNotFound), "got %v", err)
}

func TestProjectRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "u1")
	want := seedProject(t, s, "01A", "Clock", owner)

	got, err := s.GetProject(ctx, "01A")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("project mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveProjectUpdatesInPlace(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "u1")
	p := seedProject(t, s, "01A", "Clock", owner)

	p.Title = "Clock v2"
	p.JS = "tick()"
	p.CreatedAt = t0.Add(time.Hour)
	p.UpdatedAt = t0.Add(time.Hour)
	require.NoError(t, s.SaveProject(ctx, p))

	got, err := s.GetProject(ctx, "01A")
	require.NoError(t, err)
	assert.Equal(t, "Clock v2", got.Title)
	assert.Equal(t, "tick()", got.JS)
	assert.Equal(t, t0, got.CreatedAt, "created_at must not change on update")
	assert.Equal(t, t0.Add(time.Hour), got.UpdatedAt)
}

func TestListProjectsNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	a := seedUser(t, s, "a")
	b := seedUser(t, s, "b")
	seedProject(t, s, "01A", "first", a)
	seedProject(t, s, "01B", "second", b)
	seedProject(t, s, "01C", "third", a)

	all, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"01C", "01B", "01A"}, []string{all[0].ID, all[1].ID, all[2].ID})
	assert.Equal(t, "User b", all[1].Owner.DisplayName)

	mine, err := s.ListProjectsByOwner(ctx, "a", 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "01C", mine[0].ID)

	n, err := s.CountProjectsByOwner(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestProjectNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetProject(context.Background(), "missing")
	assert.True(t, errors.Is(err, core.ErrNotFound), "got %v", err)
}

func TestCollections(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	owner := seedUser(t, s, "u1")
	other := seedUser(t, s, "u2")
	seedProject(t, s, "01A", "one", owner)
	seedProject(t, s, "01B", "two", other)

	require.NoError(t, s.CreateCollection(ctx, core.Collection{ID: "c1", OwnerUID: "u1", Name: "Favorites", ProjectIDs: []string{"01A"}, CreatedAt: t0}))
	require.NoError(t, s.CreateCollection(ctx, core.Collection{ID: "c2", OwnerUID: "u1", Name: "Empty", CreatedAt: t0}))
	require.NoError(t, s.CreateCollection(ctx, core.Collection{ID: "c3", OwnerUID: "u2", Name: "Theirs", CreatedAt: t0}))

	require.NoError(t, s.AddToCollection(ctx, "c1", "01B", t0.Add(time.Minute)))
	require.NoError(t, s.AddToCollection(ctx, "c1", "01B", t0.Add(2*time.Minute)))

	list, err := s.ListCollections(ctx, "u1")
	require.NoError(t, err)
	want := []core.Collection{
		{ID: "c1", OwnerUID: "u1", Name: "Favorites", ProjectIDs: []string{"01A", "01B"}, CreatedAt: t0},
		{ID: "c2", OwnerUID: "u1", Name: "Empty", ProjectIDs: []string{}, CreatedAt: t0},
	}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Errorf("collections mismatch (-want +got):\n%s", diff)
	}

	ids, err := s.CollectionsContaining(ctx, "u1", "01B")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, ids)

	require.NoError(t, s.RemoveFromCollection(ctx, "c1", "01A"))
	c1, err := s.GetCollection(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"01B"}, c1.ProjectIDs)

	n, err := s.CountCollections(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.DeleteCollection(ctx, "c1"))
	_, err = s.GetCollection(ctx, "c1")
	assert.True(t, errors.Is(err, core.ErrNotFound))
	assert.True(t, errors.Is(s.DeleteCollection(ctx, "c1"), core.ErrNotFound))

	// Membership rows went with the collection.
	ids, err = s.CollectionsContaining(ctx, "u1", "01B")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestAddToCollectionRejectsUnknownProject(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	seedUser(t, s, "u1")
	require.NoError(t, s.CreateCollection(ctx, core.Collection{ID: "c1", OwnerUID: "u1", Name: "x", CreatedAt: t0}))

	assert.Error(t, s.AddToCollection(ctx, "c1", "nope", t0))
}
