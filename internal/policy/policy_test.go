package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dockgate/dockgate/internal/dockerapi"
	"github.com/dockgate/dockgate/internal/registry"
)

func snapshot() []dockerapi.Container {
	return []dockerapi.Container{
		{ID: "aaaaaaaaaaaaaaaaaaaa", Names: []string{"/web"}, Image: "nginx:1.27", State: "running", Status: "Up 2 hours"},
		{ID: "bbbbbbbbbbbbbbbbbbbb", Names: []string{"/cache"}, Image: "redis:7", State: "exited", Status: "Exited (0) 3 days ago"},
		{ID: "cccccccccccccccccccc", Names: []string{"/Webhook-Relay"}, Image: "relay:latest", State: "paused", Status: "Paused"},
	}
}

func TestScopeFor(t *testing.T) {
	admin := registry.Account{Username: "root", IsAdmin: true, Containers: []string{"ignored"}}
	assert.True(t, ScopeFor(admin).IsUnrestricted(), "admin allow-lists are meaningless")

	user := registry.Account{Username: "alice", Containers: []string{"web"}}
	scope := ScopeFor(user)
	assert.False(t, scope.IsUnrestricted())
	assert.True(t, scope.Allows("web"))
	assert.False(t, scope.Allows("cache"))

	// Empty allow-list means nothing is visible, not everything.
	empty := ScopeFor(registry.Account{Username: "bob"})
	assert.False(t, empty.Allows("web"))
}

func TestVisibleContainers_Unrestricted(t *testing.T) {
	views := VisibleContainers(AllContainers(), snapshot())
	require.Len(t, views, 3)

	// Runtime order preserved; ids truncated; leading slash stripped.
	assert.Equal(t, "web", views[0].Name)
	require.NotNil(t, views[0].ID)
	assert.Equal(t, "aaaaaaaaaaaa", *views[0].ID)
	assert.Equal(t, "running", views[0].Status)
	assert.Equal(t, "Up 2 hours", views[0].StatusText)
	require.NotNil(t, views[0].Image)
	assert.Equal(t, "nginx:1.27", *views[0].Image)
	assert.Equal(t, "Webhook-Relay", views[2].Name)
}

func TestVisibleContainers_RestrictedWithPlaceholders(t *testing.T) {
	live := []dockerapi.Container{
		{ID: "aaaaaaaaaaaaaaaaaaaa", Names: []string{"/web"}, Image: "nginx:1.27", State: "running", Status: "Up 2 hours"},
	}
	views := VisibleContainers(AllowList([]string{"web", "db"}), live)
	require.Len(t, views, 2, "one row per allow-listed name, live or not")

	assert.Equal(t, "web", views[0].Name)
	assert.Equal(t, "running", views[0].Status)

	// The missing allow-listed container appears as a placeholder with a
	// null id and image.
	assert.Equal(t, "db", views[1].Name)
	assert.Equal(t, StatusNotFound, views[1].Status)
	assert.Equal(t, "Container not found", views[1].StatusText)
	assert.Nil(t, views[1].ID)
	assert.Nil(t, views[1].Image)
}

func TestVisibleContainers_Ordering(t *testing.T) {
	// Live matches keep runtime order; placeholders follow in allow-list
	// order.
	views := VisibleContainers(AllowList([]string{"gone-1", "cache", "gone-2", "web"}), snapshot())
	names := make([]string, len(views))
	for i, v := range views {
		names[i] = v.Name
	}
	assert.Equal(t, []string{"web", "cache", "gone-1", "gone-2"}, names)
}

func TestVisibleContainers_FiltersUnlisted(t *testing.T) {
	views := VisibleContainers(AllowList([]string{"cache"}), snapshot())
	require.Len(t, views, 1)
	assert.Equal(t, "cache", views[0].Name)
}

func TestValidAction(t *testing.T) {
	for _, action := range []string{"start", "stop", "restart"} {
		assert.True(t, ValidAction(action), action)
	}
	for _, action := range []string{"", "kill", "exec", "Start", "remove"} {
		assert.False(t, ValidAction(action), action)
	}
}

func TestAdminListing_SortedByName(t *testing.T) {
	// Case-insensitive: "cache" sorts before "Webhook-Relay" even though
	// 'W' < 'c' in byte order.
	views := AdminListing(snapshot(), "")
	names := make([]string, len(views))
	for i, v := range views {
		names[i] = v.Name
	}
	assert.Equal(t, []string{"cache", "web", "Webhook-Relay"}, names)
}

func TestAdminListing_SortTiebreakOnCase(t *testing.T) {
	// Names equal under case folding fall back to byte order so the sort
	// stays deterministic.
	live := []dockerapi.Container{
		{ID: "aaaaaaaaaaaaaaaaaaaa", Names: []string{"/web"}, Image: "nginx:1.27", State: "running", Status: "Up 2 hours"},
		{ID: "bbbbbbbbbbbbbbbbbbbb", Names: []string{"/Web"}, Image: "nginx:1.27", State: "running", Status: "Up 1 hour"},
	}
	views := AdminListing(live, "")
	names := make([]string, len(views))
	for i, v := range views {
		names[i] = v.Name
	}
	assert.Equal(t, []string{"Web", "web"}, names)
}

func TestAdminListing_KeywordFilter(t *testing.T) {
	// Comma-separated keywords, any-match, case-insensitive.
	views := AdminListing(snapshot(), "web,cache")
	names := make([]string, len(views))
	for i, v := range views {
		names[i] = v.Name
	}
	assert.Equal(t, []string{"cache", "web", "Webhook-Relay"}, names)

	views = AdminListing(snapshot(), "WEB")
	require.Len(t, views, 2)

	views = AdminListing(snapshot(), " redis , nope ")
	assert.Empty(t, views, "keywords match names, not images")

	views = AdminListing(snapshot(), ", ,")
	require.Len(t, views, 3, "blank keywords are dropped, not matched")
}
