// Package policy decides, for an authenticated identity, which containers
// are visible and which lifecycle actions are allowed. It is pure
// computation over the account registry's allow-lists and a live container
// snapshot; it never touches the engine or the disk itself.
package policy

import (
	"sort"
	"strings"

	"github.com/dockgate/dockgate/internal/dockerapi"
	"github.com/dockgate/dockgate/internal/registry"
)

// Action is a lifecycle verb the panel may proxy to the engine.
type Action string

const (
	ActionStart   Action = "start"
	ActionStop    Action = "stop"
	ActionRestart Action = "restart"
)

// ValidAction reports whether s names a known lifecycle verb.
func ValidAction(s string) bool {
	switch Action(s) {
	case ActionStart, ActionStop, ActionRestart:
		return true
	}
	return false
}

// StatusNotFound marks placeholder rows for allow-listed containers the
// runtime does not currently know about.
const StatusNotFound = "not_found"

// Scope is the set of container names an identity may see and act on:
// either everything, or an explicit allow-list. The zero value is an empty
// allow-list, i.e. nothing visible.
type Scope struct {
	unrestricted bool
	names        map[string]struct{}
	order        []string // allow-list order, drives placeholder ordering
}

// AllContainers is the unrestricted scope. Admin allow-lists are never
// materialized; the sentinel stands in for every container.
func AllContainers() Scope {
	return Scope{unrestricted: true}
}

// AllowList builds a restricted scope over the given container names.
func AllowList(names []string) Scope {
	s := Scope{names: make(map[string]struct{}, len(names)), order: names}
	for _, n := range names {
		s.names[n] = struct{}{}
	}
	return s
}

// ScopeFor computes an account's effective scope. The allow-list of an
// admin account is ignored.
func ScopeFor(acct registry.Account) Scope {
	if acct.IsAdmin {
		return AllContainers()
	}
	return AllowList(acct.Containers)
}

func (s Scope) IsUnrestricted() bool { return s.unrestricted }

// Allows reports whether the identity may see and act on the named
// container.
func (s Scope) Allows(name string) bool {
	if s.unrestricted {
		return true
	}
	_, ok := s.names[name]
	return ok
}

// ContainerView is the row shape returned to clients. ID and Image are
// pointers so placeholder rows serialize them as null.
type ContainerView struct {
	ID         *string `json:"id"`
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	StatusText string  `json:"statusText"`
	Image      *string `json:"image"`
}

const shortIDLen = 12

func viewOf(c dockerapi.Container) ContainerView {
	id := c.ID
	if len(id) > shortIDLen {
		id = id[:shortIDLen]
	}
	image := c.Image
	return ContainerView{
		ID:         &id,
		Name:       c.DisplayName(),
		Status:     c.State,
		StatusText: c.Status,
		Image:      &image,
	}
}

// VisibleContainers filters a live snapshot down to the given scope. Live
// matches come first in the runtime's order; for a restricted scope every
// allow-listed name without a live match gets a not_found placeholder, in
// allow-list order, so the caller always sees one row per allow-listed name.
func VisibleContainers(scope Scope, live []dockerapi.Container) []ContainerView {
	views := make([]ContainerView, 0, len(live))
	seen := make(map[string]bool)
	for _, c := range live {
		name := c.DisplayName()
		if !scope.Allows(name) {
			continue
		}
		views = append(views, viewOf(c))
		seen[name] = true
	}

	if !scope.IsUnrestricted() {
		for _, name := range scope.order {
			if seen[name] {
				continue
			}
			views = append(views, ContainerView{
				Name:       name,
				Status:     StatusNotFound,
				StatusText: "Container not found",
			})
			seen[name] = true
		}
	}
	return views
}

// AdminListing maps the whole snapshot to views, sorted case-insensitively
// by name ascending, optionally narrowed by a comma-separated keyword
// filter. A container matches when its lowercased name contains any keyword.
func AdminListing(live []dockerapi.Container, filter string) []ContainerView {
	views := make([]ContainerView, 0, len(live))
	for _, c := range live {
		views = append(views, viewOf(c))
	}
	sort.Slice(views, func(i, j int) bool {
		li, lj := strings.ToLower(views[i].Name), strings.ToLower(views[j].Name)
		if li != lj {
			return li < lj
		}
		return views[i].Name < views[j].Name
	})

	keywords := parseFilter(filter)
	if len(keywords) == 0 {
		return views
	}
	matched := make([]ContainerView, 0, len(views))
	for _, v := range views {
		lower := strings.ToLower(v.Name)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				matched = append(matched, v)
				break
			}
		}
	}
	return matched
}

func parseFilter(filter string) []string {
	if filter == "" {
		return nil
	}
	parts := strings.Split(strings.ToLower(filter), ",")
	keywords := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}
