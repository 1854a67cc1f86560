package dockerapi

import "strings"

// Container is the slice of the Engine API's /containers/json entry the
// panel needs. Carrying these few fields directly keeps the full Docker SDK
// out of the dependency tree.
type Container struct {
	ID     string   `json:"Id"`
	Names  []string `json:"Names"`
	Image  string   `json:"Image"`
	State  string   `json:"State"`  // running, exited, paused, ...
	Status string   `json:"Status"` // human text, e.g. "Up 2 hours"
}

// DisplayName is the container's first alias with the engine's leading
// slash stripped. Snapshots with no aliases display as "unknown".
func (c Container) DisplayName() string {
	if len(c.Names) == 0 || c.Names[0] == "" {
		return "unknown"
	}
	return strings.TrimPrefix(c.Names[0], "/")
}
