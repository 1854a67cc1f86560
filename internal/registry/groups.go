package registry

import (
	"fmt"
	"sort"
)

// Groups lists every group, sorted by name. Any authenticated identity may
// read these; they carry no access rights.
func (s *Store) Groups() []Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Group, 0, len(s.st.Groups))
	for name, containers := range s.st.Groups {
		if containers == nil {
			containers = []string{}
		}
		out = append(out, Group{Name: name, Containers: containers})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CreateGroup adds a named container list. Container names are not checked
// against the runtime; a group may reference containers that do not exist.
func (s *Store) CreateGroup(name string, containers []string) (Group, error) {
	if name == "" {
		return Group{}, fmt.Errorf("%w: group name required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.st.Groups[name]; exists {
		return Group{}, fmt.Errorf("%w: group %q", ErrConflict, name)
	}
	if containers == nil {
		containers = []string{}
	}
	s.st.Groups[name] = containers
	if err := s.saveLocked(); err != nil {
		delete(s.st.Groups, name)
		return Group{}, err
	}
	return Group{Name: name, Containers: containers}, nil
}

// UpdateGroup replaces the container list when one is supplied (nil keeps
// the current list) and re-keys the group when newName is non-empty and
// different. Renaming onto an existing group's name overwrites that group
// without raising a conflict; that matches how the panel has always
// behaved, deliberate or not.
func (s *Store) UpdateGroup(name string, containers []string, newName string) (Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.st.Groups[name]
	if !exists {
		return Group{}, fmt.Errorf("%w: group %q", ErrNotFound, name)
	}

	next := prev
	if containers != nil {
		next = containers
	}

	key := name
	var overwritten []string
	var hadTarget bool
	if newName != "" && newName != name {
		key = newName
		overwritten, hadTarget = s.st.Groups[newName]
		s.st.Groups[newName] = next
		delete(s.st.Groups, name)
	} else {
		s.st.Groups[name] = next
	}

	if err := s.saveLocked(); err != nil {
		if key != name {
			if hadTarget {
				s.st.Groups[key] = overwritten
			} else {
				delete(s.st.Groups, key)
			}
		}
		s.st.Groups[name] = prev
		return Group{}, err
	}
	if next == nil {
		next = []string{}
	}
	return Group{Name: key, Containers: next}, nil
}

// DeleteGroup removes a group by name.
func (s *Store) DeleteGroup(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.st.Groups[name]
	if !exists {
		return fmt.Errorf("%w: group %q", ErrNotFound, name)
	}
	delete(s.st.Groups, name)
	if err := s.saveLocked(); err != nil {
		s.st.Groups[name] = prev
		return err
	}
	return nil
}
