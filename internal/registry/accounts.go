package registry

import (
	"fmt"
	"sort"

	"github.com/dockgate/dockgate/internal/auth"
)

// Authenticate checks a username/password pair. An unknown username and a
// wrong password return the same ErrInvalidCredentials. Any other error is
// a malformed stored hash, which is a configuration fault.
func (s *Store) Authenticate(username, password string) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.st.Users[username]
	if !exists {
		return Account{}, ErrInvalidCredentials
	}
	ok, err := auth.VerifyPassword(u.Password, password)
	if err != nil {
		return Account{}, fmt.Errorf("verify password for %q: %w", username, err)
	}
	if !ok {
		return Account{}, ErrInvalidCredentials
	}
	return accountOf(username, u), nil
}

// Account looks up a single account by username.
func (s *Store) Account(username string) (Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.Users[username]
	if !ok {
		return Account{}, false
	}
	return accountOf(username, u), true
}

// Users lists every account, sorted by username. Hashes stay internal.
func (s *Store) Users() []Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Account, 0, len(s.st.Users))
	for name, u := range s.st.Users {
		out = append(out, accountOf(name, u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// CreateUser adds an account. The plaintext is hashed before it is stored
// and is never written anywhere else.
func (s *Store) CreateUser(username, password string, isAdmin bool, containers []string) (Account, error) {
	if username == "" || password == "" {
		return Account{}, fmt.Errorf("%w: username and password required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.st.Users[username]; exists {
		return Account{}, fmt.Errorf("%w: user %q", ErrConflict, username)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return Account{}, err
	}
	if containers == nil {
		containers = []string{}
	}
	rec := userRecord{Password: hash, IsAdmin: isAdmin, Containers: containers}
	s.st.Users[username] = rec
	if err := s.saveLocked(); err != nil {
		delete(s.st.Users, username)
		return Account{}, err
	}
	return accountOf(username, rec), nil
}

// UserUpdate carries a partial account mutation; nil fields keep the
// current value. An empty Password is treated as absent.
type UserUpdate struct {
	Password   *string
	IsAdmin    *bool
	Containers []string
}

// UpdateUser applies a partial update. Clearing the admin flag on the only
// remaining admin fails with ErrLastAdmin: admins among the other accounts
// are counted before anything is applied, so no sequence of valid updates
// can reach zero admins.
func (s *Store) UpdateUser(username string, upd UserUpdate) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.st.Users[username]
	if !exists {
		return Account{}, fmt.Errorf("%w: user %q", ErrNotFound, username)
	}

	if upd.IsAdmin != nil && !*upd.IsAdmin && prev.IsAdmin {
		if s.adminCountExcludingLocked(username) == 0 {
			return Account{}, ErrLastAdmin
		}
	}

	next := prev
	if upd.Password != nil && *upd.Password != "" {
		hash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return Account{}, err
		}
		next.Password = hash
	}
	if upd.IsAdmin != nil {
		next.IsAdmin = *upd.IsAdmin
	}
	if upd.Containers != nil {
		next.Containers = upd.Containers
	}

	s.st.Users[username] = next
	if err := s.saveLocked(); err != nil {
		s.st.Users[username] = prev
		return Account{}, err
	}
	return accountOf(username, next), nil
}

// DeleteUser removes an account. The bootstrap identity is protected.
func (s *Store) DeleteUser(username string) error {
	if username == BootstrapUser {
		return fmt.Errorf("%w: cannot delete the %q account", ErrForbidden, BootstrapUser)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.st.Users[username]
	if !exists {
		return fmt.Errorf("%w: user %q", ErrNotFound, username)
	}
	delete(s.st.Users, username)
	if err := s.saveLocked(); err != nil {
		s.st.Users[username] = prev
		return err
	}
	return nil
}

// BootstrapUsesDefaultPassword reports whether the bootstrap account still
// accepts the given factory-default plaintext. Login and whoami responses
// surface this so operators rotate the credential.
func (s *Store) BootstrapUsesDefaultPassword(defaultPlaintext string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.Users[BootstrapUser]
	if !ok {
		return false
	}
	return auth.IsDefaultCredential(u.Password, defaultPlaintext)
}

func (s *Store) adminCountExcludingLocked(username string) int {
	n := 0
	for name, u := range s.st.Users {
		if name != username && u.IsAdmin {
			n++
		}
	}
	return n
}
