package registry

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dockgate/dockgate/internal/auth"
	"github.com/dockgate/dockgate/internal/fsutil"
	"github.com/dockgate/dockgate/internal/logger"
)

const sessionSecretBytes = 32

// Store holds the in-memory registry state and is its only writer. All
// reads and mutations serialize on one mutex; mutations persist before
// returning so the on-disk document is never behind a successful response.
type Store struct {
	mu   sync.Mutex
	path string
	st   state
}

// Open loads the document at path, or seeds a fresh one (session secret,
// empty groups, bootstrap admin with bootstrapPassword) if none exists.
// Any load or save failure here must abort startup: running with state that
// cannot be persisted would silently lose mutations.
func Open(path, bootstrapPassword string) (*Store, error) {
	s := &Store{path: path}

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := s.seed(bootstrapPassword); err != nil {
			return nil, err
		}
		logger.Info("created %s with bootstrap %q account", path, BootstrapUser)
		if bootstrapPassword == "admin" {
			logger.Warn("bootstrap account uses the default password; change it")
		}
	case err != nil:
		return nil, err
	default:
		var st state
		if err := json.Unmarshal(b, &st); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if st.Groups == nil {
			st.Groups = map[string][]string{}
		}
		if st.Users == nil {
			st.Users = map[string]userRecord{}
		}
		s.st = st
		logger.Info("loaded %s: %d users, %d groups", path, len(st.Users), len(st.Groups))
	}
	return s, nil
}

func (s *Store) seed(bootstrapPassword string) error {
	secret := make([]byte, sessionSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return err
	}
	hash, err := auth.HashPassword(bootstrapPassword)
	if err != nil {
		return err
	}
	s.st = state{
		SessionSecret: hex.EncodeToString(secret),
		Groups:        map[string][]string{},
		Users: map[string]userRecord{
			BootstrapUser: {Password: hash, IsAdmin: true, Containers: []string{}},
		},
	}
	return s.saveLocked()
}

// SessionSecret returns the opaque signing secret generated on first run.
// The registry only stores it; the session layer consumes it.
func (s *Store) SessionSecret() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return []byte(s.st.SessionSecret)
}

// AdminMessage returns the operator-set notice shown to all users.
func (s *Store) AdminMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.AdminMessage
}

func (s *Store) SetAdminMessage(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.st.AdminMessage
	s.st.AdminMessage = msg
	if err := s.saveLocked(); err != nil {
		s.st.AdminMessage = prev
		return err
	}
	return nil
}

// saveLocked rewrites the whole document. Callers hold s.mu and roll their
// in-memory change back if this fails.
func (s *Store) saveLocked() error {
	b, err := json.MarshalIndent(s.st, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return fsutil.WriteFileAtomic(s.path, b, 0o600)
}
