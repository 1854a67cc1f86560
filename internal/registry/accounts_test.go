package registry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestAuthenticate(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateUser("alice", "correct horse", false, nil)
	require.NoError(t, err)

	acct, err := s.Authenticate("alice", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "alice", acct.Username)
	assert.False(t, acct.IsAdmin)

	// Unknown user and wrong password are indistinguishable.
	_, badUser := s.Authenticate("mallory", "correct horse")
	_, badPass := s.Authenticate("alice", "wrong")
	require.ErrorIs(t, badUser, ErrInvalidCredentials)
	require.ErrorIs(t, badPass, ErrInvalidCredentials)
	assert.Equal(t, badUser.Error(), badPass.Error())
}

func TestCreateUser(t *testing.T) {
	s := newTestStore(t)

	acct, err := s.CreateUser("bob", "pw", false, []string{"web"})
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, acct.Containers)

	_, err = s.CreateUser("bob", "pw2", false, nil)
	require.ErrorIs(t, err, ErrConflict)

	_, err = s.CreateUser("", "pw", false, nil)
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = s.CreateUser("carol", "", false, nil)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateUser_NeverStoresPlaintext(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateUser("bob", "super-secret-pw", false, nil)
	require.NoError(t, err)

	rec := s.st.Users["bob"]
	assert.True(t, strings.HasPrefix(rec.Password, "$2"))
	assert.NotContains(t, rec.Password, "super-secret-pw")
}

func TestUpdateUser_PartialUpdates(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateUser("bob", "pw", false, []string{"web"})
	require.NoError(t, err)

	// Only supplied fields change.
	acct, err := s.UpdateUser("bob", UserUpdate{Containers: []string{"db", "cache"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"db", "cache"}, acct.Containers)
	assert.False(t, acct.IsAdmin)

	acct, err = s.UpdateUser("bob", UserUpdate{IsAdmin: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, acct.IsAdmin)
	assert.Equal(t, []string{"db", "cache"}, acct.Containers)

	// Password rotation invalidates the old credential.
	_, err = s.UpdateUser("bob", UserUpdate{Password: strPtr("new-pw")})
	require.NoError(t, err)
	_, err = s.Authenticate("bob", "pw")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Authenticate("bob", "new-pw")
	require.NoError(t, err)

	// An empty password field is treated as absent.
	_, err = s.UpdateUser("bob", UserUpdate{Password: strPtr("")})
	require.NoError(t, err)
	_, err = s.Authenticate("bob", "new-pw")
	require.NoError(t, err)

	_, err = s.UpdateUser("nobody", UserUpdate{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUser_LastAdminGuard(t *testing.T) {
	s := newTestStore(t)

	// The only admin cannot be demoted.
	_, err := s.UpdateUser(BootstrapUser, UserUpdate{IsAdmin: boolPtr(false)})
	require.ErrorIs(t, err, ErrLastAdmin)

	// With a second admin the bootstrap account may step down.
	_, err = s.CreateUser("bob", "pw", true, nil)
	require.NoError(t, err)
	_, err = s.UpdateUser(BootstrapUser, UserUpdate{IsAdmin: boolPtr(false)})
	require.NoError(t, err)

	// Adversarial order: bob is now the only admin and cannot be demoted
	// either, so no sequence of valid updates reaches zero admins.
	_, err = s.UpdateUser("bob", UserUpdate{IsAdmin: boolPtr(false)})
	require.ErrorIs(t, err, ErrLastAdmin)

	admins := 0
	for _, acct := range s.Users() {
		if acct.IsAdmin {
			admins++
		}
	}
	assert.GreaterOrEqual(t, admins, 1)

	// Re-promoting is always allowed, and demoting a non-last admin too.
	_, err = s.UpdateUser(BootstrapUser, UserUpdate{IsAdmin: boolPtr(true)})
	require.NoError(t, err)
	_, err = s.UpdateUser("bob", UserUpdate{IsAdmin: boolPtr(false)})
	require.NoError(t, err)
}

func TestDeleteUser(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateUser("bob", "pw", false, nil)
	require.NoError(t, err)

	// The bootstrap identity can never be deleted, whoever asks.
	require.ErrorIs(t, s.DeleteUser(BootstrapUser), ErrForbidden)

	require.NoError(t, s.DeleteUser("bob"))
	_, ok := s.Account("bob")
	assert.False(t, ok)

	require.ErrorIs(t, s.DeleteUser("bob"), ErrNotFound)
}

func TestUsers_SortedAndHashFree(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"zoe", "bob", "carol"} {
		_, err := s.CreateUser(name, "pw", false, nil)
		require.NoError(t, err)
	}

	users := s.Users()
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Username
	}
	assert.Equal(t, []string{"admin", "bob", "carol", "zoe"}, names)
}

func TestBootstrapUsesDefaultPassword(t *testing.T) {
	s := newTestStore(t)
	assert.True(t, s.BootstrapUsesDefaultPassword("admin"))

	_, err := s.UpdateUser(BootstrapUser, UserUpdate{Password: strPtr("rotated")})
	require.NoError(t, err)
	assert.False(t, s.BootstrapUsesDefaultPassword("admin"))
}
