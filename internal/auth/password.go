package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GehirnInc/crypt"
	"github.com/GehirnInc/crypt/md5_crypt"
	"github.com/GehirnInc/crypt/sha256_crypt"
	"github.com/GehirnInc/crypt/sha512_crypt"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

var ErrUnsupportedHash = errors.New("unsupported password hash")

// HashPassword produces the stored form of a plaintext password. New hashes
// are always bcrypt; legacy formats are verify-only.
func HashPassword(plaintext string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether plaintext matches the stored hash.
// A mismatch is a clean false; an error means the hash itself is malformed
// or uses a format this build cannot verify, which is a configuration
// problem rather than a bad login.
func VerifyPassword(hash, plaintext string) (bool, error) {
	if strings.HasPrefix(hash, "$2") {
		err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("malformed bcrypt hash: %w", err)
		}
	}
	return verifyCrypt(hash, plaintext)
}

// verifyCrypt handles data files imported from systems that stored
// $1$ (md5-crypt), $5$ (sha256-crypt) or $6$ (sha512-crypt) hashes.
func verifyCrypt(hash, plaintext string) (bool, error) {
	var crypters []crypt.Crypter
	crypters = append(crypters, sha512_crypt.New())
	crypters = append(crypters, sha256_crypt.New())
	crypters = append(crypters, md5_crypt.New())

	// Verify returns nil on success.
	for _, c := range crypters {
		if err := c.Verify(hash, []byte(plaintext)); err == nil {
			return true, nil
		}
	}

	if !strings.HasPrefix(hash, "$1$") && !strings.HasPrefix(hash, "$5$") && !strings.HasPrefix(hash, "$6$") {
		return false, fmt.Errorf("%w: %q", ErrUnsupportedHash, hashPrefix(hash))
	}
	return false, nil
}

// IsDefaultCredential reports whether the stored hash still matches a known
// factory-default plaintext. Used only to warn operators after login; it
// must never stand in for real verification.
func IsDefaultCredential(hash, defaultPlaintext string) bool {
	ok, err := VerifyPassword(hash, defaultPlaintext)
	return err == nil && ok
}

func hashPrefix(hash string) string {
	if len(hash) > 4 {
		return hash[:4]
	}
	return hash
}
