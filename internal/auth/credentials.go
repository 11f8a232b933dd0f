package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// LegacySentinel is the stored credential value that marks a pre-migration
// account. Such accounts authenticate with the sentinel itself as the
// plaintext password.
const LegacySentinel = "demo"

type Format int

const (
	FormatLegacy Format = iota
	FormatHashed
)

// Credential is the parsed form of a stored pw_hash column value.
type Credential struct {
	Format Format
	Digest string
}

// ParseCredential classifies a stored credential. Anything that is not the
// legacy sentinel is treated as a SHA-256 hex digest.
func ParseCredential(stored string) Credential {
	if stored == LegacySentinel {
		return Credential{Format: FormatLegacy}
	}
	return Credential{Format: FormatHashed, Digest: stored}
}

// Verify reports whether candidate matches the credential. It performs no I/O.
func (c Credential) Verify(candidate string) bool {
	switch c.Format {
	case FormatLegacy:
		return subtle.ConstantTimeCompare([]byte(candidate), []byte(LegacySentinel)) == 1
	case FormatHashed:
		digest := HashPassword(candidate)
		return subtle.ConstantTimeCompare([]byte(digest), []byte(c.Digest)) == 1
	default:
		return false
	}
}

// HashPassword returns the SHA-256 hex digest of a plaintext password. The
// digest format is fixed by the existing user records; collision resistance
// beyond SHA-256 is not a goal here.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
