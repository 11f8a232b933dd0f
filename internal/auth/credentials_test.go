package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCredential(t *testing.T) {
	legacy := ParseCredential(LegacySentinel)
	assert.Equal(t, FormatLegacy, legacy.Format)

	digest := HashPassword("pass")
	hashed := ParseCredential(digest)
	assert.Equal(t, FormatHashed, hashed.Format)
	assert.Equal(t, digest, hashed.Digest)
}

func TestVerifyLegacy(t *testing.T) {
	cred := ParseCredential(LegacySentinel)

	assert.True(t, cred.Verify(LegacySentinel))
	assert.False(t, cred.Verify("pass"))
	assert.False(t, cred.Verify(""))
	// The digest of the sentinel is not the sentinel; a legacy account only
	// accepts the plaintext sentinel itself.
	assert.False(t, cred.Verify(HashPassword(LegacySentinel)))
}

func TestVerifyHashed(t *testing.T) {
	cred := ParseCredential(HashPassword("correct horse"))

	assert.True(t, cred.Verify("correct horse"))
	assert.False(t, cred.Verify("wrong horse"))
	assert.False(t, cred.Verify(""))
	assert.False(t, cred.Verify(LegacySentinel))
}

func TestHashPasswordDeterministic(t *testing.T) {
	assert.Equal(t, HashPassword("pass"), HashPassword("pass"))
	assert.NotEqual(t, HashPassword("pass"), HashPassword("pass2"))
	assert.Len(t, HashPassword("pass"), 64)
}
