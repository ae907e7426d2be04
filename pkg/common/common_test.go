package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUUIDint64Unique(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id := UUIDint64()
		assert.Greater(t, id, int64(0))
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestReceiptCode(t *testing.T) {
	a := ReceiptCode()
	b := ReceiptCode()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
	assert.Equal(t, strings.ToUpper(a), a)
}

func TestSha256HashWithSalt(t *testing.T) {
	h1 := Sha256HashWithSalt("secret", "salt-a")
	h2 := Sha256HashWithSalt("secret", "salt-a")
	h3 := Sha256HashWithSalt("secret", "salt-b")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}

func TestGetSecretSaltEnvOverride(t *testing.T) {
	t.Setenv("WARUNGPOS_SECRET_SALT", "custom")
	assert.Equal(t, "custom", GetSecretSalt())
}
