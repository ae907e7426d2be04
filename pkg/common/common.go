package common

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"golang.org/x/crypto/pbkdf2"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var (
	snowflakeNode *snowflake.Node
	nodeOnce      sync.Once
)

func node() *snowflake.Node {
	nodeOnce.Do(func() {
		var err error
		snowflakeNode, err = snowflake.NewNode(1)
		if err != nil {
			panic(err)
		}
	})
	return snowflakeNode
}

// UUIDint64 generates a cluster-safe int64 identifier.
func UUIDint64() int64 {
	return node().Generate().Int64()
}

// ReceiptCode generates a short printable receipt number. Codes are unique
// across restarts because they derive from snowflake identifiers.
func ReceiptCode() string {
	return strings.ToUpper(node().Generate().Base36())
}

// GetSecretSalt returns the instance password salt, overridable via environment.
func GetSecretSalt() string {
	if v := os.Getenv("WARUNGPOS_SECRET_SALT"); v != "" {
		return v
	}
	return "warungpos-default-salt"
}

// Sha256HashWithSalt hashes a secret with the given salt using PBKDF2-SHA256.
func Sha256HashWithSalt(secret, salt string) string {
	key := pbkdf2.Key([]byte(secret), []byte(salt), 4096, 32, sha256.New)
	return hex.EncodeToString(key)
}
