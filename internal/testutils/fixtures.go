package testutils

import (
	"crypto/ed25519"
	"crypto/sha256"
	"testing"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
)

// SignerKey derives a deterministic ed25519 key from a name
func SignerKey(name string) ed25519.PrivateKey {
	seed := sha256.Sum256([]byte(name))
	return ed25519.NewKeyFromSeed(seed[:])
}

// CreateTestAccount returns a signing account for the given FID
func CreateTestAccount(t *testing.T, fid uint64) *entities.Account {
	t.Helper()
	return &entities.Account{
		ID:               "account-test",
		Name:             "tester",
		FID:              fid,
		Platform:         entities.AccountPlatformFarcaster,
		SignerPrivateKey: SignerKey("tester"),
	}
}

// CreateReadOnlyAccount returns an account without signing material
func CreateReadOnlyAccount(t *testing.T, fid uint64) *entities.Account {
	t.Helper()
	return &entities.Account{
		ID:       "account-readonly",
		Name:     "watcher",
		FID:      fid,
		Platform: entities.AccountPlatformFarcasterReadOnly,
	}
}

// CastHash returns a 20 byte hash filled with b
func CastHash(b byte) []byte {
	hash := make([]byte, 20)
	for i := range hash {
		hash[i] = b
	}
	return hash
}
