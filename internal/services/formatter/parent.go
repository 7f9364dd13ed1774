package formatter

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/KirkDiggler/farcaster-bot-discord/internal/entities"
	apperr "github.com/KirkDiggler/farcaster-bot-discord/internal/errors"
)

// CastHashSize is the length of a Farcaster message hash in bytes
const CastHashSize = 20

// FormatCastHash renders a binary hash as 0x followed by 40 hex digits,
// left-padding shorter hashes with zeros
func FormatCastHash(hash []byte) (string, error) {
	if len(hash) == 0 {
		return "", fmt.Errorf("hash is empty")
	}
	if len(hash) > CastHashSize {
		return "", fmt.Errorf("hash is %d bytes, max %d", len(hash), CastHashSize)
	}

	encoded := hex.EncodeToString(hash)
	return "0x" + strings.Repeat("0", CastHashSize*2-len(encoded)) + encoded, nil
}

// ParseCastHash decodes a 0x-prefixed or bare hex hash
func ParseCastHash(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	if s == "" {
		return nil, apperr.InvalidArgument("cast hash is empty")
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}

	hash, err := hex.DecodeString(s)
	if err != nil {
		return nil, apperr.InvalidArgumentf("cast hash %q is not hex", s)
	}
	if len(hash) > CastHashSize {
		return nil, apperr.InvalidArgumentf("cast hash is %d bytes, max %d", len(hash), CastHashSize)
	}
	return hash, nil
}

func wireParent(fid uint64, hash []byte) (*entities.WireCastID, error) {
	if fid == 0 && len(hash) == 0 {
		return nil, nil
	}
	if fid == 0 {
		return nil, apperr.Refused("reply target is missing its author fid")
	}

	encoded, err := FormatCastHash(hash)
	if err != nil {
		return nil, apperr.Refusedf("reply target is malformed: %v", err)
	}

	return &entities.WireCastID{FID: fid, Hash: encoded}, nil
}
