package util

import (
	"encoding/hex"
	"strings"
)

const keyHexLength = 32

// NormalizeKeyHex trims and lowercases a hex key, failing with
// ErrInvalidKeyFormat unless it is exactly 16 bytes of hex.
func NormalizeKeyHex(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if len(key) != keyHexLength {
		return "", ErrInvalidKeyFormat
	}
	if _, err := hex.DecodeString(key); err != nil {
		return "", ErrInvalidKeyFormat
	}
	return key, nil
}
