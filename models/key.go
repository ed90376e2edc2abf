package models

import "encoding/hex"

type ContentKey struct {
	KeyID []byte // 16 bytes
	Key   []byte // 16 bytes, secret
}

func (k *ContentKey) Hex() string {
	return hex.EncodeToString(k.Key)
}

func (k *ContentKey) KeyIDHex() string {
	return hex.EncodeToString(k.KeyID)
}

// String never includes the full key so the value is safe to log.
func (k *ContentKey) String() string {
	masked := "<empty>"
	if keyHex := k.Hex(); len(keyHex) > 4 {
		masked = keyHex[:4] + "…"
	}
	return "kid=" + k.KeyIDHex() + " key=" + masked
}
