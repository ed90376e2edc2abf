package models

import "encoding/base64"

type StreamManifest struct {
	KeyID            string // lowercase hex, 16 bytes
	ProtectionHeader []byte // key-system init data, optional
	InitSegmentURI   string
	MediaSegmentURIs []string // playback order
}

func (m *StreamManifest) HasProtectionHeader() bool {
	return len(m.ProtectionHeader) > 0
}

func (m *StreamManifest) ProtectionHeaderBase64() string {
	if !m.HasProtectionHeader() {
		return ""
	}
	return base64.StdEncoding.EncodeToString(m.ProtectionHeader)
}
