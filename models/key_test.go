package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentKeyStringRedactsKey(t *testing.T) {
	key := &ContentKey{
		KeyID: []byte{0xaa, 0xbb},
		Key:   []byte{0x01, 0x23, 0x45, 0x67, 0x89},
	}
	assert.Equal(t, "0123456789", key.Hex())
	assert.Equal(t, "kid=aabb key=0123…", key.String())
	assert.NotContains(t, key.String(), key.Hex())
}

func TestTrackInfoSource(t *testing.T) {
	assert.Nil(t, (&TrackInfo{}).Source())
	assert.False(t, (&TrackInfo{ID: UnknownField}).HasID())

	source := (&TrackInfo{ID: "abc", SourcePath: "https://cdn.example.com/a.mp3"}).Source()
	if assert.NotNil(t, source) {
		assert.Equal(t, "https://cdn.example.com/a.mp3", source.Location)
	}
}

func TestStreamManifestProtectionHeader(t *testing.T) {
	manifest := &StreamManifest{ProtectionHeader: []byte("pssh-box")}
	assert.True(t, manifest.HasProtectionHeader())
	assert.Equal(t, "cHNzaC1ib3g=", manifest.ProtectionHeaderBase64())
}
