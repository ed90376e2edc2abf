package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaCodecExtension(t *testing.T) {
	assert.Equal(t, "m4a", MediaCodecAAC.Extension())
	assert.Equal(t, "mp3", MediaCodecMP3.Extension())
}
