package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"musicdl/models"

	"github.com/bogem/id3v2/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetID3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Nova - Deep Blue.mp3")
	require.NoError(t, os.WriteFile(path, []byte("not really mpeg audio"), 0o600))

	err := SetID3(path, &models.TrackInfo{Title: "Deep Blue", Artist: models.UnknownField})
	require.NoError(t, err)

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, "Deep Blue", tag.Title())
	assert.Empty(t, tag.Artist())
}

func TestContainerMetadata(t *testing.T) {
	assert.Equal(t,
		map[string]string{"title": "Deep Blue", "artist": "Nova"},
		ContainerMetadata(&models.TrackInfo{Title: "Deep Blue", Artist: "Nova"}),
	)
	assert.Empty(t, ContainerMetadata(&models.TrackInfo{
		Title:  models.UnknownField,
		Artist: models.UnknownField,
	}))
}
