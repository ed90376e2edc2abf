package plugins

import (
	"fmt"

	"musicdl/models"

	"github.com/bogem/id3v2/v2"
)

// SetID3 writes title and artist frames into a downloaded MP3.
func SetID3(filePath string, info *models.TrackInfo) error {
	tag, err := id3v2.Open(
		filePath,
		id3v2.Options{Parse: true},
	)
	if err != nil {
		return fmt.Errorf("failed to open ID3 tag: %w", err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	if info.Title != models.UnknownField {
		tag.SetTitle(info.Title)
	}
	if info.Artist != models.UnknownField {
		tag.SetArtist(info.Artist)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save ID3 tag: %w", err)
	}
	return nil
}

// ContainerMetadata returns the tags written by the decryption engine
// into an M4A output.
func ContainerMetadata(info *models.TrackInfo) map[string]string {
	metadata := make(map[string]string)
	if info.Title != "" && info.Title != models.UnknownField {
		metadata["title"] = info.Title
	}
	if info.Artist != "" && info.Artist != models.UnknownField {
		metadata["artist"] = info.Artist
	}
	return metadata
}
