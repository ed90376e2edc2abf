package libav

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"musicdl/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const testKey = "00112233445566778899AABBCCDDEEFF"

func stubEngine(t *testing.T, engine func(stream *ffmpeg.Stream) error) {
	t.Helper()
	original := runEngine
	runEngine = engine
	t.Cleanup(func() { runEngine = original })
}

func encryptedInput(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "stream.enc.m4a")
	require.NoError(t, os.WriteFile(input, []byte("encrypted"), 0o600))
	return input, filepath.Join(dir, "Artist - Song.m4a")
}

func TestDecryptFileBuildsEngineInvocation(t *testing.T) {
	input, output := encryptedInput(t)

	var args []string
	stubEngine(t, func(stream *ffmpeg.Stream) error {
		args = stream.GetArgs()
		return os.WriteFile(output, []byte("clear"), 0o600)
	})

	err := DecryptFile(testKey, input, output, map[string]string{
		"title":  "Song",
		"artist": "Artist",
	})
	require.NoError(t, err)

	assert.Subset(t, args, []string{"-decryption_key", "00112233445566778899aabbccddeeff"})
	assert.Subset(t, args, []string{"-i", input, "-c", "copy", output})
	assert.Subset(t, args, []string{"artist=Artist", "title=Song"})
	assert.Contains(t, args, "-y")
	assert.NoFileExists(t, input)
	assert.FileExists(t, output)
}

func TestDecryptFileEngineFailure(t *testing.T) {
	input, output := encryptedInput(t)
	errEngine := errors.New("exit status 1")

	stubEngine(t, func(stream *ffmpeg.Stream) error {
		require.NoError(t, os.WriteFile(output, []byte("partial"), 0o600))
		return errEngine
	})

	err := DecryptFile(testKey, input, output, nil)

	var decryptErr *util.DecryptionError
	require.ErrorAs(t, err, &decryptErr)
	assert.ErrorIs(t, err, errEngine)
	assert.NoFileExists(t, input)
	assert.NoFileExists(t, output)
}

func TestDecryptFileRejectsMalformedKey(t *testing.T) {
	input, output := encryptedInput(t)

	called := false
	stubEngine(t, func(stream *ffmpeg.Stream) error {
		called = true
		return nil
	})

	err := DecryptFile("0011", input, output, nil)
	assert.ErrorIs(t, err, util.ErrInvalidKeyFormat)
	assert.False(t, called)
	assert.NoFileExists(t, input)
}

func TestOutputArgs(t *testing.T) {
	args := outputArgs(nil)
	assert.Equal(t, ffmpeg.KwArgs{"c": "copy"}, args)

	args = outputArgs(map[string]string{"title": "B", "artist": "A"})
	assert.Equal(t, []string{"artist=A", "title=B"}, args["metadata"])
}
