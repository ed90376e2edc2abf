package libav

import (
	"bytes"
	"fmt"
	"os/exec"
	"sort"

	"musicdl/util"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// runEngine executes a compiled ffmpeg stream. swapped in tests.
var runEngine = func(stream *ffmpeg.Stream) error {
	return stream.Run()
}

func CheckFFmpeg() error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return util.ErrFFmpegNotFound
	}
	return nil
}

// DecryptFile hands the key and the encrypted container to ffmpeg and
// writes a clear copy to outputPath. the encrypted input is removed on
// every exit path; a partial output is removed on failure. metadata
// entries are written as container tags.
func DecryptFile(
	keyHex string,
	inputPath string,
	outputPath string,
	metadata map[string]string,
) error {
	defer util.RemoveFile(inputPath)

	key, err := util.NormalizeKeyHex(keyHex)
	if err != nil {
		return err
	}

	debug := zap.S().Level() == zap.DebugLevel
	logLevel := "error"
	if debug {
		logLevel = "info"
	}

	var stderr bytes.Buffer
	stream := ffmpeg.
		Input(inputPath, ffmpeg.KwArgs{
			"decryption_key": key,
		}).
		Output(outputPath, outputArgs(metadata)).
		GlobalArgs("-loglevel", logLevel).
		Silent(!debug).
		OverWriteOutput().
		WithErrorOutput(&stderr)

	if err := runEngine(stream); err != nil {
		util.RemoveFile(outputPath)
		return &util.DecryptionError{Output: stderr.String(), Err: err}
	}
	zap.S().Debugf("decrypted %s into %s", inputPath, outputPath)
	return nil
}

func outputArgs(metadata map[string]string) ffmpeg.KwArgs {
	args := ffmpeg.KwArgs{
		"c": "copy",
	}
	if len(metadata) == 0 {
		return args
	}
	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	entries := make([]string, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, fmt.Sprintf("%s=%s", key, metadata[key]))
	}
	args["metadata"] = entries
	return args
}
