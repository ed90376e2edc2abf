package util

import (
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// a negative total renders a spinner
func newProgressBar(total int64, description string, showBytes bool, visible bool) *progressbar.ProgressBar {
	var writer io.Writer = io.Discard
	if visible {
		writer = os.Stderr
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(showBytes),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
}
