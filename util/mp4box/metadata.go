package mp4box

import (
	"fmt"
	"os"

	"github.com/abema/go-mp4"
	"github.com/sunfish-shogi/bufseekio"
)

type AudioInfo struct {
	Duration  float64 // seconds
	Encrypted bool    // a track still carries sample encryption
	Tracks    int
}

// ProbeAudio inspects a decrypted container. it fails when the file
// is not an mp4 container or holds no tracks.
func ProbeAudio(file string) (*AudioInfo, error) {
	buf, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer buf.Close()

	r := bufseekio.NewReadSeeker(buf, 1024, 4)
	info, err := mp4.Probe(r)
	if err != nil {
		return nil, fmt.Errorf("failed to probe container: %w", err)
	}
	if len(info.Tracks) == 0 {
		return nil, fmt.Errorf("container has no tracks")
	}
	result := &AudioInfo{Tracks: len(info.Tracks)}
	for _, track := range info.Tracks {
		if track.Encrypted {
			result.Encrypted = true
		}
		if track.Timescale == 0 {
			continue
		}
		seconds := float64(track.Duration) / float64(track.Timescale)
		if seconds > result.Duration {
			result.Duration = seconds
		}
	}
	return result, nil
}
