package util

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

func EnsureDownloadDir(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			zap.S().Debugf("creating downloads directory: %s", dir)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create downloads directory: %w", err)
			}
		} else {
			return fmt.Errorf("error accessing directory: %w", err)
		}
	}
	return nil
}

// RemoveFile deletes path, ignoring a file that is already gone.
func RemoveFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		zap.S().Warnf("failed to remove %s: %v", path, err)
	}
}
