package drm

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"musicdl/util"

	"go.uber.org/zap"
)

const (
	credentialFileName = "device.wvd"
	credentialExt      = ".wvd"
)

// LocateCredential finds the device credential file. an explicit
// override must exist; the configured path is skipped when missing;
// then the config directory is searched for device.wvd and finally for
// the first *.wvd file by name. "" means no credential is available.
func LocateCredential(override string, configured string, configDir string) (string, error) {
	if override != "" {
		if !fileExists(override) {
			return "", fmt.Errorf("%w: %s", util.ErrCredentialNotFound, override)
		}
		return override, nil
	}
	if configured != "" {
		if fileExists(configured) {
			return configured, nil
		}
		zap.S().Warnf("configured device credential %s does not exist", configured)
	}
	if configDir == "" {
		return "", nil
	}
	if path := filepath.Join(configDir, credentialFileName); fileExists(path) {
		return path, nil
	}
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read config directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), credentialExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return filepath.Join(configDir, names[0]), nil
}

// LoadCredential reads the credential blob. the file is never written.
func LoadCredential(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read device credential: %w", err)
	}
	if len(data) == 0 {
		return nil, util.ErrMissingCredential
	}
	return data, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
