package models

import "time"

type DownloadConfig struct {
	Timeout         time.Duration     // timeout for individual HTTP requests
	Headers         map[string]string // extra headers for every request
	ProgressUpdater func(done, total int64)
	ShowProgress    bool // render a progress bar on stderr
}

func DefaultDownloadConfig() *DownloadConfig {
	return &DownloadConfig{
		Timeout: 60 * time.Second,
		Headers: make(map[string]string),
	}
}

// GetDownloadConfig returns the provided config with missing values
// filled from the defaults. a nil config yields the defaults.
func GetDownloadConfig(config *DownloadConfig) *DownloadConfig {
	if config == nil {
		return DefaultDownloadConfig()
	}
	config.Ensure()
	return config
}

func (config *DownloadConfig) Ensure() {
	defaultConfig := DefaultDownloadConfig()
	if config.Timeout <= 0 {
		config.Timeout = defaultConfig.Timeout
	}
	if config.Headers == nil {
		config.Headers = defaultConfig.Headers
	}
}

// ReportProgress forwards progress to the optional updater.
func (config *DownloadConfig) ReportProgress(done, total int64) {
	if config.ProgressUpdater != nil {
		config.ProgressUpdater(done, total)
	}
}
