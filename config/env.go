package config

import (
	"os"
	"path/filepath"
	"time"

	"musicdl/models"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const appName = "music-dl"

func GetDefaultConfig() *models.EnvConfig {
	return &models.EnvConfig{
		DownloadsDirectory: ".",
		ConfigDirectory:    DefaultConfigDir(),

		SiteOrigin:   "https://www.udio.com",
		StreamOrigin: "https://stream.udio.com",
		LicenseURL:   "https://stream.udio.com/drm/license?type=widevine",

		Timeout:  60 * time.Second,
		LogLevel: "info",
	}
}

func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// loads a .env file from the working directory when present
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func LoadEnv(cfg *models.EnvConfig) error {
	if err := loadDotEnv(); err != nil {
		return errors.Wrap(err, "failed to load .env file")
	}
	if value := os.Getenv("MUSIC_DL_CDM"); value != "" {
		cfg.CDMPath = value
	}
	if value := os.Getenv("MUSIC_DL_OUTPUT"); value != "" {
		cfg.DownloadsDirectory = value
	}
	if value := os.Getenv("MUSIC_DL_COOKIES"); value != "" {
		cfg.CookiesFile = value
	}
	if value := os.Getenv("MUSIC_DL_TIMEOUT"); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return errors.Wrap(err, "MUSIC_DL_TIMEOUT env is not a valid duration")
		}
		cfg.Timeout = timeout
	}
	if value := os.Getenv("HTTP_PROXY"); value != "" {
		cfg.HTTPProxy = value
	}
	if value := os.Getenv("HTTPS_PROXY"); value != "" {
		cfg.HTTPSProxy = value
	}
	if value := os.Getenv("NO_PROXY"); value != "" {
		cfg.NoProxy = value
	}
	if value := os.Getenv("LOG_LEVEL"); value != "" {
		cfg.LogLevel = value
	}
	zap.S().Debugf("config directory: %s", cfg.ConfigDirectory)
	return nil
}
