package models

import "time"

type EnvConfig struct {
	DownloadsDirectory string `yaml:"output_dir"`
	CDMPath            string `yaml:"cdm"`
	ConfigDirectory    string `yaml:"-"`

	SiteOrigin   string `yaml:"site_origin"`
	StreamOrigin string `yaml:"stream_origin"`
	LicenseURL   string `yaml:"license_url"`

	UserAgent   string        `yaml:"user_agent"`
	Timeout     time.Duration `yaml:"timeout"`
	CookiesFile string        `yaml:"cookies_file"`

	HTTPProxy  string `yaml:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy"`
	NoProxy    string `yaml:"no_proxy"`

	LogLevel string `yaml:"log_level"`
}
