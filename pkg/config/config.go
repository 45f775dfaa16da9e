// Package config loads the sandpress.toml tool configuration. Every
// network endpoint the provisioner touches is declared here so offline
// and mirrored environments can substitute all of them without code
// changes.
package config

import (
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/sandpress/sandpress/pkg/errors"
	"github.com/sandpress/sandpress/pkg/logging"
)

var log = logging.GetLogger("config")

// Upstream defaults. The {version} placeholder in ArchiveURL is
// replaced with the resolved WordPress version.
const (
	DefaultArchiveURL       = "https://wordpress.org/wordpress-{version}.zip"
	DefaultLatestArchiveURL = "https://wordpress.org/latest.zip"
	DefaultVersionCheckURL  = "https://api.wordpress.org/core/version-check/1.7/"
	DefaultMetadataURL      = "https://api.github.com/repos/WordPress/sqlite-database-integration/releases/latest"
	DefaultFallbackURL      = "https://github.com/WordPress/sqlite-database-integration/archive/refs/heads/develop.zip"
)

// Config represents the sandpress.toml file
type Config struct {
	WordPress WordPressConfig `toml:"wordpress"`
	Driver    DriverConfig    `toml:"driver"`
	HTTP      HTTPConfig      `toml:"http"`
}

// WordPressConfig controls the runtime distribution source
type WordPressConfig struct {
	// Version pins the runtime version. Empty means "latest".
	Version string `toml:"version"`

	// ArchiveURL is the download endpoint, with a {version} placeholder
	ArchiveURL string `toml:"archive_url"`

	// LatestArchiveURL is used when no version could be resolved
	LatestArchiveURL string `toml:"latest_archive_url"`

	// VersionCheckURL is the version metadata endpoint
	VersionCheckURL string `toml:"version_check_url"`
}

// DriverConfig controls the persistence-driver source
type DriverConfig struct {
	// MetadataURL is the latest-release metadata endpoint
	MetadataURL string `toml:"metadata_url"`

	// FallbackURL is the default-branch archive used when the metadata
	// endpoint is unreachable
	FallbackURL string `toml:"fallback_url"`
}

// HTTPConfig bounds the provisioner's network calls
type HTTPConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Default returns the configuration used when no sandpress.toml exists.
func Default() Config {
	return Config{
		WordPress: WordPressConfig{
			ArchiveURL:       DefaultArchiveURL,
			LatestArchiveURL: DefaultLatestArchiveURL,
			VersionCheckURL:  DefaultVersionCheckURL,
		},
		Driver: DriverConfig{
			MetadataURL: DefaultMetadataURL,
			FallbackURL: DefaultFallbackURL,
		},
		HTTP: HTTPConfig{
			TimeoutSeconds: 120,
		},
	}
}

// Load reads and parses a sandpress.toml file, filling unset fields
// with defaults. A missing file is not an error: defaults are returned.
func Load(configPath string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Str("path", configPath).Msg("No config file, using defaults")
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %s", configPath)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), errors.Wrapf(err, errors.ErrConfigParse, "invalid config file %s", configPath)
	}

	// re-fill anything the file explicitly blanked
	if cfg.WordPress.ArchiveURL == "" {
		cfg.WordPress.ArchiveURL = DefaultArchiveURL
	}
	if cfg.WordPress.LatestArchiveURL == "" {
		cfg.WordPress.LatestArchiveURL = DefaultLatestArchiveURL
	}
	if cfg.WordPress.VersionCheckURL == "" {
		cfg.WordPress.VersionCheckURL = DefaultVersionCheckURL
	}
	if cfg.Driver.MetadataURL == "" {
		cfg.Driver.MetadataURL = DefaultMetadataURL
	}
	if cfg.Driver.FallbackURL == "" {
		cfg.Driver.FallbackURL = DefaultFallbackURL
	}
	if cfg.HTTP.TimeoutSeconds <= 0 {
		cfg.HTTP.TimeoutSeconds = 120
	}

	log.Debug().Str("path", configPath).Msg("Loaded config file")
	return cfg, nil
}

// Timeout returns the configured HTTP timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
