package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/handiism/quilt-installer/internal/fetch"
	"github.com/handiism/quilt-installer/internal/http"
	ioutils "github.com/handiism/quilt-installer/internal/io"
	"github.com/handiism/quilt-installer/internal/meta"
)

// Settings holds all configuration options.
type Settings struct {
	// Remote sources
	MetaURL           string `json:"meta_url"`
	MojangManifestURL string `json:"mojang_manifest_url"`

	// Download settings
	MaxConcurrentDownloads int     `json:"max_concurrent_downloads"`
	DownloadMaxRetries     int     `json:"download_max_retries"`
	DownloadRetryCooldown  float64 `json:"download_retry_cooldown"`
	DownloadRetryExponent  float64 `json:"download_retry_exponent"`
	RequestTimeout         float64 `json:"request_timeout"`
	VerifyMavenChecksums   bool    `json:"verify_maven_checksums"`

	// Install settings
	ServerJavaArgs string `json:"server_java_args"`
	ProfileIcon    string `json:"profile_icon,omitempty"` // PNG or JPEG path

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"` // "console" or a file path
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		MetaURL:           meta.DefaultMetaURL,
		MojangManifestURL: meta.DefaultManifestURL,

		MaxConcurrentDownloads: 3,
		DownloadMaxRetries:     5,
		DownloadRetryCooldown:  0.5,
		DownloadRetryExponent:  2.0,
		RequestTimeout:         60,
		VerifyMavenChecksums:   true,

		ServerJavaArgs: "-Xmx2G",

		LogLevel: "info",
		LogFile:  "console",
	}
}

// DefaultPath returns the per-user settings file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "quilt-installer.yaml"
	}
	return filepath.Join(dir, "quilt-installer", "config.yaml")
}

// Load reads settings from a YAML or JSON file.
// A missing file yields DefaultSettings.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// Save writes settings as YAML, or as JSON when path ends in .json.
func (s *Settings) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if filepath.Ext(path) == ".json" {
		data, err = json.MarshalIndent(s, "", "  ")
	} else {
		data, err = yaml.Marshal(s)
	}
	if err != nil {
		return err
	}

	return ioutils.WriteFileAtomic(path, data, 0o644)
}

// ToFetchOptions converts the retry settings.
func (s *Settings) ToFetchOptions() fetch.Options {
	opts := fetch.DefaultOptions()
	opts.MaxRetries = s.DownloadMaxRetries
	opts.InitialInterval = seconds(s.DownloadRetryCooldown)
	opts.Multiplier = s.DownloadRetryExponent
	return opts
}

// ToHTTPOptions converts the transport settings.
func (s *Settings) ToHTTPOptions() []http.Option {
	return []http.Option{http.WithTimeout(seconds(s.RequestTimeout))}
}

// ToMetaOptions converts the remote source settings.
func (s *Settings) ToMetaOptions() []meta.Option {
	var opts []meta.Option
	if s.MetaURL != "" {
		opts = append(opts, meta.WithMetaURL(s.MetaURL))
	}
	if s.MojangManifestURL != "" {
		opts = append(opts, meta.WithManifestURL(s.MojangManifestURL))
	}
	return opts
}

func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
