// Package config provides configuration management for quilt-installer.
//
// This package handles:
//   - Loading and saving settings from YAML or JSON files
//   - Default configuration values
//   - Conversion to fetch, http and meta options for other packages
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Quilt Meta and Mojang's manifest as sources
//	// 3 concurrent downloads, 5 retries
//	// Maven .sha1 sidecars verified
//
// # Loading from File
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    // Uses defaults if file doesn't exist
//	}
//
// Both YAML and JSON are accepted; JSON is a subset of YAML.
//
// # Saving Settings
//
//	settings.ServerJavaArgs = "-Xmx4G"
//	err := settings.Save("/path/to/config.yaml")
//
// # Configuration Options
//
// Remote sources:
//   - meta_url: Quilt Meta base URL
//   - mojang_manifest_url: Mojang version manifest URL
//
// Downloads:
//   - max_concurrent_downloads: Artifacts fetched in parallel
//   - download_max_retries: Retries after the first attempt
//   - download_retry_cooldown: Seconds before the first retry
//   - download_retry_exponent: Growth factor between retries
//   - request_timeout: Seconds an HTTP request may go without progress;
//     values of zero or less use the default
//   - verify_maven_checksums: Fetch .sha1 sidecars for libraries
//
// Installs:
//   - server_java_args: JVM arguments written into launch scripts
//   - profile_icon: Image used as the launcher profile icon
//
// Logging:
//   - log_level: panic, fatal, error, warn, info, debug or trace
//   - log_file: "console" or a path to a rotated log file
package config
