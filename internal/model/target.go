package model

import "fmt"

// InstallTarget is what a front end asks the engine to install.
// It is implemented by ClientTarget and ServerTarget only.
type InstallTarget interface {
	// Versions returns the resolved platform and loader versions.
	Versions() (PlatformVersion, LoaderVersion)

	// Directory returns the installation directory.
	Directory() string

	isInstallTarget()
}

// ClientTarget describes a client installation into a launcher directory.
type ClientTarget struct {
	Platform PlatformVersion
	Loader   LoaderVersion

	// InstallDir is the launcher's game directory (".minecraft").
	InstallDir string

	// GenerateProfile adds or updates the launcher profile entry.
	GenerateProfile bool
}

func (t ClientTarget) Versions() (PlatformVersion, LoaderVersion) { return t.Platform, t.Loader }
func (t ClientTarget) Directory() string                          { return t.InstallDir }
func (ClientTarget) isInstallTarget()                             {}

// ServerTarget describes a standalone server installation.
type ServerTarget struct {
	Platform PlatformVersion
	Loader   LoaderVersion

	// InstallDir receives the launcher jar, the optional vanilla jar and
	// the optional launch script.
	InstallDir string

	DownloadServerJar    bool
	GenerateLaunchScript bool
}

func (t ServerTarget) Versions() (PlatformVersion, LoaderVersion) { return t.Platform, t.Loader }
func (t ServerTarget) Directory() string                          { return t.InstallDir }
func (ServerTarget) isInstallTarget()                             {}

// LoaderVersionID is the launcher version id the loader meta publishes for a
// (loader, game) pair, e.g. "quilt-loader-0.23.1-1.20.4".
func LoaderVersionID(loader LoaderVersion, platform PlatformVersion) string {
	return fmt.Sprintf("quilt-loader-%s-%s", loader.Identifier(), platform.ID)
}
