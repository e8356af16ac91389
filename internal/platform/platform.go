package platform

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/handiism/quilt-installer/internal/script"
)

// Host is an operating system family.
type Host int

const (
	Linux Host = iota
	MacOS
	Windows
	Other
)

// Detect returns the family of the running host.
func Detect() Host {
	return FromGOOS(runtime.GOOS)
}

// FromGOOS maps a GOOS value to a Host.
func FromGOOS(goos string) Host {
	switch goos {
	case "linux":
		return Linux
	case "darwin":
		return MacOS
	case "windows":
		return Windows
	default:
		return Other
	}
}

func (h Host) String() string {
	switch h {
	case Linux:
		return "linux"
	case MacOS:
		return "macos"
	case Windows:
		return "windows"
	default:
		return "other"
	}
}

// ScriptFlavor returns the launch script dialect native to the host.
func (h Host) ScriptFlavor() script.Flavor {
	if h == Windows {
		return script.Batch
	}
	return script.Shell
}

// ErrNoHomeDirectory is returned when the environment variable a default
// directory is derived from is unset.
var ErrNoHomeDirectory = errors.New("cannot determine home directory")

// DefaultClientDir returns the launcher's default game directory for host,
// reading environment variables through getenv.
//
//   - Windows: %APPDATA%\.minecraft
//   - macOS: $HOME/Library/Application Support/minecraft
//   - others: $HOME/.minecraft
func DefaultClientDir(host Host, getenv func(string) string) (string, error) {
	switch host {
	case Windows:
		appData := getenv("APPDATA")
		if appData == "" {
			return "", fmt.Errorf("%w: APPDATA is not set", ErrNoHomeDirectory)
		}
		return strings.TrimRight(appData, `\/`) + `\.minecraft`, nil
	case MacOS:
		home := getenv("HOME")
		if home == "" {
			return "", fmt.Errorf("%w: HOME is not set", ErrNoHomeDirectory)
		}
		return filepath.Join(home, "Library", "Application Support", "minecraft"), nil
	default:
		home := getenv("HOME")
		if home == "" {
			return "", fmt.Errorf("%w: HOME is not set", ErrNoHomeDirectory)
		}
		return filepath.Join(home, ".minecraft"), nil
	}
}

// DefaultServerDir returns the directory servers are installed to when
// none is given.
func DefaultServerDir(getwd func() (string, error)) (string, error) {
	wd, err := getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, "server"), nil
}
