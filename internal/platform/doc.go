// Package platform describes the host operating system family.
//
// Everything that depends on the host takes a Host value instead of
// reading runtime.GOOS, so the Windows and macOS paths are testable
// anywhere:
//
//	dir, err := platform.DefaultClientDir(platform.Detect(), os.Getenv)
package platform
