// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Atomic file writes (temp file + rename)
//   - Placeholder creation that never clobbers existing files
//   - Directory creation
//   - Launcher profile icon encoding
//
// # File Operations
//
//	// Replace a file without ever exposing a partial write
//	err := ioutils.WriteFileAtomic("/srv/minecraft/start.sh", script, 0o755)
//
//	// Create an empty jar only if nothing is there yet
//	created, err := ioutils.CreateIfAbsent(jarPath)
//
// # Image Processing
//
// The ImageService turns a PNG or JPEG into the data URI form launchers
// accept in a profile's icon field:
//
//	svc := ioutils.NewImageService()
//	icon, _ := svc.ProfileIcon(pngData)
package ioutils
