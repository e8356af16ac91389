// Package model defines the core data structures shared by the installer
// engine and its front ends.
//
// # Versions
//
// PlatformVersion is a game version from the game catalog; LoaderVersion is
// a loader release with a structured semantic version:
//
//	game := model.PlatformVersion{ID: "1.20.4", Stable: true}
//	loader, _ := model.NewLoaderVersion("0.23.1", "org.quiltmc:quilt-loader:0.23.1")
//	model.LoaderVersionID(loader, game) // "quilt-loader-0.23.1-1.20.4"
//
// # Artifacts
//
// Artifact pairs a download URL with its destination path and, when known,
// an expected Checksum and Size. MavenCoordinate turns "group:artifact:version"
// into repository paths:
//
//	c, _ := model.ParseMavenCoordinate("org.ow2.asm:asm:9.6")
//	c.URL("https://maven.fabricmc.net/")
//	// "https://maven.fabricmc.net/org/ow2/asm/asm/9.6/asm-9.6.jar"
//
// # Targets
//
// ClientTarget and ServerTarget are the two InstallTarget variants.
//
// # Errors
//
// NetworkError, NotFoundError, IntegrityError, FilesystemError and
// InstallError form the error taxonomy; match them with errors.As.
package model
