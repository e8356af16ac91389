// Package install turns a resolved version selection into an installation
// on disk.
//
// # Installer
//
// The Installer coordinates one install run:
//
//  1. Resolve the artifacts the target needs from Quilt Meta (and Mojang)
//  2. Download them concurrently through the fetcher
//  3. Commit the files that depend on them (version json, launcher
//     profile, launch script)
//
// # Basic Usage
//
//	installer, metaClient, err := install.NewFromSettings(settings, platform.Detect())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = installer.Install(ctx, model.ClientTarget{
//	    Platform:        game,
//	    Loader:          loader,
//	    InstallDir:      dir,
//	    GenerateProfile: true,
//	}, func(event install.ProgressEvent) {
//	    fmt.Println(event.Message)
//	})
//
// # Progress Tracking
//
// Progress is reported via a callback function that receives ProgressEvent:
//
//	type ProgressEvent struct {
//	    Message  string
//	    Level    ProgressLevel // Info, Verbose, Warning, Error, Success
//	    Fraction float64       // 0.0 to 1.0, per completed artifact
//	}
//
// The callback is never invoked concurrently.
//
// # Failures
//
// Every failure is a *model.InstallError carrying the stage that failed
// and the underlying *model.NetworkError, *model.IntegrityError,
// *model.FilesystemError or context error. Files are only committed after
// all artifacts are in place, so a failed or cancelled run leaves no
// version json, profile entry or launch script behind.
package install
