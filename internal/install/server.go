package install

import (
	"context"
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	ioutils "github.com/handiism/quilt-installer/internal/io"
	"github.com/handiism/quilt-installer/internal/model"
	"github.com/handiism/quilt-installer/internal/script"
)

const serverKind = "server"

// InstallServer installs a standalone server:
//
//  1. Download quilt-server-launch.jar
//  2. Download the vanilla server.jar, if requested
//  3. Write start.sh or start.bat for the host, if requested
//
// Only those files are written. Other files in the directory are left alone,
// and artifacts that already match are not downloaded again.
func (i *Installer) InstallServer(ctx context.Context, target model.ServerTarget, onProgress func(ProgressEvent)) error {
	if err := validateDir(serverKind, target.InstallDir); err != nil {
		return err
	}
	r := newReporter(onProgress)
	logger := log.WithFields(log.Fields{
		"game":   target.Platform.ID,
		"loader": target.Loader.Identifier(),
		"dir":    target.InstallDir,
	})
	logger.Info("installing server")

	artifacts := []model.Artifact{{
		URL:  i.meta.ServerLauncherURL(target.Platform, target.Loader),
		Path: filepath.Join(target.InstallDir, ServerLauncherJar),
	}}

	if target.DownloadServerJar {
		r.info(LevelInfo, fmt.Sprintf("Looking up Minecraft %s server jar", target.Platform))
		vanilla, err := i.meta.FetchServerJar(ctx, target.Platform)
		if err != nil {
			return stageErr(serverKind, model.StageMetadata, err)
		}
		vanilla.Path = filepath.Join(target.InstallDir, VanillaServerJar)
		artifacts = append(artifacts, vanilla)
	}

	steps := len(artifacts)
	if target.GenerateLaunchScript {
		steps++
	}
	r.plan(steps)

	r.info(LevelInfo, fmt.Sprintf("Downloading %d server files", len(artifacts)))
	if err := i.fetchAll(ctx, artifacts, r); err != nil {
		return stageErr(serverKind, model.StageArtifacts, err)
	}

	if target.GenerateLaunchScript {
		if err := ctx.Err(); err != nil {
			return stageErr(serverKind, model.StageScript, err)
		}
		creator := script.NewCreator(i.host.ScriptFlavor(), i.javaArgs)
		flavor := creator.Flavor()
		path := filepath.Join(target.InstallDir, flavor.FileName())
		if err := ioutils.WriteFileAtomic(path, []byte(creator.Render(ServerLauncherJar)), flavor.Mode()); err != nil {
			return stageErr(serverKind, model.StageScript, &model.FilesystemError{Op: "write", Path: path, Err: err})
		}
		r.step(LevelVerbose, fmt.Sprintf("Wrote %s", flavor.FileName()))
	}

	logger.Info("server installed")
	r.finish(fmt.Sprintf("Installed Quilt Loader %s server for Minecraft %s", target.Loader, target.Platform))
	return nil
}
