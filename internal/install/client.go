package install

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	ioutils "github.com/handiism/quilt-installer/internal/io"
	"github.com/handiism/quilt-installer/internal/meta"
	"github.com/handiism/quilt-installer/internal/model"
	"github.com/handiism/quilt-installer/internal/profiles"
)

const clientKind = "client"

// InstallClient installs the loader into a launcher game directory:
//
//  1. Fetch the loader's launch profile document
//  2. Download its libraries into libraries/
//  3. Write versions/<id>/<id>.json and an empty versions/<id>/<id>.jar
//  4. Add or update the launcher profile, if requested
//
// Nothing outside those paths and launcher_profiles.json is touched. A
// cancelled install commits no version files or profile entry.
func (i *Installer) InstallClient(ctx context.Context, target model.ClientTarget, onProgress func(ProgressEvent)) error {
	if err := validateDir(clientKind, target.InstallDir); err != nil {
		return err
	}
	r := newReporter(onProgress)
	logger := log.WithFields(log.Fields{
		"game":   target.Platform.ID,
		"loader": target.Loader.Identifier(),
		"dir":    target.InstallDir,
	})
	logger.Info("installing client")

	r.info(LevelInfo, fmt.Sprintf("Fetching launch profile for Quilt Loader %s on Minecraft %s", target.Loader, target.Platform))
	profile, err := i.meta.FetchLaunchProfile(ctx, target.Platform, target.Loader)
	if err != nil {
		return stageErr(clientKind, model.StageMetadata, err)
	}
	if err := checkVersionID(profile.ID); err != nil {
		return stageErr(clientKind, model.StageMetadata, err)
	}

	artifacts, err := i.libraryArtifacts(ctx, target.InstallDir, profile)
	if err != nil {
		return stageErr(clientKind, model.StageMetadata, err)
	}

	commits := 1
	if target.GenerateProfile {
		commits++
	}
	r.plan(len(artifacts) + commits)

	r.info(LevelInfo, fmt.Sprintf("Downloading %d libraries", len(artifacts)))
	if err := i.fetchAll(ctx, artifacts, r); err != nil {
		return stageErr(clientKind, model.StageArtifacts, err)
	}

	if err := ctx.Err(); err != nil {
		return stageErr(clientKind, model.StageVersion, err)
	}
	if err := writeVersionFiles(target.InstallDir, profile); err != nil {
		return stageErr(clientKind, model.StageVersion, err)
	}
	r.step(LevelVerbose, fmt.Sprintf("Wrote version %s", profile.ID))

	if target.GenerateProfile {
		if err := ctx.Err(); err != nil {
			return stageErr(clientKind, model.StageProfile, err)
		}
		entry := profiles.NewEntry(target.Platform.ID, profile.ID)
		if i.icon != "" {
			entry.Icon = i.icon
		}
		path := filepath.Join(target.InstallDir, profiles.FileName)
		if err := profiles.Upsert(path, profile.ID, entry, i.now()); err != nil {
			return stageErr(clientKind, model.StageProfile, err)
		}
		r.step(LevelVerbose, fmt.Sprintf("Updated launcher profile %s", entry.Name))
	}

	logger.Info("client installed")
	r.finish(fmt.Sprintf("Installed Quilt Loader %s for Minecraft %s", target.Loader, target.Platform))
	return nil
}

// libraryArtifacts maps the profile's libraries onto the launcher's
// libraries/ layout, resolving missing checksums from Maven sidecars. A
// missing sidecar leaves the checksum unknown; a sidecar that cannot be
// fetched after retries fails the install.
func (i *Installer) libraryArtifacts(ctx context.Context, dir string, profile *meta.LaunchProfile) ([]model.Artifact, error) {
	artifacts := make([]model.Artifact, len(profile.Libraries))

	for n, lib := range profile.Libraries {
		coord, err := model.ParseMavenCoordinate(lib.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
		}
		if lib.URL == "" {
			return nil, fmt.Errorf("%w: library %s has no repository", model.ErrMalformedResponse, lib.Name)
		}

		a := model.Artifact{
			URL:  coord.URL(lib.URL),
			Path: filepath.Join(dir, "libraries", filepath.FromSlash(coord.Path())),
			Size: lib.Size,
		}
		if lib.Sha1 != "" {
			if a.Checksum, err = model.NewChecksum(model.SHA1, lib.Sha1); err != nil {
				return nil, fmt.Errorf("%w: library %s: %v", model.ErrMalformedResponse, lib.Name, err)
			}
		}
		artifacts[n] = a
	}

	if !i.verify {
		return artifacts, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)
	for n := range artifacts {
		if artifacts[n].Checksum != nil {
			continue
		}
		g.Go(func() error {
			var sum *model.Checksum
			err := i.fetcher.Retry(ctx, artifacts[n].URL+".sha1", func() (err error) {
				sum, err = i.meta.FetchSidecarChecksum(ctx, artifacts[n].URL)
				return err
			})
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return fmt.Errorf("checksum for %s: %w", artifacts[n].URL, err)
			}
			artifacts[n].Checksum = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func writeVersionFiles(dir string, profile *meta.LaunchProfile) error {
	versionDir := filepath.Join(dir, "versions", profile.ID)

	jsonPath := filepath.Join(versionDir, profile.ID+".json")
	if err := ioutils.WriteFileAtomic(jsonPath, profile.Raw, 0o644); err != nil {
		return &model.FilesystemError{Op: "write", Path: jsonPath, Err: err}
	}

	// Launchers expect a jar next to the version json even though the
	// game jar is resolved through inheritsFrom.
	jarPath := filepath.Join(versionDir, profile.ID+".jar")
	if _, err := ioutils.CreateIfAbsent(jarPath); err != nil {
		return &model.FilesystemError{Op: "create", Path: jarPath, Err: err}
	}
	return nil
}

func checkVersionID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: unusable version id %q", model.ErrMalformedResponse, id)
	}
	return nil
}
