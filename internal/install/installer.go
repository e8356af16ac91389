package install

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/handiism/quilt-installer/internal/meta"
	"github.com/handiism/quilt-installer/internal/model"
	"github.com/handiism/quilt-installer/internal/platform"
)

// Metadata is the remote metadata the installers need.
// *meta.Client implements it.
type Metadata interface {
	FetchLaunchProfile(ctx context.Context, game model.PlatformVersion, loader model.LoaderVersion) (*meta.LaunchProfile, error)
	ServerLauncherURL(game model.PlatformVersion, loader model.LoaderVersion) string
	FetchServerJar(ctx context.Context, game model.PlatformVersion) (model.Artifact, error)
	FetchSidecarChecksum(ctx context.Context, artifactURL string) (*model.Checksum, error)
}

// Fetcher downloads batches of artifacts and retries small requests with
// the same policy. *fetch.Fetcher implements it.
type Fetcher interface {
	FetchAll(ctx context.Context, artifacts []model.Artifact, limit int, onDone func(a model.Artifact, skipped bool)) error
	Retry(ctx context.Context, url string, op func() error) error
}

// File names the server installer owns.
const (
	ServerLauncherJar = "quilt-server-launch.jar"
	VanillaServerJar  = "server.jar"
)

// Installer materializes client and server installations.
//
// Example usage:
//
//	installer := install.NewInstaller(metaClient, fetcher, install.WithHost(platform.Detect()))
//
//	err := installer.Install(ctx, model.ServerTarget{
//	    Platform:             game,
//	    Loader:               loader,
//	    InstallDir:           "/srv/minecraft",
//	    GenerateLaunchScript: true,
//	}, func(e install.ProgressEvent) {
//	    fmt.Printf("%3.0f%% %s\n", e.Fraction*100, e.Message)
//	})
//
// One Installer may run installs one after another. Running two installs
// against the same directory at once is not supported.
type Installer struct {
	meta    Metadata
	fetcher Fetcher

	host        platform.Host
	now         func() time.Time
	concurrency int
	verify      bool
	javaArgs    string
	icon        string
}

// Option configures an Installer.
type Option func(*Installer)

// WithHost sets the host family used to pick the launch script flavor.
func WithHost(h platform.Host) Option {
	return func(i *Installer) { i.host = h }
}

// WithClock replaces time.Now for profile timestamps.
func WithClock(now func() time.Time) Option {
	return func(i *Installer) {
		if now != nil {
			i.now = now
		}
	}
}

// WithConcurrency bounds parallel downloads.
func WithConcurrency(n int) Option {
	return func(i *Installer) {
		if n > 0 {
			i.concurrency = n
		}
	}
}

// WithChecksumVerification enables fetching Maven .sha1 sidecars for
// libraries that declare no checksum.
func WithChecksumVerification(enabled bool) Option {
	return func(i *Installer) { i.verify = enabled }
}

// WithJavaArgs sets the JVM arguments written into launch scripts.
func WithJavaArgs(args string) Option {
	return func(i *Installer) { i.javaArgs = args }
}

// WithProfileIcon sets the launcher profile icon, either a launcher
// built-in name or a data URI.
func WithProfileIcon(icon string) Option {
	return func(i *Installer) { i.icon = icon }
}

// NewInstaller creates an Installer.
//
// Defaults: detected host, 3 concurrent downloads, checksum verification
// on, "-Xmx2G" for launch scripts.
func NewInstaller(m Metadata, f Fetcher, opts ...Option) *Installer {
	i := &Installer{
		meta:        m,
		fetcher:     f,
		host:        platform.Detect(),
		now:         time.Now,
		concurrency: 3,
		verify:      true,
		javaArgs:    "-Xmx2G",
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ErrInvalidTarget is returned for a target the installer cannot act on.
var ErrInvalidTarget = errors.New("invalid install target")

// Install dispatches to InstallClient or InstallServer by target variant.
//
// onProgress receives artifact-level progress and may be nil. On failure
// the returned error is a *model.InstallError naming the failed stage;
// errors.Is(err, context.Canceled) reports cancellation.
func (i *Installer) Install(ctx context.Context, target model.InstallTarget, onProgress func(ProgressEvent)) error {
	switch t := target.(type) {
	case model.ClientTarget:
		return i.InstallClient(ctx, t, onProgress)
	case *model.ClientTarget:
		if t != nil {
			return i.InstallClient(ctx, *t, onProgress)
		}
	case model.ServerTarget:
		return i.InstallServer(ctx, t, onProgress)
	case *model.ServerTarget:
		if t != nil {
			return i.InstallServer(ctx, *t, onProgress)
		}
	}
	return fmt.Errorf("%w: %T", ErrInvalidTarget, target)
}

func (i *Installer) fetchAll(ctx context.Context, artifacts []model.Artifact, r *reporter) error {
	return i.fetcher.FetchAll(ctx, artifacts, i.concurrency, func(a model.Artifact, skipped bool) {
		if skipped {
			r.step(LevelVerbose, fmt.Sprintf("Up to date: %s", a.Name()))
			return
		}
		r.step(LevelVerbose, fmt.Sprintf("Downloaded %s", a.Name()))
	})
}

func validateDir(kind, dir string) error {
	if dir == "" {
		return &model.InstallError{Target: kind, Stage: model.StageMetadata, Err: fmt.Errorf("%w: no install directory", ErrInvalidTarget)}
	}
	return nil
}

func stageErr(kind, stage string, err error) error {
	log.WithFields(log.Fields{"target": kind, "stage": stage}).Debugf("install failed: %v", err)
	return &model.InstallError{Target: kind, Stage: stage, Err: err}
}
