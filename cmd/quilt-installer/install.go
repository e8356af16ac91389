package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/handiism/quilt-installer/internal/install"
	"github.com/handiism/quilt-installer/internal/model"
	"github.com/handiism/quilt-installer/internal/platform"
	"github.com/handiism/quilt-installer/internal/selection"
)

const (
	minecraftVersionFlag = "minecraft-version"
	loaderVersionFlag    = "loader-version"
	installDirFlag       = "install-dir"
	noProfileFlag        = "no-profile"
	downloadServerFlag   = "download-server"
	createScriptsFlag    = "create-scripts"
	javaArgsFlag         = "java-args"
)

var (
	minecraftVersion string
	loaderVersion    string
	installDir       string
	noProfile        bool
	downloadServer   bool
	createScripts    bool
	javaArgs         string

	clientCmd = &cobra.Command{
		Use:   "client",
		Short: "Install Quilt Loader into a launcher game directory",
		Example: "  quilt-installer client\n" +
			"  quilt-installer client -m snapshot -l beta\n" +
			"  quilt-installer client -m 1.20.4 -l 0.23.1 -o ~/.minecraft --no-profile",
		Args: cobra.NoArgs,
		RunE: runClient,
	}

	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Install a Quilt Loader server into a directory",
		Example: "  quilt-installer server --download-server --create-scripts\n" +
			"  quilt-installer server -m 1.20.4 -o /srv/minecraft --java-args=-Xmx4G --create-scripts",
		Args: cobra.NoArgs,
		RunE: runServer,
	}
)

func init() {
	for _, cmd := range []*cobra.Command{clientCmd, serverCmd} {
		cmd.Flags().StringVarP(&minecraftVersion, minecraftVersionFlag, "m", "stable", "Minecraft version: stable, snapshot or an exact version")
		cmd.Flags().StringVarP(&loaderVersion, loaderVersionFlag, "l", "stable", "Quilt Loader version: stable, beta or an exact version")
		cmd.Flags().StringVarP(&installDir, installDirFlag, "o", "", "installation directory (default: launcher directory for client, ./server for server)")
	}

	clientCmd.Flags().BoolVar(&noProfile, noProfileFlag, false, "do not add a launcher profile")

	serverCmd.Flags().BoolVar(&downloadServer, downloadServerFlag, false, "download the vanilla server jar")
	serverCmd.Flags().BoolVar(&createScripts, createScriptsFlag, false, "write start.sh or start.bat")
	serverCmd.Flags().StringVar(&javaArgs, javaArgsFlag, "", "JVM arguments for launch scripts (overrides config)")
}

func runClient(cmd *cobra.Command, _ []string) error {
	host := platform.Detect()
	dir := installDir
	if dir == "" {
		var err error
		if dir, err = platform.DefaultClientDir(host, os.Getenv); err != nil {
			return err
		}
	}

	return runInstall(cmd, host, func(game model.PlatformVersion, loader model.LoaderVersion) model.InstallTarget {
		return model.ClientTarget{
			Platform:        game,
			Loader:          loader,
			InstallDir:      dir,
			GenerateProfile: !noProfile,
		}
	})
}

func runServer(cmd *cobra.Command, _ []string) error {
	dir := installDir
	if dir == "" {
		var err error
		if dir, err = platform.DefaultServerDir(os.Getwd); err != nil {
			return err
		}
	}
	if javaArgs != "" {
		settings.ServerJavaArgs = javaArgs
	}

	return runInstall(cmd, platform.Detect(), func(game model.PlatformVersion, loader model.LoaderVersion) model.InstallTarget {
		return model.ServerTarget{
			Platform:             game,
			Loader:               loader,
			InstallDir:           dir,
			DownloadServerJar:    downloadServer,
			GenerateLaunchScript: createScripts,
		}
	})
}

func runInstall(cmd *cobra.Command, host platform.Host, target func(model.PlatformVersion, model.LoaderVersion) model.InstallTarget) error {
	// Handle interrupts
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	SetupCloseHandler(ctx, cancel)

	installer, catalogs, err := install.NewFromSettings(settings, host)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Resolving versions...")
	game, loader, err := resolveVersions(ctx, catalogs,
		selection.ParsePlatformPolicy(minecraftVersion), selection.ParseLoaderPolicy(loaderVersion))
	if err != nil {
		return err
	}

	t := target(game, loader)
	fmt.Fprintf(out, "Installing Quilt Loader %s for Minecraft %s into %s\n\n", loader, game, t.Directory())

	err = installer.Install(ctx, t, func(event install.ProgressEvent) {
		if event.Level == install.LevelVerbose && !verbose {
			return
		}
		fmt.Fprintf(out, "%s %3.0f%% %s\n", levelPrefix(event.Level), event.Fraction*100, event.Message)
	})
	if err != nil && ctx.Err() != nil {
		fmt.Fprintln(out, "\nInstall cancelled.")
		return ctx.Err()
	}
	return err
}

// VersionCatalogs lists available versions. *meta.Client implements it.
type VersionCatalogs interface {
	FetchPlatformVersions(ctx context.Context) ([]model.PlatformVersion, error)
	FetchLoaderVersions(ctx context.Context) ([]model.LoaderVersion, error)
}

func resolveVersions(ctx context.Context, catalogs VersionCatalogs, gamePolicy, loaderPolicy selection.Policy) (model.PlatformVersion, model.LoaderVersion, error) {
	games, err := catalogs.FetchPlatformVersions(ctx)
	if err != nil {
		return model.PlatformVersion{}, model.LoaderVersion{}, fmt.Errorf("fetching Minecraft versions: %w", err)
	}
	game, err := selection.SelectKind(games, gamePolicy, "Minecraft")
	if err != nil {
		return model.PlatformVersion{}, model.LoaderVersion{}, err
	}

	loaders, err := catalogs.FetchLoaderVersions(ctx)
	if err != nil {
		return model.PlatformVersion{}, model.LoaderVersion{}, fmt.Errorf("fetching Quilt Loader versions: %w", err)
	}
	loader, err := selection.SelectKind(loaders, loaderPolicy, "Quilt Loader")
	if err != nil {
		return model.PlatformVersion{}, model.LoaderVersion{}, err
	}

	return game, loader, nil
}

func levelPrefix(level install.ProgressLevel) string {
	switch level {
	case install.LevelError:
		return "✗"
	case install.LevelWarning:
		return "!"
	case install.LevelSuccess:
		return "✓"
	case install.LevelInfo:
		return "›"
	default:
		return " "
	}
}
