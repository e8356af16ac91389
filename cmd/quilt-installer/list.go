package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/handiism/quilt-installer/internal/http"
	"github.com/handiism/quilt-installer/internal/meta"
	"github.com/handiism/quilt-installer/internal/model"
	"github.com/handiism/quilt-installer/internal/selection"
)

var (
	showSnapshots bool
	showBetas     bool

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List available Minecraft and Quilt Loader versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			SetupCloseHandler(ctx, cancel)

			catalogs := meta.NewClient(http.NewClient(settings.ToHTTPOptions()...), settings.ToMetaOptions()...)
			return listVersions(ctx, cmd.OutOrStdout(), catalogs, showSnapshots, showBetas)
		},
	}
)

func init() {
	listCmd.Flags().BoolVar(&showSnapshots, "snapshots", false, "include snapshot and pre-release Minecraft versions")
	listCmd.Flags().BoolVar(&showBetas, "betas", false, "include beta Quilt Loader versions")
}

func listVersions(ctx context.Context, out io.Writer, catalogs VersionCatalogs, snapshots, betas bool) error {
	games, err := catalogs.FetchPlatformVersions(ctx)
	if err != nil {
		return fmt.Errorf("fetching Minecraft versions: %w", err)
	}
	loaders, err := catalogs.FetchLoaderVersions(ctx)
	if err != nil {
		return fmt.Errorf("fetching Quilt Loader versions: %w", err)
	}

	fmt.Fprintln(out, "Minecraft versions:")
	for _, g := range selection.Filter(games, snapshots) {
		fmt.Fprintf(out, "  %s%s\n", g.ID, suffix(g))
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Quilt Loader versions:")
	for _, l := range selection.Filter(loaders, betas) {
		fmt.Fprintf(out, "  %s%s\n", l.Identifier(), suffix(l))
	}
	return nil
}

func suffix(v selection.Version) string {
	if v.IsStable() {
		return ""
	}
	if _, ok := v.(model.PlatformVersion); ok {
		return " (snapshot)"
	}
	return " (beta)"
}
