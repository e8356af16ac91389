package install

import (
	"fmt"
	"os"

	"github.com/handiism/quilt-installer/internal/config"
	"github.com/handiism/quilt-installer/internal/fetch"
	"github.com/handiism/quilt-installer/internal/http"
	ioutils "github.com/handiism/quilt-installer/internal/io"
	"github.com/handiism/quilt-installer/internal/meta"
	"github.com/handiism/quilt-installer/internal/platform"
)

// NewFromSettings wires an Installer and the metadata client it uses from
// settings. The metadata client is returned so front ends can list
// catalogs through the same transport.
func NewFromSettings(settings *config.Settings, host platform.Host) (*Installer, *meta.Client, error) {
	client := http.NewClient(settings.ToHTTPOptions()...)
	metaClient := meta.NewClient(client, settings.ToMetaOptions()...)
	fetcher := fetch.NewFetcher(client, settings.ToFetchOptions())

	opts := []Option{
		WithHost(host),
		WithConcurrency(settings.MaxConcurrentDownloads),
		WithChecksumVerification(settings.VerifyMavenChecksums),
		WithJavaArgs(settings.ServerJavaArgs),
	}

	if settings.ProfileIcon != "" {
		data, err := os.ReadFile(settings.ProfileIcon)
		if err != nil {
			return nil, nil, fmt.Errorf("reading profile icon: %w", err)
		}
		icon, err := ioutils.NewImageService().ProfileIcon(data)
		if err != nil {
			return nil, nil, fmt.Errorf("profile icon %s: %w", settings.ProfileIcon, err)
		}
		opts = append(opts, WithProfileIcon(icon))
	}

	return NewInstaller(metaClient, fetcher, opts...), metaClient, nil
}
