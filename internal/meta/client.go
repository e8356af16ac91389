package meta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/handiism/quilt-installer/internal/http"
	"github.com/handiism/quilt-installer/internal/meta/dto"
	"github.com/handiism/quilt-installer/internal/model"
)

const (
	// DefaultMetaURL is the Quilt Meta base URL.
	DefaultMetaURL = "https://meta.quiltmc.org"

	// DefaultManifestURL is Mojang's version manifest.
	DefaultManifestURL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
)

// Getter is the subset of *http.Client the catalog client needs.
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
	GetJSON(ctx context.Context, url string, v any) error
}

// Client retrieves version catalogs and per-version metadata.
//
// Every call performs exactly one network request per document and does
// not retry: a broken or empty feed is reported to the caller as-is.
//
// Example usage:
//
//	client := NewClient(http.NewClient())
//
//	games, err := client.FetchPlatformVersions(ctx)
//	loaders, err := client.FetchLoaderVersions(ctx)
type Client struct {
	getter      Getter
	metaURL     string
	manifestURL string
}

// Option configures a Client.
type Option func(*Client)

// WithMetaURL overrides the Quilt Meta base URL.
func WithMetaURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.metaURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithManifestURL overrides the Mojang version manifest URL.
func WithManifestURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.manifestURL = u
		}
	}
}

// NewClient creates a catalog client on top of getter.
func NewClient(getter Getter, opts ...Option) *Client {
	c := &Client{
		getter:      getter,
		metaURL:     DefaultMetaURL,
		manifestURL: DefaultManifestURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPlatformVersions returns the game catalog in feed order (newest first).
//
// Returns an error if:
//   - The request fails (*model.NetworkError)
//   - The response is not valid JSON (model.ErrMalformedResponse)
//   - The feed lists no versions (model.ErrEmptyCatalog)
func (c *Client) FetchPlatformVersions(ctx context.Context) ([]model.PlatformVersion, error) {
	var feed []dto.GameVersion
	if err := c.getJSON(ctx, c.metaURL+"/v3/versions/game", &feed); err != nil {
		return nil, err
	}
	if len(feed) == 0 {
		return nil, fmt.Errorf("game versions: %w", model.ErrEmptyCatalog)
	}

	versions := make([]model.PlatformVersion, 0, len(feed))
	for i, gv := range feed {
		if gv.Version == "" {
			return nil, fmt.Errorf("game versions: entry %d has no version: %w", i, model.ErrMalformedResponse)
		}
		versions = append(versions, model.PlatformVersion{
			ID:             gv.Version,
			Stable:         gv.Stable,
			ReleaseOrdinal: len(feed) - i,
		})
	}

	log.WithField("count", len(versions)).Debug("fetched game versions")
	return versions, nil
}

// FetchLoaderVersions returns the loader catalog in feed order (newest first).
//
// Entries whose version is not a semantic version are skipped with a
// warning; if nothing parseable remains the catalog counts as empty.
func (c *Client) FetchLoaderVersions(ctx context.Context) ([]model.LoaderVersion, error) {
	var feed []dto.LoaderVersion
	if err := c.getJSON(ctx, c.metaURL+"/v3/versions/loader", &feed); err != nil {
		return nil, err
	}

	versions := make([]model.LoaderVersion, 0, len(feed))
	for i := range feed {
		v, err := feed[i].ToLoaderVersion()
		if err != nil {
			log.Warnf("skipping loader version %q: %v", feed[i].Version, err)
			continue
		}
		versions = append(versions, v)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("loader versions: %w", model.ErrEmptyCatalog)
	}
	checkNewestFirst(versions)

	log.WithField("count", len(versions)).Debug("fetched loader versions")
	return versions, nil
}

// checkNewestFirst logs when the loader feed is not in descending semver
// order. Selection trusts feed order, so this is the only place a reordered
// feed becomes visible.
func checkNewestFirst(versions []model.LoaderVersion) {
	for i := 1; i < len(versions); i++ {
		if versions[i].Compare(versions[i-1]) > 0 {
			log.Warnf("loader feed is not newest-first: %s is listed after %s", versions[i], versions[i-1])
			return
		}
	}
}

// LaunchProfile is a loader launch profile together with its raw document.
type LaunchProfile struct {
	dto.LaunchProfile

	// Raw is the document exactly as served, written to
	// versions/<id>/<id>.json by the client installer.
	Raw []byte
}

// FetchLaunchProfile returns the launcher profile document for a
// (game, loader) pair.
func (c *Client) FetchLaunchProfile(ctx context.Context, game model.PlatformVersion, loader model.LoaderVersion) (*LaunchProfile, error) {
	u := fmt.Sprintf("%s/v3/versions/loader/%s/%s/profile/json",
		c.metaURL, url.PathEscape(game.ID), url.PathEscape(loader.Identifier()))

	raw, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var profile dto.LaunchProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("launch profile %s: %w: %v", u, model.ErrMalformedResponse, err)
	}
	if profile.ID == "" {
		return nil, fmt.Errorf("launch profile %s: missing id: %w", u, model.ErrMalformedResponse)
	}

	return &LaunchProfile{LaunchProfile: profile, Raw: raw}, nil
}

// ServerLauncherURL returns the URL of the self-contained server launcher
// jar for a (game, loader) pair.
func (c *Client) ServerLauncherURL(game model.PlatformVersion, loader model.LoaderVersion) string {
	return fmt.Sprintf("%s/v3/versions/loader/%s/%s/server/jar",
		c.metaURL, url.PathEscape(game.ID), url.PathEscape(loader.Identifier()))
}

// FetchServerJar resolves the vanilla server jar for a game version through
// the version manifest. The returned artifact carries URL, SHA-1 and size;
// the caller fills in the destination path.
func (c *Client) FetchServerJar(ctx context.Context, game model.PlatformVersion) (model.Artifact, error) {
	var manifest dto.VersionManifest
	if err := c.getJSON(ctx, c.manifestURL, &manifest); err != nil {
		return model.Artifact{}, err
	}

	var entry *dto.ManifestEntry
	for i := range manifest.Versions {
		if manifest.Versions[i].ID == game.ID {
			entry = &manifest.Versions[i]
			break
		}
	}
	if entry == nil {
		return model.Artifact{}, &model.NotFoundError{Kind: "Minecraft server", Requested: game.ID}
	}

	var detail dto.VersionDetail
	if err := c.getJSON(ctx, entry.URL, &detail); err != nil {
		return model.Artifact{}, err
	}
	server := detail.Downloads.Server
	if server == nil || server.URL == "" {
		return model.Artifact{}, &model.NotFoundError{Kind: "Minecraft server", Requested: game.ID}
	}

	artifact := model.Artifact{URL: server.URL, Size: server.Size}
	if server.Sha1 != "" {
		sum, err := model.NewChecksum(model.SHA1, server.Sha1)
		if err != nil {
			return model.Artifact{}, fmt.Errorf("server jar %s: %w: %v", game.ID, model.ErrMalformedResponse, err)
		}
		artifact.Checksum = sum
	}
	return artifact, nil
}

// FetchSidecarChecksum fetches "<artifactURL>.sha1" as published by Maven
// repositories. It returns nil without error when the sidecar does not exist.
func (c *Client) FetchSidecarChecksum(ctx context.Context, artifactURL string) (*model.Checksum, error) {
	body, err := c.getter.Get(ctx, artifactURL+".sha1")
	if err != nil {
		if http.IsNotFound(err) {
			return nil, nil
		}
		return nil, &model.NetworkError{URL: artifactURL + ".sha1", Err: err}
	}

	// Some repositories append the file name after the digest.
	fields := strings.Fields(string(body))
	if len(fields) == 0 {
		return nil, nil
	}
	sum, err := model.NewChecksum(model.SHA1, fields[0])
	if err != nil {
		return nil, fmt.Errorf("%s.sha1: %w: %v", artifactURL, model.ErrMalformedResponse, err)
	}
	return sum, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	body, err := c.getter.Get(ctx, u)
	if err != nil {
		return nil, &model.NetworkError{URL: u, Err: err}
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, u string, v any) error {
	err := c.getter.GetJSON(ctx, u, v)
	if err == nil {
		return nil
	}
	var decodeErr *http.DecodeError
	if errors.As(err, &decodeErr) {
		return fmt.Errorf("%s: %w: %v", u, model.ErrMalformedResponse, decodeErr.Err)
	}
	return &model.NetworkError{URL: u, Err: err}
}
