package meta

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/quilt-installer/internal/http"
	"github.com/handiism/quilt-installer/internal/model"
)

const profileJSON = `{
  "id": "quilt-loader-0.23.1-1.20.4",
  "inheritsFrom": "1.20.4",
  "type": "release",
  "mainClass": "org.quiltmc.loader.impl.launch.knot.KnotClient",
  "libraries": [
    {"name": "org.quiltmc:quilt-loader:0.23.1", "url": "https://maven.quiltmc.org/repository/release/"},
    {"name": "net.fabricmc:intermediary:1.20.4", "url": "https://maven.fabricmc.net/"}
  ]
}`

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	mux := nethttp.NewServeMux()
	for path, body := range routes {
		body := body
		mux.HandleFunc(path, func(w nethttp.ResponseWriter, r *nethttp.Request) {
			fmt.Fprint(w, body)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchPlatformVersions(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/v3/versions/game": `[{"version":"24w10a","stable":false},{"version":"1.20.4","stable":true}]`,
	})

	c := NewClient(http.NewClient(), WithMetaURL(srv.URL))
	versions, err := c.FetchPlatformVersions(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 2)

	assert.Equal(t, "24w10a", versions[0].ID)
	assert.False(t, versions[0].Stable)
	assert.Equal(t, "1.20.4", versions[1].ID)
	assert.True(t, versions[1].Stable)
	assert.Greater(t, versions[0].ReleaseOrdinal, versions[1].ReleaseOrdinal, "feed order is newest first")
}

func TestClient_FetchLoaderVersions(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/v3/versions/loader": `[
			{"separator":".","build":0,"maven":"org.quiltmc:quilt-loader:0.24.0-beta.1","version":"0.24.0-beta.1"},
			{"separator":".","build":0,"maven":"org.quiltmc:quilt-loader:0.23.1","version":"0.23.1"},
			{"separator":".","build":0,"maven":"org.quiltmc:quilt-loader:garbage","version":"garbage"}
		]`,
	})

	c := NewClient(http.NewClient(), WithMetaURL(srv.URL))
	versions, err := c.FetchLoaderVersions(context.Background())
	require.NoError(t, err)
	require.Len(t, versions, 2, "unparseable entries are skipped")

	assert.Equal(t, "0.24.0-beta.1", versions[0].Identifier())
	assert.False(t, versions[0].IsStable())
	assert.Equal(t, "0.23.1", versions[1].Identifier())
	assert.Equal(t, "org.quiltmc:quilt-loader:0.23.1", versions[1].Maven)
}

func TestClient_CatalogFailures(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		check  func(t *testing.T, err error)
	}{
		{
			name: "empty",
			body: `[]`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, model.ErrEmptyCatalog)
			},
		},
		{
			name: "malformed",
			body: `{"not":"a list"`,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, model.ErrMalformedResponse)
			},
		},
		{
			name:   "server error",
			status: nethttp.StatusServiceUnavailable,
			check: func(t *testing.T, err error) {
				var netErr *model.NetworkError
				assert.True(t, errors.As(err, &netErr))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests := 0
			srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
				requests++
				if tt.status != 0 {
					w.WriteHeader(tt.status)
					return
				}
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(http.NewClient(), WithMetaURL(srv.URL))

			_, err := c.FetchPlatformVersions(context.Background())
			require.Error(t, err)
			tt.check(t, err)

			_, err = c.FetchLoaderVersions(context.Background())
			require.Error(t, err)
			tt.check(t, err)

			assert.Equal(t, 2, requests, "catalog requests are never retried")
		})
	}
}

func TestClient_FetchLaunchProfile(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/v3/versions/loader/1.20.4/0.23.1/profile/json": profileJSON,
	})

	c := NewClient(http.NewClient(), WithMetaURL(srv.URL))
	profile, err := c.FetchLaunchProfile(context.Background(),
		model.PlatformVersion{ID: "1.20.4", Stable: true}, model.MustLoaderVersion("0.23.1"))
	require.NoError(t, err)

	assert.Equal(t, "quilt-loader-0.23.1-1.20.4", profile.ID)
	assert.Equal(t, "1.20.4", profile.InheritsFrom)
	assert.Len(t, profile.Libraries, 2)
	assert.Equal(t, profileJSON, string(profile.Raw))
}

func TestClient_ServerLauncherURL(t *testing.T) {
	c := NewClient(http.NewClient(), WithMetaURL("https://meta.example.org/"))
	got := c.ServerLauncherURL(model.PlatformVersion{ID: "1.20.4"}, model.MustLoaderVersion("0.23.1"))
	assert.Equal(t, "https://meta.example.org/v3/versions/loader/1.20.4/0.23.1/server/jar", got)
}

func TestClient_FetchServerJar(t *testing.T) {
	var srv *httptest.Server
	mux := nethttp.NewServeMux()
	mux.HandleFunc("/manifest.json", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		fmt.Fprintf(w, `{"latest":{"release":"1.20.4","snapshot":"24w10a"},"versions":[
			{"id":"24w10a","type":"snapshot","url":"%[1]s/v/24w10a.json"},
			{"id":"1.20.4","type":"release","url":"%[1]s/v/1.20.4.json"}]}`, srv.URL)
	})
	mux.HandleFunc("/v/1.20.4.json", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		fmt.Fprint(w, `{"id":"1.20.4","downloads":{"server":{"sha1":"8dd1a28015f51b1803213892b50b7b4fc76e594d","size":49150256,"url":"https://piston-data.mojang.com/v1/objects/8dd1a28015f51b1803213892b50b7b4fc76e594d/server.jar"}}}`)
	})
	mux.HandleFunc("/v/24w10a.json", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		fmt.Fprint(w, `{"id":"24w10a","downloads":{}}`)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(http.NewClient(), WithManifestURL(srv.URL+"/manifest.json"))

	artifact, err := c.FetchServerJar(context.Background(), model.PlatformVersion{ID: "1.20.4"})
	require.NoError(t, err)
	assert.Contains(t, artifact.URL, "server.jar")
	assert.EqualValues(t, 49150256, artifact.Size)
	require.NotNil(t, artifact.Checksum)
	assert.Equal(t, model.SHA1, artifact.Checksum.Algorithm)

	_, err = c.FetchServerJar(context.Background(), model.PlatformVersion{ID: "24w10a"})
	var nf *model.NotFoundError
	require.True(t, errors.As(err, &nf))

	_, err = c.FetchServerJar(context.Background(), model.PlatformVersion{ID: "0.0.0"})
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "0.0.0", nf.Requested)
}

func TestClient_FetchSidecarChecksum(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/lib.jar.sha1":   "8dd1a28015f51b1803213892b50b7b4fc76e594d  lib.jar\n",
		"/empty.jar.sha1": "",
	})
	c := NewClient(http.NewClient())

	sum, err := c.FetchSidecarChecksum(context.Background(), srv.URL+"/lib.jar")
	require.NoError(t, err)
	require.NotNil(t, sum)
	assert.Equal(t, "8dd1a28015f51b1803213892b50b7b4fc76e594d", sum.Hex)

	sum, err = c.FetchSidecarChecksum(context.Background(), srv.URL+"/missing.jar")
	require.NoError(t, err)
	assert.Nil(t, sum)

	sum, err = c.FetchSidecarChecksum(context.Background(), srv.URL+"/empty.jar")
	require.NoError(t, err)
	assert.Nil(t, sum)
}

func orderWarnings(hook *logtest.Hook) int {
	n := 0
	for _, e := range hook.AllEntries() {
		if e.Level == log.WarnLevel && strings.Contains(e.Message, "not newest-first") {
			n++
		}
	}
	return n
}

func TestClient_FetchLoaderVersionsChecksFeedOrder(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	tests := []struct {
		name     string
		feed     string
		first    string
		warnings int
	}{
		{"newest first", `[{"version":"0.24.0-beta.1"},{"version":"0.23.1"},{"version":"0.9.0"}]`, "0.24.0-beta.1", 0},
		{"reordered", `[{"version":"0.9.0"},{"version":"0.10.0"}]`, "0.9.0", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook.Reset()
			srv := newTestServer(t, map[string]string{"/v3/versions/loader": tt.feed})

			versions, err := NewClient(http.NewClient(), WithMetaURL(srv.URL)).FetchLoaderVersions(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.first, versions[0].Identifier(), "feed order is kept")
			assert.Equal(t, tt.warnings, orderWarnings(hook))
		})
	}
}

func TestClient_DecodeFailureIsMalformed(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/manifest.json": `{"versions": 7}`,
	})

	_, err := NewClient(http.NewClient(), WithManifestURL(srv.URL+"/manifest.json")).
		FetchServerJar(context.Background(), model.PlatformVersion{ID: "1.20.4"})
	assert.ErrorIs(t, err, model.ErrMalformedResponse)

	var netErr *model.NetworkError
	assert.False(t, errors.As(err, &netErr))
}
