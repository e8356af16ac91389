package install

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/quilt-installer/internal/fetch"
	"github.com/handiism/quilt-installer/internal/http"
	"github.com/handiism/quilt-installer/internal/meta"
	"github.com/handiism/quilt-installer/internal/model"
	"github.com/handiism/quilt-installer/internal/platform"
	"github.com/handiism/quilt-installer/internal/profiles"
)

var (
	loaderJar       = []byte("quilt-loader-0.23.1 classes")
	intermediaryJar = []byte("intermediary-1.20.4 mappings")
	launcherJar     = []byte("quilt server launcher")
	vanillaJar      = []byte("vanilla 1.20.4 server")
)

const (
	loaderPath       = "/maven/org/quiltmc/quilt-loader/0.23.1/quilt-loader-0.23.1.jar"
	intermediaryPath = "/maven/net/fabricmc/intermediary/1.20.4/intermediary-1.20.4.jar"
	launcherPath     = "/v3/versions/loader/1.20.4/0.23.1/server/jar"
	vanillaPath      = "/objects/server.jar"
	versionID        = "quilt-loader-0.23.1-1.20.4"
)

// fakeRemote serves Quilt Meta, a Maven repository and Mojang's manifest.
type fakeRemote struct {
	*httptest.Server

	mu         sync.Mutex
	gets       map[string]int
	loaderSha1 string

	// sidecarFailures is how many loader .sha1 requests answer 503 before
	// one succeeds; negative means all of them.
	sidecarFailures int
	sidecarGets     int
}

func newFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()
	f := &fakeRemote{gets: map[string]int{}, loaderSha1: sha1Hex(loaderJar)}

	files := map[string][]byte{
		loaderPath:       loaderJar,
		intermediaryPath: intermediaryJar,
		launcherPath:     launcherJar,
		vanillaPath:      vanillaJar,
	}

	mux := nethttp.NewServeMux()
	for p, body := range files {
		mux.HandleFunc(p, func(w nethttp.ResponseWriter, r *nethttp.Request) {
			f.count(r)
			w.Header().Set("Content-Length", strconv.Itoa(len(body)))
			w.Write(body)
		})
	}
	mux.HandleFunc(loaderPath+".sha1", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		f.mu.Lock()
		sum := f.loaderSha1
		f.sidecarGets++
		fail := f.sidecarFailures < 0 || f.sidecarGets <= f.sidecarFailures
		f.mu.Unlock()
		if fail {
			w.WriteHeader(nethttp.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, sum)
	})
	mux.HandleFunc("/v3/versions/loader/1.20.4/0.23.1/profile/json", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		fmt.Fprintf(w, `{"id":%q,"inheritsFrom":"1.20.4","mainClass":"org.quiltmc.loader.impl.launch.knot.KnotClient","libraries":[
			{"name":"org.quiltmc:quilt-loader:0.23.1","url":"%[2]s/maven/"},
			{"name":"net.fabricmc:intermediary:1.20.4","url":"%[2]s/maven/"}]}`, versionID, f.URL)
	})
	mux.HandleFunc("/manifest.json", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		fmt.Fprintf(w, `{"versions":[{"id":"1.20.4","type":"release","url":"%s/v/1.20.4.json"}]}`, f.URL)
	})
	mux.HandleFunc("/v/1.20.4.json", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		fmt.Fprintf(w, `{"id":"1.20.4","downloads":{"server":{"sha1":%q,"size":%d,"url":"%s%s"}}}`,
			sha1Hex(vanillaJar), len(vanillaJar), f.URL, vanillaPath)
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func (f *fakeRemote) count(r *nethttp.Request) {
	if r.Method != nethttp.MethodGet {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets[r.URL.Path]++
}

func (f *fakeRemote) getCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gets[path]
}

func sha1Hex(b []byte) string {
	return fmt.Sprintf("%x", sha1.Sum(b))
}

func newTestInstaller(remote *fakeRemote, opts ...Option) *Installer {
	client := http.NewClient()
	metaClient := meta.NewClient(client, meta.WithMetaURL(remote.URL), meta.WithManifestURL(remote.URL+"/manifest.json"))
	fetcher := fetch.NewFetcher(client, fetch.Options{MaxRetries: 1, InitialInterval: time.Millisecond, Multiplier: 1})
	base := []Option{
		WithHost(platform.Linux),
		WithClock(func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }),
	}
	return NewInstaller(metaClient, fetcher, append(base, opts...)...)
}

func targetVersions() (model.PlatformVersion, model.LoaderVersion) {
	return model.PlatformVersion{ID: "1.20.4", Stable: true}, model.MustLoaderVersion("0.23.1")
}

// listFiles returns the regular files under dir, relative and slash-separated.
func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	var files []string
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			rel, _ := filepath.Rel(dir, p)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func TestInstallClient(t *testing.T) {
	remote := newFakeRemote(t)
	dir := t.TempDir()
	game, loader := targetVersions()

	var events []ProgressEvent
	err := newTestInstaller(remote).InstallClient(context.Background(), model.ClientTarget{
		Platform: game, Loader: loader, InstallDir: dir, GenerateProfile: true,
	}, func(e ProgressEvent) { events = append(events, e) })
	require.NoError(t, err)

	assert.Equal(t, []string{
		"launcher_profiles.json",
		"libraries/net/fabricmc/intermediary/1.20.4/intermediary-1.20.4.jar",
		"libraries/org/quiltmc/quilt-loader/0.23.1/quilt-loader-0.23.1.jar",
		"versions/" + versionID + "/" + versionID + ".jar",
		"versions/" + versionID + "/" + versionID + ".json",
	}, listFiles(t, dir))

	got, err := os.ReadFile(filepath.Join(dir, "libraries/org/quiltmc/quilt-loader/0.23.1/quilt-loader-0.23.1.jar"))
	require.NoError(t, err)
	assert.Equal(t, loaderJar, got)

	versionJSON, err := os.ReadFile(filepath.Join(dir, "versions", versionID, versionID+".json"))
	require.NoError(t, err)
	assert.Contains(t, string(versionJSON), `"inheritsFrom":"1.20.4"`)

	store, err := profiles.Load(filepath.Join(dir, profiles.FileName))
	require.NoError(t, err)
	entry, ok, err := store.Entry(versionID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, versionID, entry.LastVersionID)
	assert.Equal(t, "quilt-loader-1.20.4", entry.Name)

	require.NotEmpty(t, events)
	last := 0.0
	for _, e := range events {
		assert.GreaterOrEqual(t, e.Fraction, last, "progress never goes backwards")
		last = e.Fraction
	}
	assert.Equal(t, 1.0, events[len(events)-1].Fraction)
	assert.Equal(t, LevelSuccess, events[len(events)-1].Level)
}

func TestInstallClient_RerunKeepsOtherProfiles(t *testing.T) {
	remote := newFakeRemote(t)
	dir := t.TempDir()
	game, loader := targetVersions()

	other := `{
  "profiles" : {
    "vanilla" : {"name":"","type":"latest-release","lastVersionId":"latest-release"}
  },
  "settings" : {"enableSnapshots":true},
  "version" : 3
}`
	storePath := filepath.Join(dir, profiles.FileName)
	require.NoError(t, os.WriteFile(storePath, []byte(other), 0o644))

	installer := newTestInstaller(remote)
	target := model.ClientTarget{Platform: game, Loader: loader, InstallDir: dir, GenerateProfile: true}

	require.NoError(t, installer.Install(context.Background(), target, nil))
	first, err := profiles.Load(storePath)
	require.NoError(t, err)

	require.NoError(t, installer.Install(context.Background(), target, nil))
	second, err := profiles.Load(storePath)
	require.NoError(t, err)

	written, err := os.ReadFile(storePath)
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(written), `"vanilla"`), strings.Index(string(written), `"`+versionID+`"`),
		"existing profiles keep their position ahead of the new one")
	_, ok := second.Raw(versionID)
	assert.True(t, ok)
	wantRaw, _ := first.Raw("vanilla")
	gotRaw, _ := second.Raw("vanilla")
	assert.Equal(t, string(wantRaw), string(gotRaw))
	assert.Equal(t, `{"name":"","type":"latest-release","lastVersionId":"latest-release"}`, string(gotRaw))

	assert.Equal(t, 1, remote.getCount(loaderPath), "verified library is not downloaded twice")
	assert.Equal(t, 1, remote.getCount(intermediaryPath), "size-probed library is not downloaded twice")
}

func TestInstallClient_WithoutProfile(t *testing.T) {
	remote := newFakeRemote(t)
	dir := t.TempDir()
	game, loader := targetVersions()

	err := newTestInstaller(remote, WithChecksumVerification(false)).InstallClient(context.Background(),
		model.ClientTarget{Platform: game, Loader: loader, InstallDir: dir}, nil)
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, profiles.FileName))
}

func TestInstallClient_ChecksumMismatch(t *testing.T) {
	remote := newFakeRemote(t)
	remote.loaderSha1 = sha1Hex([]byte("something else"))
	dir := t.TempDir()
	game, loader := targetVersions()

	err := newTestInstaller(remote).InstallClient(context.Background(),
		model.ClientTarget{Platform: game, Loader: loader, InstallDir: dir, GenerateProfile: true}, nil)

	var installErr *model.InstallError
	require.True(t, errors.As(err, &installErr))
	assert.Equal(t, model.StageArtifacts, installErr.Stage)
	var integrityErr *model.IntegrityError
	assert.True(t, errors.As(err, &integrityErr))

	assert.NoFileExists(t, filepath.Join(dir, "libraries/org/quiltmc/quilt-loader/0.23.1/quilt-loader-0.23.1.jar"))
	assert.NoFileExists(t, filepath.Join(dir, profiles.FileName))
	assert.NoDirExists(t, filepath.Join(dir, "versions"))
}

func TestInstallClient_SidecarRetriedThenVerified(t *testing.T) {
	remote := newFakeRemote(t)
	remote.sidecarFailures = 1
	remote.loaderSha1 = sha1Hex([]byte("some other jar"))
	dir := t.TempDir()
	game, loader := targetVersions()

	err := newTestInstaller(remote).InstallClient(context.Background(), model.ClientTarget{
		Platform: game, Loader: loader, InstallDir: dir,
	}, nil)

	var integrityErr *model.IntegrityError
	require.True(t, errors.As(err, &integrityErr), "checksum from the retried sidecar is enforced")
	assert.Equal(t, 2, remote.sidecarGets)
}

func TestInstallClient_SidecarUnavailableFails(t *testing.T) {
	remote := newFakeRemote(t)
	remote.sidecarFailures = -1
	dir := t.TempDir()
	game, loader := targetVersions()

	err := newTestInstaller(remote).InstallClient(context.Background(), model.ClientTarget{
		Platform: game, Loader: loader, InstallDir: dir, GenerateProfile: true,
	}, nil)

	var installErr *model.InstallError
	require.True(t, errors.As(err, &installErr))
	assert.Equal(t, model.StageMetadata, installErr.Stage)
	var netErr *model.NetworkError
	assert.True(t, errors.As(err, &netErr))

	assert.Equal(t, 2, remote.sidecarGets, "one retry under the fetch policy")
	assert.Equal(t, 0, remote.getCount(loaderPath), "nothing is downloaded unverified")
	assert.Empty(t, listFiles(t, dir))
}

func TestInstallServer_ScriptOnlyProducesTwoFiles(t *testing.T) {
	remote := newFakeRemote(t)
	dir := t.TempDir()
	game, loader := targetVersions()

	err := newTestInstaller(remote, WithJavaArgs("-Xmx3G")).InstallServer(context.Background(), model.ServerTarget{
		Platform: game, Loader: loader, InstallDir: dir, DownloadServerJar: false, GenerateLaunchScript: true,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{ServerLauncherJar, "start.sh"}, listFiles(t, dir))

	info, err := os.Stat(filepath.Join(dir, "start.sh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "start.sh is executable")

	content, err := os.ReadFile(filepath.Join(dir, "start.sh"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "java -Xmx3G -jar "+ServerLauncherJar+" nogui")
	assert.Equal(t, 0, remote.getCount(vanillaPath))
}

func TestInstallServer_WindowsWithVanillaJar(t *testing.T) {
	remote := newFakeRemote(t)
	dir := t.TempDir()
	game, loader := targetVersions()

	err := newTestInstaller(remote, WithHost(platform.Windows)).Install(context.Background(), model.ServerTarget{
		Platform: game, Loader: loader, InstallDir: dir, DownloadServerJar: true, GenerateLaunchScript: true,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{ServerLauncherJar, VanillaServerJar, "start.bat"}, listFiles(t, dir))
	content, err := os.ReadFile(filepath.Join(dir, "start.bat"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(content), "pause\r\n"))
}

func TestInstallServer_RerunSkipsAndKeepsUnrelatedFiles(t *testing.T) {
	remote := newFakeRemote(t)
	dir := t.TempDir()
	game, loader := targetVersions()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "server.properties"), []byte("motd=hello\n"), 0o644))

	installer := newTestInstaller(remote)
	target := model.ServerTarget{Platform: game, Loader: loader, InstallDir: dir, DownloadServerJar: true, GenerateLaunchScript: true}
	require.NoError(t, installer.Install(context.Background(), target, nil))
	require.NoError(t, installer.Install(context.Background(), target, nil))

	assert.Equal(t, 1, remote.getCount(vanillaPath))
	assert.Equal(t, 1, remote.getCount(launcherPath))

	props, err := os.ReadFile(filepath.Join(dir, "server.properties"))
	require.NoError(t, err)
	assert.Equal(t, "motd=hello\n", string(props))
	assert.Equal(t, []string{ServerLauncherJar, VanillaServerJar, "server.properties", "start.sh"}, listFiles(t, dir))
}

func TestInstall_Cancelled(t *testing.T) {
	remote := newFakeRemote(t)
	game, loader := targetVersions()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	targets := map[string]model.InstallTarget{
		"client": model.ClientTarget{Platform: game, Loader: loader, InstallDir: t.TempDir(), GenerateProfile: true},
		"server": model.ServerTarget{Platform: game, Loader: loader, InstallDir: t.TempDir(), GenerateLaunchScript: true},
	}

	for name, target := range targets {
		t.Run(name, func(t *testing.T) {
			err := newTestInstaller(remote).Install(ctx, target, nil)
			assert.ErrorIs(t, err, context.Canceled)
			assert.Empty(t, listFiles(t, target.Directory()))
		})
	}
}

func TestInstall_InvalidTarget(t *testing.T) {
	remote := newFakeRemote(t)
	game, loader := targetVersions()

	err := newTestInstaller(remote).Install(context.Background(), nil, nil)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	var nilTarget *model.ServerTarget
	err = newTestInstaller(remote).Install(context.Background(), nilTarget, nil)
	assert.ErrorIs(t, err, ErrInvalidTarget)

	err = newTestInstaller(remote).Install(context.Background(), model.ServerTarget{Platform: game, Loader: loader}, nil)
	assert.ErrorIs(t, err, ErrInvalidTarget)
}
