package main

// NOTE: Tests in this file mutate package-level globals (newLauncher, isInteractive,
// defaultConfigPath, runForm). Do not use t.Parallel(). Each test restores globals via t.Cleanup().

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/config"
	"github.com/conn-castle/yaam/internal/remote"
	"github.com/conn-castle/yaam/internal/run"
	"github.com/conn-castle/yaam/internal/testutil"
)

type fakeLauncher struct {
	calls int
	host  run.Host
}

func (l *fakeLauncher) Launch(_ context.Context, host run.Host, _ []addon.Resolved) error {
	l.calls++
	l.host = host
	return nil
}

type env struct {
	install  string
	data     string
	config   string
	server   *httptest.Server
	hits     atomic.Int32
	launcher *fakeLauncher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{install: t.TempDir(), data: t.TempDir(), launcher: &fakeLauncher{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/arc.dll", func(w http.ResponseWriter, r *http.Request) {
		e.hits.Add(1)
		w.Header().Set("Last-Modified", "Mon, 01 Jan 2024 00:00:00 GMT")
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write([]byte("arc-binary"))
	})
	e.server = httptest.NewServer(mux)
	t.Cleanup(e.server.Close)

	e.config = filepath.Join(t.TempDir(), "yaam.toml")
	testutil.WriteFile(t, e.config, `
[host]
install_dir = "`+e.install+`"
executable = "host.exe"
variant = "dx11"
args = ["-autologin"]

[paths]
data_dir = "`+e.data+`"
`)
	e.declare(t, e.server.URL+"/arc.dll")

	origLauncher, origInteractive := newLauncher, isInteractive
	newLauncher = func(*app) run.Launcher { return e.launcher }
	isInteractive = func() bool { return false }
	t.Cleanup(func() {
		newLauncher = origLauncher
		isInteractive = origInteractive
	})
	return e
}

func (e *env) declare(t *testing.T, uri string) {
	t.Helper()
	testutil.WriteFile(t, filepath.Join(e.data, config.AddonsFile), `{"addons": [{"name": "Arc", "uri": "`+uri+`"}]}`)
	testutil.WriteFile(t, filepath.Join(e.data, config.SettingsFile), `{"bindings": {"dx11": [
		{"name": "Arc", "path": "addons/arc.dll", "enabled": true, "update": true}
	]}}`)
}

func (e *env) exec(args ...string) (string, error) {
	var out bytes.Buffer
	err := execute(append([]string{"yaam", "--config", e.config}, args...), &out, &out)
	return out.String(), err
}

func TestSyncUpdateOnlyInstallsWithoutLaunching(t *testing.T) {
	e := newEnv(t)

	out, err := e.exec("sync", "--update-only")
	require.NoError(t, err, out)
	assert.Equal(t, "arc-binary", testutil.ReadFile(t, filepath.Join(e.install, "addons", "arc.dll")))
	assert.FileExists(t, run.SnapshotPath(filepath.Join(e.data, "state")))
	assert.FileExists(t, filepath.Join(e.data, "metadata", "arc.json"))
	assert.Equal(t, 0, e.launcher.calls)
	assert.Contains(t, out, "Updates: 1 created")

	hits := e.hits.Load()
	out, err = e.exec("sync", "--update-only")
	require.NoError(t, err, out)
	assert.Contains(t, out, "1 up to date")
	assert.Equal(t, hits+1, e.hits.Load(), "second run only checks the marker")
}

func TestRootCommandSyncsAndLaunches(t *testing.T) {
	e := newEnv(t)

	out, err := e.exec("--quiet")
	require.NoError(t, err, out)
	assert.Equal(t, 1, e.launcher.calls)
	assert.Equal(t, filepath.Join(e.install, "host.exe"), e.launcher.host.Executable)
	assert.Equal(t, []string{"-autologin"}, e.launcher.host.Args)
	assert.FileExists(t, filepath.Join(e.install, "addons", "arc.dll"))
}

func TestRootCommandAcceptsSyncFlags(t *testing.T) {
	e := newEnv(t)

	out, err := e.exec("--update-only")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Updates: 1 created")

	hits := e.hits.Load()
	out, err = e.exec("--force", "--update-only")
	require.NoError(t, err, out)
	assert.Equal(t, 0, e.launcher.calls)
	assert.Greater(t, e.hits.Load(), hits+1, "forced run downloads past a matching marker")
	assert.Contains(t, out, "1 up to date")

	_, err = e.exec("-u", "-r")
	require.Error(t, err)
}

func TestSyncRunOnlySkipsNetwork(t *testing.T) {
	e := newEnv(t)

	out, err := e.exec("sync", "--run-only")
	require.NoError(t, err, out)
	assert.Equal(t, int32(0), e.hits.Load())
	assert.Equal(t, 1, e.launcher.calls)
	assert.NoFileExists(t, filepath.Join(e.install, "addons", "arc.dll"))
}

func TestSyncNoNetworkEnv(t *testing.T) {
	e := newEnv(t)
	t.Setenv("YAAM_NO_NETWORK", "1")

	out, err := e.exec("sync")
	require.NoError(t, err, out)
	assert.Equal(t, int32(0), e.hits.Load())
	assert.Contains(t, out, "YAAM_NO_NETWORK is set")
}

func TestSyncReportsFailures(t *testing.T) {
	e := newEnv(t)
	e.declare(t, e.server.URL+"/missing.dll")

	out, err := e.exec("sync", "--update-only", "--no-preload")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSyncCompletedWithFailures))
	assert.Contains(t, err.Error(), "1 addon(s) failed")
	assert.Contains(t, out, "download failed")
}

func TestSyncFailuresStillLaunch(t *testing.T) {
	e := newEnv(t)
	e.declare(t, e.server.URL+"/missing.dll")

	_, err := e.exec("sync")
	require.Error(t, err)
	assert.Equal(t, 1, e.launcher.calls)
}

func TestSyncFlagConflict(t *testing.T) {
	e := newEnv(t)
	_, err := e.exec("sync", "--update-only", "--run-only")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be combined")
}

func TestMissingConfigIsFatal(t *testing.T) {
	var out bytes.Buffer
	err := execute([]string{"yaam", "--config", filepath.Join(t.TempDir(), "absent.toml"), "status"}, &out, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfigLoad))
}

func TestDefaultConfigPathUsed(t *testing.T) {
	e := newEnv(t)
	orig := defaultConfigPath
	defaultConfigPath = func() (string, error) { return e.config, nil }
	t.Cleanup(func() { defaultConfigPath = orig })

	var out bytes.Buffer
	require.NoError(t, execute([]string{"yaam", "status"}, &out, &out))
	assert.Contains(t, out.String(), "Arc")
}

func TestStatus(t *testing.T) {
	e := newEnv(t)
	out, err := e.exec("status")
	require.NoError(t, err)
	assert.Contains(t, out, "Arc")
	assert.Contains(t, out, "d3d11")
	assert.Contains(t, out, filepath.Join(e.install, "addons", "arc.dll"))
}

func TestStatusVariantOverride(t *testing.T) {
	e := newEnv(t)
	out, err := e.exec("--variant", "vk", "plan")
	require.NoError(t, err)
	assert.Contains(t, out, "+variant vulkan")
	assert.Contains(t, out, "enabled=false")

	_, err = e.exec("--variant", "opengl", "status")
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrConfigLoad))
}

func TestPlan(t *testing.T) {
	e := newEnv(t)
	out, err := e.exec("plan")
	require.NoError(t, err)
	assert.Contains(t, out, "+Arc(d3d11) enabled=true update=true")

	_, err = e.exec("sync", "--run-only")
	require.NoError(t, err)

	out, err = e.exec("plan")
	require.NoError(t, err)
	assert.Contains(t, out, "No changes since the last run.")
}

func TestChooseAsset(t *testing.T) {
	orig := runForm
	t.Cleanup(func() { runForm = orig })
	candidates := []remote.Asset{{Name: "a.zip", URL: "https://x/a.zip"}, {Name: "b.zip", URL: "https://x/b.zip"}}
	r := addon.Resolved{Base: addon.Base{Name: "Arc"}}

	var ran bool
	runForm = func(context.Context, *huh.Form) error {
		ran = true
		return nil
	}
	got, err := chooseAsset(context.Background(), r, candidates)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, candidates[0], got)

	runForm = func(context.Context, *huh.Form) error { return huh.ErrUserAborted }
	_, err = chooseAsset(context.Background(), r, candidates)
	assert.ErrorIs(t, err, huh.ErrUserAborted)
}

func TestSyncUsesChooserWhenInteractive(t *testing.T) {
	e := newEnv(t)
	isInteractive = func() bool { return true }
	out, err := e.exec("sync", "--update-only")
	require.NoError(t, err, out)
	_, statErr := os.Stat(filepath.Join(e.install, "addons", "arc.dll"))
	assert.NoError(t, statErr)
	assert.True(t, strings.Contains(out, "created"))
}
