package install

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/console"
	"github.com/conn-castle/yaam/internal/testutil"
)

type testSystem struct {
	RealSystem
	RenameFunc          func(string, string) error
	WriteFileAtomicFunc func(string, []byte, os.FileMode) error
}

func (s testSystem) Rename(oldpath string, newpath string) error {
	if s.RenameFunc != nil {
		return s.RenameFunc(oldpath, newpath)
	}
	return s.RealSystem.Rename(oldpath, newpath)
}

func (s testSystem) WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	if s.WriteFileAtomicFunc != nil {
		return s.WriteFileAtomicFunc(filename, data, perm)
	}
	return s.RealSystem.WriteFileAtomic(filename, data, perm)
}

type recordingRunner struct {
	calls [][]string
	dirs  []string
	err   error
}

func (r *recordingRunner) Run(_ context.Context, dir string, name string, args ...string) error {
	r.dirs = append(r.dirs, dir)
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.err
}

func library(path string) addon.Resolved {
	return addon.Resolved{
		Base:      addon.Base{Name: "Arc DPS"},
		Placement: addon.Placement{Name: "Arc DPS", Variant: addon.VariantD3D11, Path: path, Enabled: true, Updateable: true},
	}
}

func headless(path string, v addon.Variant) addon.Resolved {
	return addon.Resolved{
		Base:      addon.Base{Name: "Blish HUD"},
		Placement: addon.Placement{Name: "Blish HUD", Variant: v, Path: path, Enabled: true, Updateable: true},
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestSniff(t *testing.T) {
	zipData := testutil.ZipBytes(t, testutil.Entry{Name: "a.dll", Body: "a"})
	tgzData := testutil.TarGzBytes(t, testutil.Entry{Name: "a.dll", Body: "a"})

	assert.Equal(t, Payload{Kind: KindArchive, Format: FormatZip, Filename: "", Data: zipData}, Sniff(zipData, "", false))
	assert.Equal(t, FormatTarGz, Sniff(tgzData, "x", false).Format)
	assert.Equal(t, KindDatastream, Sniff([]byte("MZ..."), "d3d11.dll", false).Kind)
	assert.Equal(t, KindArchive, Sniff([]byte("garbage"), "ArcDPS.ZIP", false).Kind)
	assert.Equal(t, FormatTarGz, Sniff([]byte("garbage"), "pack.tgz", false).Format)

	inst := Sniff(zipData, "setup.zip", true)
	assert.Equal(t, KindInstaller, inst.Kind)
	assert.Equal(t, FormatZip, inst.Format)
	assert.Equal(t, "installer", KindInstaller.String())
}

func TestDatastreamPinsLibraryName(t *testing.T) {
	game := t.TempDir()
	target := filepath.Join(game, "bin64", "arc.dll")
	d := New(Options{})

	res, err := d.Install(context.Background(), Target{Addon: library(target)}, Sniff([]byte("dll-bytes"), "d3d11.dll", false))
	require.NoError(t, err)
	assert.Equal(t, "dll-bytes", testutil.ReadFile(t, target))
	assert.Equal(t, map[string]string{"d3d11.dll": "arc.dll"}, res.Naming)
	assert.Equal(t, []string{target}, res.Written)
}

func TestDatastreamExplicitRuleWins(t *testing.T) {
	game := t.TempDir()
	target := filepath.Join(game, "arc.dll")
	d := New(Options{})

	rules := map[string]string{"d3d11.dll": "arc_override.dll"}
	res, err := d.Install(context.Background(), Target{Addon: library(target), Rules: rules}, Sniff([]byte("x"), "d3d11.dll", false))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(game, "arc_override.dll"))
	assert.NoFileExists(t, target)
	assert.Equal(t, rules, res.Naming)
}

func TestDatastreamHeadlessKeepsResponseName(t *testing.T) {
	workspace := filepath.Join(t.TempDir(), "tools")
	d := New(Options{})

	res, err := d.Install(context.Background(), Target{Addon: headless(workspace, addon.VariantExe)}, Sniff([]byte("exe"), "Blish HUD.exe", false))
	require.NoError(t, err)
	assert.Equal(t, "exe", testutil.ReadFile(t, filepath.Join(workspace, "Blish HUD.exe")))
	assert.Equal(t, map[string]string{"Blish HUD.exe": "Blish HUD.exe"}, res.Naming)
}

func TestDatastreamAliasFallbacks(t *testing.T) {
	workspace := t.TempDir()
	r := headless(workspace, addon.VariantExe)
	assert.Equal(t, "blish_hud.exe", responseAlias(Target{Addon: r}, Payload{}))
	assert.Equal(t, "a.exe", responseAlias(Target{Addon: r, Rules: map[string]string{"b.exe": "x", "a.exe": "y"}}, Payload{}))

	lib := headless(workspace, addon.VariantD3D11)
	assert.Equal(t, "blish_hud.dll", responseAlias(Target{Addon: lib}, Payload{}))
	assert.Equal(t, "arc.dll", responseAlias(Target{Addon: library(filepath.Join(workspace, "arc.dll"))}, Payload{}))
}

func TestDatastreamWriteFailureIsPartialWrite(t *testing.T) {
	sys := testSystem{WriteFileAtomicFunc: func(string, []byte, os.FileMode) error { return errors.New("disk full") }}
	d := New(Options{System: sys})

	_, err := d.Install(context.Background(), Target{Addon: library(filepath.Join(t.TempDir(), "arc.dll"))}, Sniff([]byte("x"), "", false))
	var partial *PartialWriteError
	require.True(t, errors.As(err, &partial))
	assert.Contains(t, err.Error(), "disk full")
}

func TestArchiveSingleRootFolderIsFlattenedAndPinned(t *testing.T) {
	game := t.TempDir()
	target := filepath.Join(game, "arc.dll")
	data := testutil.ZipBytes(t,
		testutil.Entry{Name: "ArcDPS/", Dir: true},
		testutil.Entry{Name: "ArcDPS/ArcDPS.dll", Body: "dll"},
		testutil.Entry{Name: "ArcDPS/readme.txt", Body: "read me"},
		testutil.Entry{Name: "ArcDPS/extras/cfg.ini", Body: "cfg"},
	)

	res, err := New(Options{}).Install(context.Background(), Target{Addon: library(target)}, Sniff(data, "ArcDPS.zip", false))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ArcDPS.dll": "arc.dll"}, res.Naming)
	assert.Equal(t, "dll", testutil.ReadFile(t, target))
	assert.Equal(t, "read me", testutil.ReadFile(t, filepath.Join(game, "readme.txt")))
	assert.Equal(t, "cfg", testutil.ReadFile(t, filepath.Join(game, "extras", "cfg.ini")))
	assert.ElementsMatch(t, []string{"arc.dll", "extras", "readme.txt"}, listDir(t, game), "staging directory must be removed")
	assert.Len(t, res.Written, 3)
}

func TestArchiveExplicitRulesTakePrecedence(t *testing.T) {
	game := t.TempDir()
	data := testutil.ZipBytes(t,
		testutil.Entry{Name: "ArcDPS.dll", Body: "dll"},
		testutil.Entry{Name: "other.dll", Body: "other"},
	)
	rules := map[string]string{"other.dll": "custom.dll"}

	res, err := New(Options{}).Install(context.Background(), Target{Addon: library(filepath.Join(game, "arc.dll")), Rules: rules}, Sniff(data, "", false))
	require.NoError(t, err)
	assert.Equal(t, rules, res.Naming)
	assert.ElementsMatch(t, []string{"ArcDPS.dll", "custom.dll"}, listDir(t, game))
}

func TestArchiveMultipleRootsKeepsLayout(t *testing.T) {
	workspace := filepath.Join(t.TempDir(), "addons", "blish")
	data := testutil.TarGzBytes(t,
		testutil.Entry{Name: "Blish HUD.exe", Body: "exe"},
		testutil.Entry{Name: "lib/", Dir: true},
		testutil.Entry{Name: "lib/core.dll", Body: "core"},
	)

	res, err := New(Options{}).Install(context.Background(), Target{Addon: headless(workspace, addon.VariantExe)}, Sniff(data, "blish.tar.gz", false))
	require.NoError(t, err)
	assert.Empty(t, res.Naming)
	assert.Equal(t, "exe", testutil.ReadFile(t, filepath.Join(workspace, "Blish HUD.exe")))
	assert.Equal(t, "core", testutil.ReadFile(t, filepath.Join(workspace, "lib", "core.dll")))
}

func TestArchiveReplacesExistingFiles(t *testing.T) {
	game := t.TempDir()
	target := filepath.Join(game, "arc.dll")
	testutil.WriteFile(t, target, "old")
	data := testutil.ZipBytes(t, testutil.Entry{Name: "ArcDPS.dll", Body: "new"})

	_, err := New(Options{}).Install(context.Background(), Target{Addon: library(target)}, Sniff(data, "", false))
	require.NoError(t, err)
	assert.Equal(t, "new", testutil.ReadFile(t, target))
}

func TestArchiveRejectsEscapingEntries(t *testing.T) {
	game := t.TempDir()
	data := testutil.ZipBytes(t, testutil.Entry{Name: "../evil.dll", Body: "x"})

	_, err := New(Options{}).Install(context.Background(), Target{Addon: library(filepath.Join(game, "arc.dll"))}, Sniff(data, "", false))
	var invalid *InvalidArchiveError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, err.Error(), "unsafe entry path")
	assert.NoFileExists(t, filepath.Join(filepath.Dir(game), "evil.dll"))
}

func TestArchiveCorruptIsInvalid(t *testing.T) {
	game := t.TempDir()
	_, err := New(Options{}).Install(context.Background(), Target{Addon: library(filepath.Join(game, "arc.dll"))}, Sniff([]byte("not a zip"), "arc.zip", false))
	var invalid *InvalidArchiveError
	require.True(t, errors.As(err, &invalid))
	assert.Empty(t, listDir(t, game))
}

func TestArchiveEmptyIsInvalid(t *testing.T) {
	data := testutil.ZipBytes(t, testutil.Entry{Name: "only/", Dir: true})
	_, err := New(Options{}).Install(context.Background(), Target{Addon: library(filepath.Join(t.TempDir(), "arc.dll"))}, Sniff(data, "", false))
	var invalid *InvalidArchiveError
	require.True(t, errors.As(err, &invalid))
}

func TestArchiveTooLargeIsInvalid(t *testing.T) {
	data := testutil.ZipBytes(t, testutil.Entry{Name: "big.dll", Body: strings.Repeat("x", 64)})
	d := New(Options{MaxExtractBytes: 16})

	_, err := d.Install(context.Background(), Target{Addon: library(filepath.Join(t.TempDir(), "arc.dll"))}, Sniff(data, "", false))
	var invalid *InvalidArchiveError
	require.True(t, errors.As(err, &invalid))
	assert.Contains(t, err.Error(), "exceeds 16 bytes")
}

func TestArchiveMergeFailureIsPartialWriteAndCleansStaging(t *testing.T) {
	game := t.TempDir()
	target := filepath.Join(game, "arc.dll")
	sys := testSystem{RenameFunc: func(oldpath string, newpath string) error {
		if filepath.Dir(newpath) == game {
			return errors.New("locked by game")
		}
		return os.Rename(oldpath, newpath)
	}}
	data := testutil.ZipBytes(t, testutil.Entry{Name: "ArcDPS.dll", Body: "dll"})

	_, err := New(Options{System: sys}).Install(context.Background(), Target{Addon: library(target)}, Sniff(data, "", false))
	var partial *PartialWriteError
	require.True(t, errors.As(err, &partial))
	assert.Empty(t, listDir(t, game))
}

func TestInstallerRunsExeFromArchive(t *testing.T) {
	workspace := filepath.Join(t.TempDir(), "tools")
	runner := &recordingRunner{}
	data := testutil.ZipBytes(t,
		testutil.Entry{Name: "pkg/readme.txt", Body: "r"},
		testutil.Entry{Name: "pkg/tool.exe", Body: "x"},
		testutil.Entry{Name: "pkg/ToolInstaller.exe", Body: "i"},
	)
	r := headless(workspace, addon.VariantExe)
	r.Base.IsInstaller = true

	res, err := New(Options{Runner: runner, Logger: console.Discard()}).Install(context.Background(), Target{Addon: r}, Sniff(data, "", true))
	require.NoError(t, err)
	assert.Empty(t, res.Naming)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "ToolInstaller.exe", filepath.Base(runner.calls[0][0]))
	assert.Equal(t, filepath.Join(workspace, "installer"), runner.dirs[0])
	assert.NoDirExists(t, filepath.Join(workspace, "installer"))
}

func TestInstallerRunsRawMsiThroughMsiexec(t *testing.T) {
	workspace := t.TempDir()
	runner := &recordingRunner{}
	r := headless(workspace, addon.VariantExe)

	_, err := New(Options{Runner: runner}).Install(context.Background(), Target{Addon: r}, Sniff([]byte("msi"), "tool.msi", true))
	require.NoError(t, err)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "msiexec", runner.calls[0][0])
	assert.Equal(t, "/i", runner.calls[0][1])
	assert.Equal(t, "tool.msi", filepath.Base(runner.calls[0][2]))
}

func TestInstallerFailureCleansUp(t *testing.T) {
	workspace := t.TempDir()
	runner := &recordingRunner{err: errors.New("exit status 1603")}

	_, err := New(Options{Runner: runner}).Install(context.Background(), Target{Addon: headless(workspace, addon.VariantExe)}, Sniff([]byte("x"), "", true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 1603")
	assert.Equal(t, "blish_hud.exe", filepath.Base(runner.calls[0][0]))
	assert.NoDirExists(t, filepath.Join(workspace, "installer"))
}

func TestInstallerNotFound(t *testing.T) {
	workspace := t.TempDir()
	data := testutil.ZipBytes(t, testutil.Entry{Name: "readme.txt", Body: "r"})

	_, err := New(Options{Runner: &recordingRunner{}}).Install(context.Background(), Target{Addon: headless(workspace, addon.VariantExe)}, Sniff(data, "", true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no installer found")
}

func TestExecRunnerRunsStub(t *testing.T) {
	dir := t.TempDir()
	record := filepath.Join(dir, "calls.log")
	stub := testutil.WriteStubRecordingArgs(t, dir, "setup.exe", record)

	require.NoError(t, ExecRunner{}.Run(context.Background(), dir, stub, "/S"))
	assert.Equal(t, "setup.exe /S\n", testutil.ReadFile(t, record))

	failing := testutil.WriteStubWithExit(t, dir, "bad.exe", 2)
	require.Error(t, ExecRunner{}.Run(context.Background(), dir, failing))
}

func TestCleanEntryName(t *testing.T) {
	for raw, want := range map[string]string{
		"a/b.dll":      "a/b.dll",
		`a\b.dll`:      "a/b.dll",
		"./a//b.dll":   "a/b.dll",
		"dir/../x.dll": "x.dll",
		"./":           "",
	} {
		got, err := cleanEntryName(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
	for _, raw := range []string{"/abs.dll", "../x", `C:\x.dll`, "a/../../x"} {
		_, err := cleanEntryName(raw)
		assert.Error(t, err, raw)
	}
}
