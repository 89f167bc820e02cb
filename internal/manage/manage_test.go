package manage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/console"
	"github.com/conn-castle/yaam/internal/metadata"
	"github.com/conn-castle/yaam/internal/peinfo"
	"github.com/conn-castle/yaam/internal/testutil"
)

type fixture struct {
	game  string
	store *metadata.Store
	mgr   *Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := metadata.NewStore(t.TempDir(), nil, console.Discard())
	return &fixture{game: t.TempDir(), store: store, mgr: New(store, console.Discard())}
}

func (f *fixture) lib(name string, file string, enabled bool) addon.Resolved {
	return addon.Resolved{
		Base:      addon.Base{Name: name},
		Placement: addon.Placement{Name: name, Variant: addon.VariantD3D11, Path: filepath.Join(f.game, file), Enabled: enabled, Updateable: true},
	}
}

func (f *fixture) shader(name string, enabled bool) addon.Resolved {
	r := f.lib(name, "dxgi.dll", enabled)
	r.Base.IsShader = true
	return r
}

func (f *fixture) path(name string) string {
	return filepath.Join(f.game, name)
}

func TestResolveRenamesFollowsPinnedFilename(t *testing.T) {
	f := newFixture(t)
	r := f.lib("ArcDPS", "arcdps.dll", true)
	testutil.WriteFile(t, f.path("arc.dll"), "dll")
	md := addon.Metadata{HashSignature: "h"}
	md.SetNaming(addon.VariantD3D11, map[string]string{"ArcDPS.dll": "arc.dll"})
	require.NoError(t, f.store.Save(r, md))

	assert.Equal(t, 1, f.mgr.ResolveRenames([]addon.Resolved{r}))
	assert.NoFileExists(t, f.path("arc.dll"))
	assert.Equal(t, "dll", testutil.ReadFile(t, f.path("arcdps.dll")))

	got, err := f.store.Load(r)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ArcDPS.dll": "arcdps.dll"}, got.Naming(addon.VariantD3D11))
	assert.Equal(t, 0, f.mgr.ResolveRenames([]addon.Resolved{r}))
}

func TestResolveRenamesDeclaredRulesWin(t *testing.T) {
	f := newFixture(t)
	r := f.lib("ArcDPS", "arc.dll", true)
	r.Naming = map[string]string{"ArcDPS.dll": "gw2addon_arc.dll"}
	testutil.WriteFile(t, f.path("arc.dll"), "dll")
	md := addon.Metadata{}
	md.SetNaming(addon.VariantD3D11, map[string]string{"ArcDPS.dll": "arc.dll"})
	require.NoError(t, f.store.Save(r, md))

	assert.Equal(t, 1, f.mgr.ResolveRenames([]addon.Resolved{r}))
	assert.FileExists(t, f.path("gw2addon_arc.dll"))

	got, err := f.store.Load(r)
	require.NoError(t, err)
	assert.Equal(t, "gw2addon_arc.dll", got.Naming(addon.VariantD3D11)["ArcDPS.dll"])
}

func TestResolveRenamesMissingFileStillRecordsNewName(t *testing.T) {
	f := newFixture(t)
	r := f.lib("ArcDPS", "arcdps.dll", true)
	md := addon.Metadata{}
	md.SetNaming(addon.VariantD3D11, map[string]string{"ArcDPS.dll": "arc.dll"})
	require.NoError(t, f.store.Save(r, md))

	assert.Equal(t, 0, f.mgr.ResolveRenames([]addon.Resolved{r}))
	got, err := f.store.Load(r)
	require.NoError(t, err)
	assert.Equal(t, "arcdps.dll", got.Naming(addon.VariantD3D11)["ArcDPS.dll"])
}

func TestResolveRenamesWithoutHistoryDoesNothing(t *testing.T) {
	f := newFixture(t)
	r := f.lib("ArcDPS", "arc.dll", true)
	assert.Equal(t, 0, f.mgr.ResolveRenames([]addon.Resolved{r}))
	assert.NoFileExists(t, f.store.Path("ArcDPS"))
}

func TestDisableAndRestoreLibrary(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.path("arc.dll"), "dll")
	off := f.lib("ArcDPS", "arc.dll", false)

	assert.Equal(t, 1, f.mgr.Disable([]addon.Resolved{off}, nil))
	assert.NoFileExists(t, f.path("arc.dll"))
	assert.Equal(t, "dll", testutil.ReadFile(t, f.path("arc.dll.disabled")))

	assert.Equal(t, 0, f.mgr.Disable([]addon.Resolved{off}, nil), "already disabled")

	on := f.lib("ArcDPS", "arc.dll", true)
	assert.Equal(t, 1, f.mgr.Restore([]addon.Resolved{on}))
	assert.Equal(t, "dll", testutil.ReadFile(t, f.path("arc.dll")))
	assert.NoFileExists(t, f.path("arc.dll.disabled"))
}

func TestDisableUsesRecordedNames(t *testing.T) {
	f := newFixture(t)
	r := f.lib("ArcDPS", "arc.dll", false)
	md := addon.Metadata{}
	md.SetNaming(addon.VariantD3D11, map[string]string{"ArcDPS.dll": "arc.dll", "ArcDPS.txt": "readme.txt", "extra.dll": "arc_extra.dll"})
	require.NoError(t, f.store.Save(r, md))
	testutil.WriteFile(t, f.path("arc.dll"), "a")
	testutil.WriteFile(t, f.path("arc_extra.dll"), "b")
	testutil.WriteFile(t, f.path("readme.txt"), "c")

	assert.Equal(t, 2, f.mgr.Disable([]addon.Resolved{r}, nil))
	assert.FileExists(t, f.path("arc.dll.disabled"))
	assert.FileExists(t, f.path("arc_extra.dll.disabled"))
	assert.FileExists(t, f.path("readme.txt"), "files outside the variant suffix stay")
}

func TestDisableReplacesStaleDisabledCopy(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.path("arc.dll"), "new")
	testutil.WriteFile(t, f.path("arc.dll.disabled"), "old")

	assert.Equal(t, 1, f.mgr.Disable([]addon.Resolved{f.lib("ArcDPS", "arc.dll", false)}, nil))
	assert.Equal(t, "new", testutil.ReadFile(t, f.path("arc.dll.disabled")))
	assert.NoFileExists(t, f.path("arc.dll"))
}

func TestRestoreDropsStaleDisabledWhenActiveExists(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.path("arc.dll"), "active")
	testutil.WriteFile(t, f.path("arc.dll.disabled"), "stale")

	assert.Equal(t, 0, f.mgr.Restore([]addon.Resolved{f.lib("ArcDPS", "arc.dll", true)}))
	assert.Equal(t, "active", testutil.ReadFile(t, f.path("arc.dll")))
	assert.NoFileExists(t, f.path("arc.dll.disabled"))
}

func TestExeAddonsAreNeverToggled(t *testing.T) {
	f := newFixture(t)
	r := addon.Resolved{
		Base:      addon.Base{Name: "Tool"},
		Placement: addon.Placement{Name: "Tool", Variant: addon.VariantExe, Path: f.path("tool.exe")},
	}
	testutil.WriteFile(t, f.path("tool.exe"), "x")
	assert.Equal(t, 0, f.mgr.Disable([]addon.Resolved{r}, nil))
	assert.FileExists(t, f.path("tool.exe"))
}

func TestShaderSwitchUsesPreviousActiveShader(t *testing.T) {
	f := newFixture(t)
	f.mgr.readInfo = func(string) (peinfo.Info, error) { return peinfo.Info{}, nil }
	testutil.WriteFile(t, f.path("dxgi.dll"), "reshade")
	testutil.WriteFile(t, f.path("dxgi.dll.gshade"), "gshade")

	previous := []addon.Resolved{f.shader("ReShade", true), f.shader("GShade", false)}
	current := []addon.Resolved{f.shader("ReShade", false), f.shader("GShade", true)}

	assert.Equal(t, 1, f.mgr.Disable(current, previous))
	assert.Equal(t, "reshade", testutil.ReadFile(t, f.path("dxgi.dll.reshade")))
	assert.Equal(t, 1, f.mgr.Restore(current))
	assert.Equal(t, "gshade", testutil.ReadFile(t, f.path("dxgi.dll")))
	assert.NoFileExists(t, f.path("dxgi.dll.gshade"))
}

func TestShaderDisableRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.path("dxgi.dll"), "someone else")
	f.mgr.readInfo = func(string) (peinfo.Info, error) {
		return peinfo.Info{peinfo.CompanyName: "Unrelated Corp"}, nil
	}

	assert.Equal(t, 0, f.mgr.Disable([]addon.Resolved{f.shader("ReShade", false)}, nil))
	assert.FileExists(t, f.path("dxgi.dll"))

	f.mgr.readInfo = func(string) (peinfo.Info, error) { return nil, errors.New("unreadable") }
	assert.Equal(t, 0, f.mgr.Disable([]addon.Resolved{f.shader("ReShade", false)}, nil))
	assert.FileExists(t, f.path("dxgi.dll"))
}

func TestShaderDisableByEmbeddedInfo(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.path("dxgi.dll"), string(testutil.PEWithVersionInfo(map[string]string{
		peinfo.ProductName: "ReShade",
		peinfo.CompanyName: "crosire",
	})))

	assert.Equal(t, 1, f.mgr.Disable([]addon.Resolved{f.shader("ReShade", false)}, nil))
	assert.FileExists(t, f.path("dxgi.dll.reshade"))
}

func TestShaderDisableKeepsStillActiveShaderFile(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.path("dxgi.dll"), "gshade")
	f.mgr.readInfo = func(string) (peinfo.Info, error) {
		return peinfo.Info{peinfo.ProductName: "GShade, a ReShade fork"}, nil
	}
	previous := []addon.Resolved{f.shader("GShade", true)}
	current := []addon.Resolved{f.shader("ReShade", false), f.shader("GShade", true)}

	assert.Equal(t, 0, f.mgr.Disable(current, previous))
	assert.Equal(t, "gshade", testutil.ReadFile(t, f.path("dxgi.dll")))
}

func TestShaderRestoreNeverOverwritesAnotherShader(t *testing.T) {
	f := newFixture(t)
	testutil.WriteFile(t, f.path("dxgi.dll"), "other")
	testutil.WriteFile(t, f.path("dxgi.dll.reshade"), "reshade")

	assert.Equal(t, 0, f.mgr.Restore([]addon.Resolved{f.shader("ReShade", true)}))
	assert.Equal(t, "other", testutil.ReadFile(t, f.path("dxgi.dll")))
	assert.FileExists(t, f.path("dxgi.dll.reshade"))
}

func TestMatchesInfo(t *testing.T) {
	base := addon.Base{Name: "ArcDPS", Contributors: []string{"deltaconnected"}}
	cases := []struct {
		name string
		info peinfo.Info
		want bool
	}{
		{"product", peinfo.Info{peinfo.ProductName: "arcdps"}, true},
		{"description", peinfo.Info{peinfo.FileDescription: "ARCDPS combat log"}, true},
		{"company is contributor", peinfo.Info{peinfo.CompanyName: "DeltaConnected"}, true},
		{"contributor in description", peinfo.Info{peinfo.FileDescription: "by deltaconnected"}, true},
		{"company inside name", peinfo.Info{peinfo.CompanyName: "Arc"}, true},
		{"unrelated", peinfo.Info{peinfo.CompanyName: "crosire", peinfo.ProductName: "ReShade"}, false},
		{"empty", peinfo.Info{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, matchesInfo(base, tc.info))
		})
	}
	assert.False(t, matchesInfo(addon.Base{}, peinfo.Info{peinfo.ProductName: "x"}))
}
