package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/messages"
)

// datastream writes a single non-archive body into the workspace.
type datastream struct {
	sys System
}

func (s datastream) install(_ context.Context, t Target, p Payload) (Result, error) {
	placement := t.Addon.Placement
	workspace := placement.Workspace()
	if err := s.sys.MkdirAll(workspace, 0o755); err != nil {
		return Result{}, fmt.Errorf(messages.InstallCreateWorkspaceFmt, workspace, err)
	}

	alias := responseAlias(t, p)
	unpack := alias
	if placement.Replaceable() && !placement.Headless() {
		unpack = placement.DefaultNaming()
	}
	if chosen := t.Rules[alias]; chosen != "" {
		unpack = chosen
	}
	dest := filepath.Join(workspace, filepath.Base(unpack))
	if err := s.sys.WriteFileAtomic(dest, p.Data, fileMode(dest)); err != nil {
		return Result{}, &PartialWriteError{Path: dest, Err: err}
	}
	return Result{
		Naming:  map[string]string{alias: filepath.Base(unpack)},
		Written: []string{dest},
	}, nil
}

// responseAlias names the downloaded body: the server-suggested filename, else the first naming
// rule, else the pinned filename, else a name derived from the addon.
func responseAlias(t Target, p Payload) string {
	if p.Filename != "" {
		return filepath.Base(p.Filename)
	}
	if keys := sortedKeys(t.Rules); len(keys) > 0 {
		return keys[0]
	}
	if name := t.Addon.Placement.DefaultNaming(); name != "" {
		return name
	}
	suffix := ".exe"
	if t.Addon.Placement.Variant.IsLibrary() {
		suffix = ".dll"
	}
	return addon.Slug(t.Addon.Base.Name) + suffix
}

func fileMode(path string) os.FileMode {
	if filepath.Ext(path) == ".exe" {
		return 0o755
	}
	return 0o644
}
