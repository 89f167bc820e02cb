package install

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/console"
	"github.com/conn-castle/yaam/internal/messages"
)

const installerDir = "installer"

// setup runs a vendor installer (.exe or .msi), shipped raw or inside an archive,
// from a scratch directory in the workspace that is always removed afterwards.
type setup struct {
	sys    System
	ex     extractor
	runner Runner
	log    *console.Logger
}

func (s setup) install(ctx context.Context, t Target, p Payload) (Result, error) {
	workspace := t.Addon.Placement.Workspace()
	dir := filepath.Join(workspace, installerDir)
	if err := s.sys.RemoveAll(dir); err != nil {
		return Result{}, fmt.Errorf(messages.InstallCreateStagingFmt, workspace, err)
	}
	if err := s.sys.MkdirAll(dir, 0o755); err != nil {
		return Result{}, fmt.Errorf(messages.InstallCreateStagingFmt, workspace, err)
	}
	defer func() {
		if err := s.sys.RemoveAll(dir); err != nil {
			s.log.Warnf(messages.InstallRemoveStagingFmt, dir, err)
		}
	}()

	lookup := dir
	if p.Format != FormatNone {
		entries, err := s.ex.read(p)
		if err != nil {
			return Result{}, err
		}
		if lookup, err = s.ex.extract(entries, dir); err != nil {
			return Result{}, err
		}
	} else {
		name := filepath.Base(p.Filename)
		if p.Filename == "" {
			name = addon.Slug(t.Addon.Base.Name) + ".exe"
		}
		if err := s.sys.WriteFileAtomic(filepath.Join(dir, name), p.Data, 0o755); err != nil {
			return Result{}, &PartialWriteError{Path: filepath.Join(dir, name), Err: err}
		}
	}

	exe, err := s.find(lookup)
	if err != nil {
		return Result{}, err
	}
	s.log.Infof(messages.InstallRunningInstallerFmt, filepath.Base(exe))
	if strings.EqualFold(filepath.Ext(exe), ".msi") {
		err = s.runner.Run(ctx, dir, "msiexec", "/i", exe)
	} else {
		err = s.runner.Run(ctx, dir, exe)
	}
	if err != nil {
		return Result{}, fmt.Errorf(messages.InstallInstallerRunFmt, filepath.Base(exe), err)
	}
	return Result{}, nil
}

// find prefers a file whose name mentions "installer" or "setup", then the first .exe or .msi.
func (s setup) find(dir string) (string, error) {
	entries, err := s.sys.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf(messages.InstallListDirFmt, dir, err)
	}
	fallback := ""
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		lower := strings.ToLower(e.Name())
		ext := filepath.Ext(lower)
		if ext != ".exe" && ext != ".msi" {
			continue
		}
		if strings.Contains(lower, "installer") || strings.Contains(lower, "setup") {
			return filepath.Join(dir, e.Name()), nil
		}
		if fallback == "" {
			fallback = filepath.Join(dir, e.Name())
		}
	}
	if fallback == "" {
		return "", fmt.Errorf(messages.InstallInstallerNotFoundFmt, dir)
	}
	return fallback, nil
}
