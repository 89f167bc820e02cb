package install

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conn-castle/yaam/internal/console"
	"github.com/conn-castle/yaam/internal/messages"
)

const stagingPattern = ".yaam-staging-*"

// archive extracts into a staging directory inside the workspace, applies naming rules there and
// only then merges the result into the workspace.
type archive struct {
	sys System
	ex  extractor
	log *console.Logger
}

func (s archive) install(_ context.Context, t Target, p Payload) (Result, error) {
	entries, err := s.ex.read(p)
	if err != nil {
		return Result{}, err
	}
	workspace := t.Addon.Placement.Workspace()
	if err := s.sys.MkdirAll(workspace, 0o755); err != nil {
		return Result{}, fmt.Errorf(messages.InstallCreateWorkspaceFmt, workspace, err)
	}
	stage, err := s.sys.MkdirTemp(workspace, stagingPattern)
	if err != nil {
		return Result{}, fmt.Errorf(messages.InstallCreateStagingFmt, workspace, err)
	}
	defer func() {
		if err := s.sys.RemoveAll(stage); err != nil {
			s.log.Warnf(messages.InstallRemoveStagingFmt, stage, err)
		}
	}()

	root, err := s.ex.extract(entries, stage)
	if err != nil {
		return Result{}, err
	}
	naming, err := s.applyNaming(root, t)
	if err != nil {
		return Result{}, err
	}
	var written []string
	if err := s.merge(root, workspace, &written); err != nil {
		return Result{Naming: naming, Written: written}, err
	}
	return Result{Naming: naming, Written: written}, nil
}

// applyNaming renames top-level files of root. Explicit rules win; without any, a library placement
// pins the first file sharing its extension to the placement's filename.
func (s archive) applyNaming(root string, t Target) (map[string]string, error) {
	files, err := s.topLevelFiles(root)
	if err != nil {
		return nil, err
	}
	naming := map[string]string{}
	for _, name := range files {
		chosen := t.Rules[name]
		if chosen == "" {
			continue
		}
		chosen = filepath.Base(chosen)
		if err := s.rename(root, name, chosen); err != nil {
			return nil, err
		}
		naming[name] = chosen
	}
	if len(naming) > 0 {
		return naming, nil
	}

	placement := t.Addon.Placement
	if !placement.Replaceable() || placement.Headless() {
		return naming, nil
	}
	pinned := placement.DefaultNaming()
	ext := filepath.Ext(pinned)
	for _, name := range files {
		if !strings.EqualFold(filepath.Ext(name), ext) {
			continue
		}
		if err := s.rename(root, name, pinned); err != nil {
			return nil, err
		}
		naming[name] = pinned
		break
	}
	return naming, nil
}

func (s archive) rename(root string, from string, to string) error {
	if from == to {
		return nil
	}
	if err := s.sys.Rename(filepath.Join(root, from), filepath.Join(root, to)); err != nil {
		return fmt.Errorf(messages.InstallRenameEntryFmt, from, to, err)
	}
	return nil
}

func (s archive) topLevelFiles(dir string) ([]string, error) {
	entries, err := s.sys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf(messages.InstallListDirFmt, dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}

// merge moves everything under src into dst, replacing files and descending into directories.
func (s archive) merge(src string, dst string, written *[]string) error {
	entries, err := s.sys.ReadDir(src)
	if err != nil {
		return &PartialWriteError{Path: dst, Err: err}
	}
	for _, e := range entries {
		from := filepath.Join(src, e.Name())
		to := filepath.Join(dst, e.Name())
		if e.IsDir() {
			if info, err := s.sys.Stat(to); err == nil && !info.IsDir() {
				if err := s.sys.RemoveAll(to); err != nil {
					return &PartialWriteError{Path: to, Err: err}
				}
			}
			if err := s.sys.MkdirAll(to, 0o755); err != nil {
				return &PartialWriteError{Path: to, Err: err}
			}
			if err := s.merge(from, to, written); err != nil {
				return err
			}
			continue
		}
		if info, err := s.sys.Stat(to); err == nil && info.IsDir() {
			if err := s.sys.RemoveAll(to); err != nil {
				return &PartialWriteError{Path: to, Err: err}
			}
		} else if err != nil && !os.IsNotExist(err) {
			return &PartialWriteError{Path: to, Err: err}
		}
		if err := s.sys.Rename(from, to); err != nil {
			return &PartialWriteError{Path: to, Err: err}
		}
		*written = append(*written, to)
	}
	return nil
}
