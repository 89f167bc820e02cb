package manage

import (
	"path/filepath"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/fsutil"
	"github.com/conn-castle/yaam/internal/messages"
)

// disabledPath returns where a disabled copy of path lives for r, or "" when r is never toggled.
func disabledPath(r addon.Resolved, path string) string {
	switch {
	case r.Base.IsShader:
		return path + "." + r.Base.ShaderTag()
	case r.Placement.Replaceable():
		return path + DisabledSuffix
	default:
		return ""
	}
}

// Disable renames the files of every disabled addon out of the way. Shader files are only touched
// when they provably belong to the shader: it was the active shader of the previous run, or the
// binary's embedded info names it. It returns the number of files disabled.
func (m *Manager) Disable(current []addon.Resolved, previous []addon.Resolved) int {
	prevShader, hadPrev := addon.FindEnabledShader(previous)
	activeShader, hasActive := addon.FindEnabledShader(current)
	keptByActive := map[string]struct{}{}
	if hasActive && hadPrev && activeShader.Key() == prevShader.Key() {
		for _, path := range m.ownedPaths(activeShader) {
			keptByActive[path] = struct{}{}
		}
	}

	disabled := 0
	for _, r := range current {
		if r.Enabled() {
			continue
		}
		for _, path := range m.ownedPaths(r) {
			target := disabledPath(r, path)
			if target == "" || !fsutil.IsFile(path) {
				continue
			}
			if r.Base.IsShader {
				if _, kept := keptByActive[path]; kept {
					continue
				}
				wasActive := hadPrev && prevShader.Key() == r.Key()
				if !wasActive && !m.belongsTo(r, path) {
					m.log.Debugf(messages.ManageShaderNotMatchedFmt, r.Name(), filepath.Base(path))
					continue
				}
			}
			if fsutil.IsFile(target) {
				if err := osRemoveAll(target); err != nil {
					m.log.Warnf(messages.ManageRemoveFailedFmt, r.Name(), filepath.Base(target), err)
					continue
				}
			}
			if err := osRename(path, target); err != nil {
				m.log.Warnf(messages.ManageRenameFailedFmt, r.Name(), filepath.Base(path), filepath.Base(target), err)
				continue
			}
			m.log.Infof(messages.ManageDisabledFmt, r.Name(), filepath.Base(path))
			disabled++
		}
	}
	return disabled
}

// Restore renames the disabled files of every enabled addon back into place.
// It returns the number of files restored.
func (m *Manager) Restore(current []addon.Resolved) int {
	restored := 0
	for _, r := range current {
		if !r.Enabled() {
			continue
		}
		for _, path := range m.ownedPaths(r) {
			source := disabledPath(r, path)
			if source == "" || !fsutil.IsFile(source) {
				continue
			}
			if exists, _ := fsutil.Exists(path); exists {
				if r.Base.IsShader {
					m.log.Warnf(messages.ManageRestoreOccupiedFmt, r.Name(), filepath.Base(path), filepath.Base(source))
					continue
				}
				if err := osRemoveAll(source); err != nil {
					m.log.Warnf(messages.ManageRemoveFailedFmt, r.Name(), filepath.Base(source), err)
				} else {
					m.log.Debugf(messages.ManageStaleDisabledFmt, r.Name(), filepath.Base(source))
				}
				continue
			}
			if err := osRename(source, path); err != nil {
				m.log.Warnf(messages.ManageRenameFailedFmt, r.Name(), filepath.Base(source), filepath.Base(path), err)
				continue
			}
			m.log.Infof(messages.ManageRestoredFmt, r.Name(), filepath.Base(path))
			restored++
		}
	}
	return restored
}

func (m *Manager) belongsTo(r addon.Resolved, path string) bool {
	info, err := m.readInfo(path)
	if err != nil {
		m.log.Debugf(messages.ManageReadInfoFailedFmt, r.Name(), filepath.Base(path), err)
		return false
	}
	return matchesInfo(r.Base, info)
}
