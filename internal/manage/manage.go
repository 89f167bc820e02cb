// Package manage keeps addon files on disk consistent with the declared state between updates:
// it follows renamed naming rules and disables or restores addons by renaming their files.
package manage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/console"
	"github.com/conn-castle/yaam/internal/fsutil"
	"github.com/conn-castle/yaam/internal/messages"
	"github.com/conn-castle/yaam/internal/peinfo"
)

// DisabledSuffix is appended to the files of disabled library and plain-file addons.
const DisabledSuffix = ".disabled"

var (
	osRename    = os.Rename
	osRemoveAll = os.RemoveAll
)

// MetadataStore loads and saves per-addon metadata.
type MetadataStore interface {
	Load(r addon.Resolved) (addon.Metadata, error)
	Save(r addon.Resolved, md addon.Metadata) error
}

// InfoReader reads embedded version information of a binary.
type InfoReader func(path string) (peinfo.Info, error)

// Manager renames addon files. Failures are logged per addon and never abort the pass.
type Manager struct {
	store    MetadataStore
	readInfo InfoReader
	log      *console.Logger
}

// New returns a Manager reading binary info with peinfo.ReadFile.
func New(store MetadataStore, log *console.Logger) *Manager {
	return &Manager{store: store, readInfo: peinfo.ReadFile, log: log}
}

// ResolveRenames renames files whose physical name changed since the previous run and records the
// new names. Declared naming rules drive the change when present; otherwise a changed placement
// filename moves the recorded file of the same extension. It returns the number of files renamed.
func (m *Manager) ResolveRenames(list []addon.Resolved) int {
	renamed := 0
	for _, r := range list {
		md, err := m.store.Load(r)
		if err != nil {
			m.log.Warnf(messages.ManageMetadataFailedFmt, r.Name(), err)
			continue
		}
		variant := r.Placement.Variant
		stored := md.Naming(variant)
		if len(stored) == 0 {
			continue
		}
		workspace := r.Placement.Workspace()
		changed := false
		if len(r.Naming) > 0 {
			for _, entry := range sortedKeys(stored) {
				next, ok := r.Naming[entry]
				if !ok || next == "" || next == stored[entry] {
					continue
				}
				if m.rename(r, filepath.Join(workspace, stored[entry]), filepath.Join(workspace, next)) {
					renamed++
				}
				stored[entry] = next
				changed = true
			}
		} else if pinned := r.Placement.DefaultNaming(); pinned != "" {
			ext := filepath.Ext(pinned)
			for _, entry := range sortedKeys(stored) {
				prev := stored[entry]
				if prev == pinned || !strings.EqualFold(filepath.Ext(prev), ext) {
					continue
				}
				if m.rename(r, filepath.Join(workspace, prev), filepath.Join(workspace, pinned)) {
					renamed++
				}
				stored[entry] = pinned
				changed = true
				break
			}
		}
		if !changed {
			continue
		}
		md.SetNaming(variant, stored)
		if err := m.store.Save(r, md); err != nil {
			m.log.Warnf(messages.ManageMetadataFailedFmt, r.Name(), err)
		}
	}
	return renamed
}

// rename moves from to to when from exists. It reports whether a file was moved.
func (m *Manager) rename(r addon.Resolved, from string, to string) bool {
	if !fsutil.IsFile(from) {
		return false
	}
	if err := osRename(from, to); err != nil {
		m.log.Warnf(messages.ManageRenameFailedFmt, r.Name(), filepath.Base(from), filepath.Base(to), err)
		return false
	}
	m.log.Infof(messages.ManageRenamedFmt, r.Name(), filepath.Base(from), filepath.Base(to))
	return true
}

// namingRules lists the physical filenames the addon owns in its workspace: the recorded names
// carrying the variant's suffix, or the pinned filename when nothing was recorded.
func (m *Manager) namingRules(r addon.Resolved) []string {
	md, err := m.store.Load(r)
	if err != nil {
		m.log.Warnf(messages.ManageMetadataFailedFmt, r.Name(), err)
	}
	suffix := r.Placement.Variant.Suffix()
	seen := map[string]struct{}{}
	var names []string
	for _, name := range md.Naming(r.Placement.Variant) {
		if suffix != "" && !strings.EqualFold(filepath.Ext(name), suffix) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) == 0 && !r.Placement.Headless() {
		names = []string{r.Placement.DefaultNaming()}
	}
	return names
}

func (m *Manager) ownedPaths(r addon.Resolved) []string {
	workspace := r.Placement.Workspace()
	rules := m.namingRules(r)
	paths := make([]string, 0, len(rules))
	for _, name := range rules {
		paths = append(paths, filepath.Join(workspace, name))
	}
	return paths
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
