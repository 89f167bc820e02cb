package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/console"
	"github.com/conn-castle/yaam/internal/messages"
	"github.com/conn-castle/yaam/internal/synth"
)

// Declaration file names inside the data directory.
const (
	AddonsFile   = "addons.json"
	SettingsFile = "settings.json"
	NamingsFile  = "namings.json"
)

type addonsDocument struct {
	Addons []addon.Base `json:"addons"`
}

type settingsDocument struct {
	Bindings map[string][]addon.Placement `json:"bindings"`
}

type namingsDocument struct {
	Namings map[string][]namingEntry `json:"namings"`
}

type namingEntry struct {
	Addon  string            `json:"addon"`
	Naming map[string]string `json:"naming"`
}

// LoadDeclarations reads the declaration files under c.Paths.DataDir into a synthesis input for
// c.Variant(). Missing files count as empty and unreadable files wrap ErrConfigLoad. Entries that
// cannot be used (no name, unknown variant group) are skipped with a warning. Variant groups are
// walked in key order so alias spellings of one variant always merge the same way.
func (c *Config) LoadDeclarations(log *console.Logger) (synth.Input, error) {
	in := synth.Input{
		Bases:      map[string]addon.Base{},
		Placements: map[addon.Variant][]addon.Placement{},
		Namings:    map[addon.Variant]map[string]map[string]string{},
		Selected:   c.Variant(),
	}

	var addons addonsDocument
	if err := readDeclaration(filepath.Join(c.Paths.DataDir, AddonsFile), &addons, log); err != nil {
		return synth.Input{}, err
	}
	for i, b := range addons.Addons {
		b.Name = strings.TrimSpace(b.Name)
		if b.Name == "" {
			log.Warnf(messages.ConfigDeclarationNoNameFmt, AddonsFile, i)
			continue
		}
		if _, dup := in.Bases[b.Name]; dup {
			log.Warnf(messages.ConfigDeclarationDupFmt, AddonsFile, b.Name)
		}
		in.Bases[b.Name] = b
	}

	var settings settingsDocument
	if err := readDeclaration(filepath.Join(c.Paths.DataDir, SettingsFile), &settings, log); err != nil {
		return synth.Input{}, err
	}
	for _, raw := range sortedKeys(settings.Bindings) {
		v, ok := addon.ParseVariant(raw)
		if !ok {
			log.Warnf(messages.ConfigDeclarationVariantFmt, SettingsFile, raw)
			continue
		}
		for i, p := range settings.Bindings[raw] {
			p.Name = strings.TrimSpace(p.Name)
			if p.Name == "" {
				log.Warnf(messages.ConfigPlacementNoNameFmt, SettingsFile, i, raw)
				continue
			}
			p.Variant = v
			path, err := c.placementPath(p, in.Bases[p.Name], log)
			if err != nil {
				log.Warnf(messages.ConfigPlacementSkippedFmt, SettingsFile, p.Key(), err)
				continue
			}
			p.Path = path
			in.Placements[v] = append(in.Placements[v], p)
		}
	}

	var namings namingsDocument
	if err := readDeclaration(filepath.Join(c.Paths.DataDir, NamingsFile), &namings, log); err != nil {
		return synth.Input{}, err
	}
	for _, raw := range sortedKeys(namings.Namings) {
		v, ok := addon.ParseVariant(raw)
		if !ok {
			log.Warnf(messages.ConfigDeclarationVariantFmt, NamingsFile, raw)
			continue
		}
		for _, e := range namings.Namings[raw] {
			if e.Addon == "" || len(e.Naming) == 0 {
				continue
			}
			if in.Namings[v] == nil {
				in.Namings[v] = map[string]map[string]string{}
			}
			in.Namings[v][e.Addon] = e.Naming
		}
	}
	return in, nil
}

// placementPath makes p.Path absolute against the host install directory. Shader bases bound to
// a shader-capable variant without a path default to the variant's shader file; other empty paths
// default to a workspace directory named after the addon.
func (c *Config) placementPath(p addon.Placement, base addon.Base, log *console.Logger) (string, error) {
	raw := strings.TrimSpace(p.Path)
	if raw == "" {
		var def string
		if base.IsShader && p.Variant.CanShader() {
			v := p.Variant
			if v == addon.VariantAgnostic && c.Variant().CanShader() {
				v = c.Variant()
			}
			def = filepath.Join(c.Host.InstallDir, v.ShaderName()+v.Suffix())
		} else {
			def = filepath.Join(c.Host.InstallDir, "addons", addon.Slug(p.Name))
		}
		log.Debugf(messages.ConfigPlacementDefaultPathFmt, p.Key(), def)
		return def, nil
	}
	expanded, err := homedirExpand(raw)
	if err != nil {
		return "", fmt.Errorf(messages.ConfigExpandPathFmt, raw, err)
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(c.Host.InstallDir, expanded)
	}
	return filepath.Clean(expanded), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// readDeclaration decodes the JSON file at path into out. A missing file leaves out untouched.
func readDeclaration(path string, out any, log *console.Logger) error {
	data, err := osReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debugf(messages.ConfigDeclarationMissingFmt, path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: "+messages.ConfigDeclarationReadFmt, ErrConfigLoad, path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: "+messages.ConfigDeclarationDecodeFmt, ErrConfigLoad, path, err)
	}
	return nil
}
