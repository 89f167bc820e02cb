package addon

import "path/filepath"

// Placement binds an addon to an on-disk location under one variant.
// A path without an extension denotes a workspace directory ("headless" placement).
type Placement struct {
	Name       string   `json:"name"`
	Variant    Variant  `json:"variant,omitempty"`
	Path       string   `json:"path"`
	Args       []string `json:"args,omitempty"`
	Enabled    bool     `json:"enabled"`
	Updateable bool     `json:"update"`
}

// Key returns the stable identity of the placement.
func (p Placement) Key() Key {
	return Key{Name: p.Name, Variant: p.Variant}
}

// Clone returns a deep copy of p.
func (p Placement) Clone() Placement {
	out := p
	out.Args = cloneStrings(p.Args)
	return out
}

// Headless reports whether the placement points to a directory rather than a file.
func (p Placement) Headless() bool {
	return filepath.Ext(p.Path) == ""
}

// Workspace returns the directory the addon content lives in.
func (p Placement) Workspace() string {
	if p.Headless() {
		return p.Path
	}
	return filepath.Dir(p.Path)
}

// DefaultNaming returns the pinned physical filename, or "" for headless placements.
func (p Placement) DefaultNaming() string {
	if p.Headless() {
		return ""
	}
	return filepath.Base(p.Path)
}

// DefaultStem returns DefaultNaming without its extension.
func (p Placement) DefaultStem() string {
	name := p.DefaultNaming()
	return name[:len(name)-len(filepath.Ext(name))]
}

// Replaceable reports whether the placement's files may be renamed (libraries and plain files).
func (p Placement) Replaceable() bool {
	return p.Variant.IsLibrary() || p.Variant == VariantFile
}
