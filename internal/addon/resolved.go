package addon

import "fmt"

// Key identifies a placement: one addon under one variant.
type Key struct {
	Name    string
	Variant Variant
}

func (k Key) String() string {
	return fmt.Sprintf("%s(%s)", k.Name, k.Variant)
}

// Resolved is the per-run synthesis of a Base, one of its placements and the declared naming rules.
// It is recomputed every run and only persisted as the last-run snapshot.
type Resolved struct {
	Base      Base              `json:"base"`
	Placement Placement         `json:"placement"`
	Naming    map[string]string `json:"naming,omitempty"`
}

// Key returns the stable identity of the resolved addon.
func (r Resolved) Key() Key {
	return r.Placement.Key()
}

// Name returns the addon name.
func (r Resolved) Name() string {
	return r.Base.Name
}

// Enabled reports whether the placement is enabled for this run.
func (r Resolved) Enabled() bool {
	return r.Placement.Enabled
}

// IsEnabledShader reports whether r is an enabled shader addon.
func (r Resolved) IsEnabledShader() bool {
	return r.Base.IsShader && r.Placement.Enabled
}

// Clone returns a deep copy of r.
func (r Resolved) Clone() Resolved {
	return Resolved{
		Base:      r.Base.Clone(),
		Placement: r.Placement.Clone(),
		Naming:    cloneNaming(r.Naming),
	}
}

// CloneAll deep-copies a resolved list.
func CloneAll(in []Resolved) []Resolved {
	if in == nil {
		return nil
	}
	out := make([]Resolved, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// FindEnabledShader returns the first enabled shader in list.
func FindEnabledShader(list []Resolved) (Resolved, bool) {
	for _, r := range list {
		if r.IsEnabledShader() {
			return r, true
		}
	}
	return Resolved{}, false
}
