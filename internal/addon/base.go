package addon

import "strings"

// Base is the variant-agnostic declared identity of an addon.
type Base struct {
	Name         string   `json:"name"`
	URI          string   `json:"uri,omitempty"`
	Description  string   `json:"description,omitempty"`
	Contributors []string `json:"contribs,omitempty"`
	Dependencies []string `json:"dependencies,omitempty"`
	Chainloads   []string `json:"chainloads,omitempty"`
	IsShader     bool     `json:"is_shader,omitempty"`
	IsInstaller  bool     `json:"is_installer,omitempty"`
}

// Placeholder returns the base synthesized for a placement that references no declared addon.
func Placeholder(name string) Base {
	return Base{Name: name}
}

// Clone returns a deep copy of b.
func (b Base) Clone() Base {
	out := b
	out.Contributors = cloneStrings(b.Contributors)
	out.Dependencies = cloneStrings(b.Dependencies)
	out.Chainloads = cloneStrings(b.Chainloads)
	return out
}

// Slug returns the file-system friendly form of the addon name ("Arc DPS" -> "arc_dps").
func (b Base) Slug() string {
	return Slug(b.Name)
}

// ShaderTag returns the addon-specific suffix tag used when disabling a shader ("Re Shade" -> "reshade").
func (b Base) ShaderTag() string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(b.Name)), " ", "")
}

// Slug lowercases name and replaces spaces with underscores.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneNaming(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
