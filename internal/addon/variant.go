package addon

import (
	"fmt"
	"strings"
)

// Variant identifies the runtime flavour a placement is bound to (render backend, plain file, executable).
type Variant int

// Variants in declaration order. Synthesis and persistence iterate in this order.
const (
	VariantNone Variant = iota
	VariantFile
	VariantExe
	VariantAgnostic
	VariantD3D9
	VariantD3D10
	VariantD3D11
	VariantD3D12
	VariantVulkan
)

type variantInfo struct {
	signature string
	aliases   []string
	library   bool
	canShader bool
	shader    string
	suffix    string
}

var variantTable = [...]variantInfo{
	VariantNone:     {signature: "none"},
	VariantFile:     {signature: "file"},
	VariantExe:      {signature: "exe", suffix: ".exe"},
	VariantAgnostic: {signature: "any", aliases: []string{"agnostic"}, library: true, canShader: true, shader: "dxgi", suffix: ".dll"},
	VariantD3D9:     {signature: "d3d9", aliases: []string{"dx9"}, library: true, canShader: true, shader: "dxgi", suffix: ".dll"},
	VariantD3D10:    {signature: "d3d10", aliases: []string{"dx10"}, library: true, canShader: true, shader: "dxgi", suffix: ".dll"},
	VariantD3D11:    {signature: "d3d11", aliases: []string{"dx11"}, library: true, canShader: true, shader: "dxgi", suffix: ".dll"},
	VariantD3D12:    {signature: "d3d12", aliases: []string{"dx12"}, library: true, canShader: true, shader: "dxgi", suffix: ".dll"},
	VariantVulkan:   {signature: "vulkan", aliases: []string{"vk"}, library: true, canShader: true, shader: "vk", suffix: ".dll"},
}

// Variants returns every known variant in declaration order.
func Variants() []Variant {
	out := make([]Variant, 0, len(variantTable))
	for i := range variantTable {
		out = append(out, Variant(i))
	}
	return out
}

func (v Variant) info() variantInfo {
	if v < 0 || int(v) >= len(variantTable) {
		return variantTable[VariantNone]
	}
	return variantTable[v]
}

// String returns the preferred signature of the variant.
func (v Variant) String() string {
	return v.info().signature
}

// Aliases returns the alternative spellings accepted by ParseVariant.
func (v Variant) Aliases() []string {
	return append([]string(nil), v.info().aliases...)
}

// IsLibrary reports whether placements of this variant are replaceable libraries (.dll).
func (v Variant) IsLibrary() bool {
	return v.info().library
}

// CanShader reports whether a shader addon may be bound to this variant.
func (v Variant) CanShader() bool {
	return v.info().canShader
}

// ShaderName returns the conventional physical stem shader addons use for this variant.
func (v Variant) ShaderName() string {
	return v.info().shader
}

// Suffix returns the preferred file suffix, including the dot, or "" when unconstrained.
func (v Variant) Suffix() string {
	return v.info().suffix
}

// ParseVariant resolves a signature or alias, case-insensitively.
// Unknown values resolve to VariantNone with ok=false.
func ParseVariant(raw string) (Variant, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	for i, info := range variantTable {
		if key == info.signature {
			return Variant(i), true
		}
		for _, alias := range info.aliases {
			if key == alias {
				return Variant(i), true
			}
		}
	}
	return VariantNone, false
}

// MarshalText encodes the variant as its signature.
func (v Variant) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a signature or alias.
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, ok := ParseVariant(string(text))
	if !ok {
		return fmt.Errorf("unknown variant %q", string(text))
	}
	*v = parsed
	return nil
}
