// Package synth combines declared addons, placements and naming rules into the per-run list of
// resolved addons for the selected variant.
package synth

import (
	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/console"
	"github.com/conn-castle/yaam/internal/messages"
)

// Input is everything synthesis reads. It is never modified.
type Input struct {
	Bases      map[string]addon.Base
	Placements map[addon.Variant][]addon.Placement
	// Namings maps variant -> addon name -> declared naming rules.
	Namings  map[addon.Variant]map[string]map[string]string
	Selected addon.Variant
}

// Allowed reports whether placements of v may stay enabled when selected is the active variant.
func Allowed(v addon.Variant, selected addon.Variant) bool {
	switch v {
	case addon.VariantExe, addon.VariantAgnostic, addon.VariantFile, selected:
		return true
	default:
		return false
	}
}

// Synthesize returns one Resolved per placement, in variant declaration order then placement order.
// Placements of variants other than the selected one (and the always-allowed exe, file and agnostic
// variants) are disabled. At most one shader stays enabled: the first enabled one of the selected
// variant, else the first enabled agnostic one.
func Synthesize(in Input, log *console.Logger) []addon.Resolved {
	var out []addon.Resolved
	hasShader := false
	for _, v := range addon.Variants() {
		for _, p := range in.Placements[v] {
			p = p.Clone()
			p.Variant = v
			if !Allowed(v, in.Selected) {
				p.Enabled = false
			}
			base, ok := in.Bases[p.Name]
			if ok {
				base = base.Clone()
			} else {
				log.Debugf(messages.SynthPlaceholderFmt, p.Name)
				base = addon.Placeholder(p.Name)
			}
			hasShader = hasShader || base.IsShader
			out = append(out, addon.Resolved{
				Base:      base,
				Placement: p,
				Naming:    cloneNaming(in.Namings[v][p.Name]),
			})
		}
	}

	winner := -1
	for _, v := range []addon.Variant{in.Selected, addon.VariantAgnostic} {
		for i, r := range out {
			if r.Placement.Variant == v && r.IsEnabledShader() {
				winner = i
				break
			}
		}
		if winner >= 0 {
			break
		}
	}
	if winner >= 0 {
		log.Debugf(messages.SynthShaderSelectedFmt, out[winner].Name(), in.Selected)
	} else if hasShader {
		log.Debugf(messages.SynthNoShaderFmt, in.Selected)
	}
	for i := range out {
		if i != winner && out[i].IsEnabledShader() {
			log.Debugf(messages.SynthShaderSuppressedFmt, out[i].Key())
			out[i].Placement.Enabled = false
		}
	}
	return out
}

func cloneNaming(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
