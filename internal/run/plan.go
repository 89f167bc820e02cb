package run

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aymanbagabas/go-udiff"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/messages"
)

// Plan renders the difference between the last run and the next one as a unified diff.
// It returns "" when nothing changed.
func Plan(previous addon.Snapshot, current addon.Snapshot) string {
	return strings.TrimSpace(udiff.Unified(
		messages.RunPlanPreviousLabel,
		messages.RunPlanCurrentLabel,
		render(previous),
		render(current),
	))
}

func render(s addon.Snapshot) string {
	if len(s.Addons) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "variant %s\n", s.Variant)
	for _, r := range s.Addons {
		fmt.Fprintf(&b, "%s enabled=%t update=%t path=%s\n", r.Key(), r.Placement.Enabled, r.Placement.Updateable, r.Placement.Path)
		if len(r.Placement.Args) > 0 {
			fmt.Fprintf(&b, "  args %s\n", strings.Join(r.Placement.Args, " "))
		}
		entries := make([]string, 0, len(r.Naming))
		for k := range r.Naming {
			entries = append(entries, k)
		}
		sort.Strings(entries)
		for _, k := range entries {
			fmt.Fprintf(&b, "  naming %s -> %s\n", k, r.Naming[k])
		}
	}
	return b.String()
}
