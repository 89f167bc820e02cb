package run

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/conn-castle/yaam/internal/addon"
	"github.com/conn-castle/yaam/internal/messages"
)

// Status renders the resolved addons as a table.
func Status(list []addon.Resolved) string {
	if len(list) == 0 {
		return messages.RunStatusEmpty
	}
	rows := make([][]string, 0, len(list))
	for _, r := range list {
		rows = append(rows, []string{
			r.Name(),
			r.Placement.Variant.String(),
			strconv.FormatBool(r.Placement.Enabled),
			strconv.FormatBool(r.Placement.Updateable),
			strconv.FormatBool(r.Base.IsShader),
			r.Placement.Path,
		})
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("NAME", "VARIANT", "ENABLED", "UPDATE", "SHADER", "PATH").
		Rows(rows...).
		String()
}
