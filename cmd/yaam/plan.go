package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/yaam/internal/messages"
	"github.com/conn-castle/yaam/internal/run"
)

func newPlanCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.PlanUse,
		Short: messages.PlanShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load(cmd)
			if err != nil {
				return err
			}
			diff := run.Plan(a.resolve())
			if diff == "" {
				diff = messages.RunPlanNoChanges
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), diff)
			return err
		},
	}
}
