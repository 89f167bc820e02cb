package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/yaam/internal/messages"
	"github.com/conn-castle/yaam/internal/run"
)

func newStatusCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   messages.StatusUse,
		Short: messages.StatusShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.load(cmd)
			if err != nil {
				return err
			}
			_, current := a.resolve()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), run.Status(current.Addons))
			return err
		},
	}
}
