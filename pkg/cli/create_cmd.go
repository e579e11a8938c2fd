package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCreateCmd constructs the `create` subcommand.
//
// Usage examples:
//
//	rsmith create quarterly_sales
//	rsmith -c ./rsmith.yaml create quarterly_sales
func NewCreateCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "create <name>",
		Short:   "create a new report from the baseline",
		Aliases: []string{"c"},
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := deps.Store.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), r.Path())
			return nil
		},
	}

	return cmd
}
