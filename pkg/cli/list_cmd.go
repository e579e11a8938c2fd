package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewListCmd(deps *Deps) *cobra.Command {
	var nameOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "list the reports under the configured root",

		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := deps.Store.List()
			for _, info := range infos {
				if nameOnly {
					fmt.Fprintln(cmd.OutOrStdout(), info.Name)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%s\n", info.Name, info.PageCount, info.Path)
			}
			if len(infos) == 0 {
				return fmt.Errorf("no reports found in %s", deps.Store.Root())
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&nameOnly, "name-only", false, "show only report names")

	return cmd
}
