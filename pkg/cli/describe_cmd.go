package cli

import (
	"fmt"
	"os"

	"github.com/reportsmith/reportsmith/pkg/smith"
	"github.com/spf13/cobra"
)

// NewDescribeCmd constructs the `describe` subcommand. It renders a report
// summary as markdown, or as HTML with --html, to stdout or to --output.
func NewDescribeCmd(deps *Deps) *cobra.Command {
	var (
		html   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "describe <name>",
		Short: "summarize a report's pages, visuals, and dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := deps.Store.Get(args[0])
			if err != nil {
				return err
			}

			doc := smith.DescribeMarkdown(r)
			if html {
				doc, err = smith.DescribeHTML(r)
				if err != nil {
					return err
				}
			}

			if output != "" {
				if err := os.WriteFile(output, []byte(doc), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), doc)
			return nil
		},
	}

	cmd.Flags().BoolVar(&html, "html", false, "render HTML instead of markdown")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	return cmd
}
