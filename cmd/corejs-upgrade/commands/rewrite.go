package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newRewriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rewrite <request...>",
		Short: "Show the core-js 3 path for legacy core-js requests",
		Example: `  corejs-upgrade rewrite core-js/modules/es6.promise
  corejs-upgrade rewrite core-js/library/fn/object/assign --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			_, err := c.app.Rewrite(args)
			return err
		},
	}
}
