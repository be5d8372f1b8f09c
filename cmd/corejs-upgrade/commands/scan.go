package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/corejs-upgrade/internal/core/domain"
	"go.trai.ch/zerr"
)

func (c *CLI) newScanCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "scan [entry...]",
		Short: "List legacy core-js imports reachable from the entry points",
		Long: `Scan follows every import from the entry points, including those inside
node_modules, and lists the core-js requests that need rewriting.
Entry points may be glob patterns and default to the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			imports, err := c.app.Scan(cmd.Context(), c.overrides(cmd, args))
			if err != nil {
				return err
			}
			if !strict {
				return nil
			}
			var unsupported int
			for _, li := range imports {
				if !li.Supported {
					unsupported++
				}
			}
			if unsupported > 0 {
				return zerr.With(domain.ErrUnsupportedRequest, "count", unsupported)
			}
			return nil
		},
	}
	addResolveFlags(cmd)
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when an import has no core-js 3 equivalent")
	return cmd
}
