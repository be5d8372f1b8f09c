package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/corejs-upgrade/internal/core/domain"
)

func (c *CLI) newBuildCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "build [entry...]",
		Short: "Bundle the entry points with legacy core-js imports upgraded",
		Long: `Build bundles the entry points with esbuild. Requests for core-js 2 paths
that fail to resolve are rewritten to their core-js 3 equivalent.
Flags override the values from the config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Build(cmd.Context(), c.overrides(cmd, args), watch)
		},
	}
	addResolveFlags(cmd)
	cmd.Flags().String("outdir", "", "Output directory (default "+domain.DefaultOutdir+")")
	cmd.Flags().String("outfile", "", "Output file for a single entry point")
	cmd.Flags().String("format", "", "Output format: esm, cjs or iife")
	cmd.Flags().String("target", "", "Language target, e.g. es2017")
	cmd.Flags().Bool("minify", false, "Minify the output")
	cmd.Flags().Bool("sourcemap", false, "Emit linked source maps")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild when source files change")
	return cmd
}
