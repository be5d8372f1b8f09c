// Package commands implements the CLI commands for corejs-upgrade.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/corejs-upgrade/internal/app"
	"go.trai.ch/corejs-upgrade/internal/build"
	"go.trai.ch/corejs-upgrade/internal/core/domain"
)

// CLI represents the command line interface for corejs-upgrade.
type CLI struct {
	app        Application
	rootCmd    *cobra.Command
	configPath string
	jsonOutput bool
	verbose    bool
}

// Application represents the application logic interface.
type Application interface {
	Rewrite(requests []string) ([]app.RewriteResult, error)
	Scan(ctx context.Context, o app.BuildOverrides) ([]domain.LegacyImport, error)
	Build(ctx context.Context, o app.BuildOverrides, watch bool) error
	SetJSON(enable bool)
	SetVerbose(enable bool)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	c := &CLI{app: a}

	rootCmd := &cobra.Command{
		Use:           "corejs-upgrade",
		Short:         "Bundle projects whose dependencies still import core-js 2 paths",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			c.app.SetJSON(c.jsonOutput)
			c.app.SetVerbose(c.verbose)
		},
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "",
		"Path to the config file (default "+domain.ConfigFileName+")")
	rootCmd.PersistentFlags().BoolVar(&c.jsonOutput, "json", false, "Print reports and logs as JSON")
	rootCmd.PersistentFlags().BoolVar(&c.verbose, "verbose", false, "Log every core-js resolution")

	c.rootCmd = rootCmd

	rootCmd.AddCommand(c.newRewriteCmd())
	rootCmd.AddCommand(c.newScanCmd())
	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
