package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.trai.ch/corejs-upgrade/internal/app"
)

// overrides collects the values of flags the user actually set.
func (c *CLI) overrides(cmd *cobra.Command, entries []string) app.BuildOverrides {
	flags := cmd.Flags()
	o := app.BuildOverrides{
		ConfigPath:  c.configPath,
		EntryPoints: entries,
		Outdir:      changedString(flags, "outdir"),
		Outfile:     changedString(flags, "outfile"),
		Format:      changedString(flags, "format"),
		Platform:    changedString(flags, "platform"),
		Target:      changedString(flags, "target"),
		Minify:      changedBool(flags, "minify"),
		Sourcemap:   changedBool(flags, "sourcemap"),
		ResolveFrom: changedString(flags, "resolve-from"),
	}
	if flags.Changed("external") {
		o.External, _ = flags.GetStringSlice("external")
	}
	return o
}

func changedString(flags *pflag.FlagSet, name string) *string {
	if flags.Lookup(name) == nil || !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetString(name)
	return &v
}

func changedBool(flags *pflag.FlagSet, name string) *bool {
	if flags.Lookup(name) == nil || !flags.Changed(name) {
		return nil
	}
	v, _ := flags.GetBool(name)
	return &v
}

// addResolveFlags registers the flags that affect how imports are found.
func addResolveFlags(cmd *cobra.Command) {
	cmd.Flags().String("resolve-from", "", `Resolve core-js from this directory ("false" uses the importing file)`)
	cmd.Flags().String("platform", "", "Target platform: browser, node or neutral")
	cmd.Flags().StringSlice("external", nil, "Module paths to leave unbundled")
}
