package domain

import (
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// ResolveFrom selects how module requests are resolved. The zero value means
// "use the host bundler's standard resolution"; any other value roots
// resolution at that directory.
type ResolveFrom string

// Enabled reports whether resolution is rooted at a configured directory.
func (r ResolveFrom) Enabled() bool {
	return r != ""
}

// String returns the directory, or "false" when resolution is not rooted.
func (r ResolveFrom) String() string {
	if !r.Enabled() {
		return "false"
	}
	return string(r)
}

// UnmarshalYAML accepts either the boolean false or a directory string.
func (r *ResolveFrom) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return zerr.With(ErrInvalidResolveFrom, "line", node.Line)
	}
	switch node.Tag {
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return zerr.Wrap(err, ErrInvalidResolveFrom.Error())
		}
		if b {
			return zerr.With(ErrInvalidResolveFrom, "value", node.Value)
		}
		*r = ""
		return nil
	case "!!null":
		*r = ""
		return nil
	case "!!str":
		*r = ResolveFrom(node.Value)
		return nil
	default:
		return zerr.With(ErrInvalidResolveFrom, "value", node.Value)
	}
}

// MarshalYAML renders an unset value as false.
func (r ResolveFrom) MarshalYAML() (any, error) {
	if !r.Enabled() {
		return false, nil
	}
	return string(r), nil
}

// Options configures a plugin instance.
type Options struct {
	// ResolveFrom roots module resolution at a directory when set.
	ResolveFrom ResolveFrom `yaml:"resolveFrom"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{ResolveFrom: ""}
}

// Merge returns a copy of o with every set field of override applied.
func (o Options) Merge(override Options) Options {
	merged := o
	if override.ResolveFrom.Enabled() {
		merged.ResolveFrom = override.ResolveFrom
	}
	return merged
}

// Format is the output module format of a build.
type Format string

const (
	// FormatESM emits ES modules.
	FormatESM Format = "esm"
	// FormatCJS emits CommonJS.
	FormatCJS Format = "cjs"
	// FormatIIFE emits an immediately invoked function expression.
	FormatIIFE Format = "iife"
)

// Platform is the target platform of a build.
type Platform string

const (
	// PlatformBrowser targets browsers.
	PlatformBrowser Platform = "browser"
	// PlatformNode targets node.
	PlatformNode Platform = "node"
	// PlatformNeutral targets neither.
	PlatformNeutral Platform = "neutral"
)

// BuildOptions describes a bundling run with the upgrade plugin installed.
type BuildOptions struct {
	Options

	// WorkingDir is the absolute directory entry points and outputs are relative to.
	WorkingDir string
	// EntryPoints are file paths or doublestar patterns.
	EntryPoints []string
	Outdir      string
	Outfile     string
	Format      Format
	Platform    Platform
	Target      string
	Minify      bool
	Sourcemap   bool
	External    []string
}

// Validate checks that the options describe a runnable build.
func (b *BuildOptions) Validate() error {
	if len(b.EntryPoints) == 0 {
		return ErrNoEntryPoints
	}
	if b.Outdir != "" && b.Outfile != "" {
		return zerr.With(zerr.With(ErrOutputConflict, "outdir", b.Outdir), "outfile", b.Outfile)
	}
	switch b.Format {
	case "", FormatESM, FormatCJS, FormatIIFE:
	default:
		return zerr.With(ErrInvalidFormat, "format", string(b.Format))
	}
	switch b.Platform {
	case "", PlatformBrowser, PlatformNode, PlatformNeutral:
	default:
		return zerr.With(ErrInvalidPlatform, "platform", string(b.Platform))
	}
	return nil
}
