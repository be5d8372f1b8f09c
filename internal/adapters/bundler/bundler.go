package bundler

import (
	"cmp"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/evanw/esbuild/pkg/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/corejs-upgrade/internal/adapters/noderesolve"
	"go.trai.ch/corejs-upgrade/internal/core/domain"
	"go.trai.ch/corejs-upgrade/internal/core/ports"
	"go.trai.ch/corejs-upgrade/internal/engine/rewriter"
	"go.trai.ch/corejs-upgrade/internal/engine/upgrader"
	"go.trai.ch/zerr"
)

var targets = map[string]api.Target{
	"":       api.DefaultTarget,
	"esnext": api.ESNext,
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
}

// Bundler implements ports.Bundler on top of esbuild.
type Bundler struct {
	logger ports.Logger
	node   *noderesolve.Resolver
	tracer trace.Tracer
}

// New creates a Bundler. node serves builds configured with ResolveFrom.
func New(logger ports.Logger, node *noderesolve.Resolver) *Bundler {
	return &Bundler{
		logger: logger,
		node:   node,
		tracer: otel.Tracer(upgrader.TracerName),
	}
}

// Build bundles the entry points once and writes the output files.
func (b *Bundler) Build(ctx context.Context, opts domain.BuildOptions) (*ports.BuildReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := &collector{}
	buildOpts, err := b.esbuildOptions(opts)
	if err != nil {
		return nil, err
	}
	buildOpts.Plugins = []api.Plugin{b.plugin(ctx, opts, seen)}

	return finish(api.Build(buildOpts), seen)
}

// Scan lists the legacy core-js imports reachable from the entry points.
// Nothing is written and core-js itself does not need to be installed.
func (b *Bundler) Scan(ctx context.Context, opts domain.BuildOptions) ([]domain.LegacyImport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seen := &collector{}
	buildOpts, err := b.esbuildOptions(opts)
	if err != nil {
		return nil, err
	}
	buildOpts.Plugins = []api.Plugin{scanPlugin(seen)}

	result := api.Build(buildOpts)
	if len(result.Errors) > 0 {
		return nil, zerr.With(domain.ErrScanFailed, "errors", formatMessages(result.Errors, api.ErrorMessage))
	}
	return seen.sorted(), nil
}

// Watch builds once, then rebuilds for every batch received on changes.
func (b *Bundler) Watch(
	ctx context.Context,
	opts domain.BuildOptions,
	changes <-chan []string,
	onBuild func(*ports.BuildReport, error),
) error {
	seen := &collector{}
	buildOpts, err := b.esbuildOptions(opts)
	if err != nil {
		return err
	}
	buildOpts.Plugins = []api.Plugin{b.plugin(ctx, opts, seen)}

	bctx, cerr := api.Context(buildOpts)
	if cerr != nil {
		return zerr.With(domain.ErrWatchFailed, "errors", formatMessages(cerr.Errors, api.ErrorMessage))
	}
	defer bctx.Dispose()

	rebuild := func() {
		seen.reset()
		onBuild(finish(bctx.Rebuild(), seen))
	}

	rebuild()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			rebuild()
		}
	}
}

func (b *Bundler) plugin(ctx context.Context, opts domain.BuildOptions, seen *collector) api.Plugin {
	return NewPlugin(opts.Options, b.logger, b.node,
		WithTracer(b.tracer),
		WithObserver(seen.add),
	).Esbuild(ctx)
}

// finish writes the output files and turns a result into a report.
func finish(result api.BuildResult, seen *collector) (*ports.BuildReport, error) {
	if len(result.Errors) > 0 {
		return nil, zerr.With(domain.ErrBuildFailed, "errors", formatMessages(result.Errors, api.ErrorMessage))
	}

	report := &ports.BuildReport{
		Upgraded: seen.sorted(),
		Warnings: formatMessages(result.Warnings, api.WarningMessage),
	}
	for _, out := range result.OutputFiles {
		if err := writeOutput(out); err != nil {
			return nil, err
		}
		report.OutputFiles = append(report.OutputFiles, out.Path)
	}
	slices.Sort(report.OutputFiles)
	return report, nil
}

func writeOutput(out api.OutputFile) error {
	if err := os.MkdirAll(filepath.Dir(out.Path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", out.Path)
	}
	if err := os.WriteFile(out.Path, out.Contents, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write output file"), "path", out.Path)
	}
	return nil
}

func (b *Bundler) esbuildOptions(opts domain.BuildOptions) (api.BuildOptions, error) {
	if err := opts.Validate(); err != nil {
		return api.BuildOptions{}, err
	}
	target, ok := targets[strings.ToLower(opts.Target)]
	if !ok {
		return api.BuildOptions{}, zerr.With(domain.ErrInvalidTarget, "target", opts.Target)
	}

	wd := opts.WorkingDir
	if wd == "" {
		var err error
		if wd, err = os.Getwd(); err != nil {
			return api.BuildOptions{}, zerr.Wrap(err, "failed to get working directory")
		}
	}
	entries, err := ExpandEntryPoints(wd, opts.EntryPoints)
	if err != nil {
		return api.BuildOptions{}, err
	}

	buildOpts := api.BuildOptions{
		EntryPoints:       entries,
		AbsWorkingDir:     wd,
		Bundle:            true,
		Write:             false,
		Outdir:            opts.Outdir,
		Outfile:           opts.Outfile,
		Format:            apiFormat(opts.Format),
		Platform:          apiPlatform(opts.Platform),
		Target:            target,
		MinifyWhitespace:  opts.Minify,
		MinifyIdentifiers: opts.Minify,
		MinifySyntax:      opts.Minify,
		External:          opts.External,
		LogLevel:          api.LogLevelSilent,
	}
	if buildOpts.Outdir == "" && buildOpts.Outfile == "" {
		buildOpts.Outdir = domain.DefaultOutdir
	}
	if opts.Sourcemap {
		buildOpts.Sourcemap = api.SourceMapLinked
	}
	return buildOpts, nil
}

// ExpandEntryPoints resolves glob patterns against wd. Plain paths must exist.
// Results are absolute, sorted and free of duplicates.
func ExpandEntryPoints(wd string, patterns []string) ([]string, error) {
	var entries []string
	for _, pattern := range patterns {
		if !hasMeta(pattern) {
			p := pattern
			if !filepath.IsAbs(p) {
				p = filepath.Join(wd, p)
			}
			if _, err := os.Stat(p); err != nil {
				return nil, zerr.With(domain.ErrEntryPointNotFound, "path", pattern)
			}
			entries = append(entries, p)
			continue
		}

		matches, err := doublestar.Glob(
			os.DirFS(wd),
			filepath.ToSlash(pattern),
			doublestar.WithFilesOnly(),
			doublestar.WithFailOnIOErrors(),
		)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrEntryPointGlobFailed.Error()), "pattern", pattern)
		}
		if len(matches) == 0 {
			return nil, zerr.With(domain.ErrEntryPointNotFound, "pattern", pattern)
		}
		for _, m := range matches {
			entries = append(entries, filepath.Join(wd, filepath.FromSlash(m)))
		}
	}
	if len(entries) == 0 {
		return nil, domain.ErrNoEntryPoints
	}
	slices.Sort(entries)
	return slices.Compact(entries), nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

func apiFormat(f domain.Format) api.Format {
	switch f {
	case domain.FormatESM:
		return api.FormatESModule
	case domain.FormatCJS:
		return api.FormatCommonJS
	case domain.FormatIIFE:
		return api.FormatIIFE
	default:
		return api.FormatDefault
	}
}

func apiPlatform(p domain.Platform) api.Platform {
	switch p {
	case domain.PlatformNode:
		return api.PlatformNode
	case domain.PlatformNeutral:
		return api.PlatformNeutral
	default:
		return api.PlatformBrowser
	}
}

func formatMessages(msgs []api.Message, kind api.MessageKind) []string {
	if len(msgs) == 0 {
		return nil
	}
	out := api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: kind})
	for i, s := range out {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

// scanPlugin records every legacy core-js request and keeps all core-js
// requests external so the package need not be installed.
func scanPlugin(seen *collector) api.Plugin {
	return api.Plugin{
		Name: PluginName + "-scan",
		Setup: func(build api.PluginBuild) {
			build.OnResolve(api.OnResolveOptions{Filter: Filter, Namespace: fileNamespace},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if isRelative(args.Path) {
						return api.OnResolveResult{}, nil
					}
					m := rewriter.Classify(args.Path)
					if m.Outcome != rewriter.NoMatch {
						seen.add(domain.LegacyImport{
							Request:   args.Path,
							Importer:  args.Importer,
							Rule:      m.Rule,
							Rewritten: m.Path,
							Supported: m.Outcome == rewriter.Rewritten,
						})
					}
					return api.OnResolveResult{Path: args.Path, External: true}, nil
				})
		},
	}
}

func sortImports(imports []domain.LegacyImport) []domain.LegacyImport {
	out := slices.Clone(imports)
	slices.SortFunc(out, func(a, b domain.LegacyImport) int {
		return cmp.Or(cmp.Compare(a.Importer, b.Importer), cmp.Compare(a.Request, b.Request))
	})
	return slices.CompactFunc(out, func(a, b domain.LegacyImport) bool {
		return a.Importer == b.Importer && a.Request == b.Request
	})
}
