// Package app implements the application layer for corejs-upgrade.
package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/corejs-upgrade/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/corejs-upgrade/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/corejs-upgrade/internal/adapters/watcher"   //nolint:depguard // Wired in app layer
	"go.trai.ch/corejs-upgrade/internal/core/domain"
	"go.trai.ch/corejs-upgrade/internal/core/ports"
	"go.trai.ch/corejs-upgrade/internal/engine/rewriter"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	bundler      ports.Bundler
	watchers     ports.WatcherFactory
	logger       ports.Logger
	out          io.Writer
	workDir      string
	debounce     time.Duration
	jsonOutput   bool
	shutdown     func(context.Context) error
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	bundler ports.Bundler,
	watchers ports.WatcherFactory,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		bundler:      bundler,
		watchers:     watchers,
		logger:       log,
		out:          os.Stdout,
		debounce:     watcher.DefaultDebounceWindow,
	}
}

// WithOutput sets where reports are written.
func (a *App) WithOutput(w io.Writer) *App {
	a.out = w
	return a
}

// WithWorkDir sets the directory commands run in instead of the process cwd.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// WithDebounceWindow sets how long watch mode waits for more changes.
func (a *App) WithDebounceWindow(d time.Duration) *App {
	a.debounce = d
	return a
}

type jsonSetter interface {
	SetJSON(enable bool)
}

// SetJSON switches reports and, when supported, logs to JSON.
func (a *App) SetJSON(enable bool) {
	a.jsonOutput = enable
	if s, ok := a.logger.(jsonSetter); ok {
		s.SetJSON(enable)
	}
}

// SetVerbose logs every core-js resolution, not only the upgraded ones.
func (a *App) SetVerbose(enable bool) {
	if !enable || a.shutdown != nil {
		return
	}
	a.shutdown = telemetry.Install(telemetry.NewBridge(a.logger))
}

// Close flushes and releases tracing resources.
func (a *App) Close(ctx context.Context) error {
	if a.shutdown == nil {
		return nil
	}
	err := a.shutdown(ctx)
	a.shutdown = nil
	return err
}

// RewriteResult is the outcome of rewriting one request.
type RewriteResult struct {
	Request string `json:"request"`
	Result  string `json:"result,omitempty"`
	Rule    string `json:"rule,omitempty"`
	Outcome string `json:"outcome"`
}

// Rewrite applies the rewrite table to each request and prints the results.
func (a *App) Rewrite(requests []string) ([]RewriteResult, error) {
	results := make([]RewriteResult, 0, len(requests))
	for _, req := range requests {
		m := rewriter.Classify(req)
		results = append(results, RewriteResult{
			Request: req,
			Result:  m.Path,
			Rule:    m.Rule,
			Outcome: m.Outcome.String(),
		})
	}
	return results, a.printRewrites(results)
}

// BuildOverrides are command line values layered over the config file.
// Nil pointers leave the file value in place.
type BuildOverrides struct {
	ConfigPath  string
	EntryPoints []string
	Outdir      *string
	Outfile     *string
	Format      *string
	Platform    *string
	Target      *string
	Minify      *bool
	Sourcemap   *bool
	ResolveFrom *string
	External    []string
}

// LoadOptions reads the configuration and applies the overrides.
func (a *App) LoadOptions(o BuildOverrides) (domain.BuildOptions, error) {
	cwd, err := a.cwd()
	if err != nil {
		return domain.BuildOptions{}, err
	}

	loaded, err := a.configLoader.Load(cwd, o.ConfigPath)
	if err != nil {
		return domain.BuildOptions{}, zerr.Wrap(err, "failed to load configuration")
	}
	opts := *loaded

	if len(o.EntryPoints) > 0 {
		opts.EntryPoints = o.EntryPoints
	}
	if len(o.External) > 0 {
		opts.External = o.External
	}
	setIf(&opts.Outdir, o.Outdir)
	setIf(&opts.Outfile, o.Outfile)
	setIf(&opts.Target, o.Target)
	setIf(&opts.Minify, o.Minify)
	setIf(&opts.Sourcemap, o.Sourcemap)
	if o.Format != nil {
		opts.Format = domain.Format(*o.Format)
	}
	if o.Platform != nil {
		opts.Platform = domain.Platform(*o.Platform)
	}
	if o.ResolveFrom != nil {
		opts.ResolveFrom = config.ParseResolveFrom(*o.ResolveFrom)
		if opts.ResolveFrom.Enabled() {
			dir, err := config.ResolveDir(cwd, string(opts.ResolveFrom))
			if err != nil {
				return domain.BuildOptions{}, err
			}
			opts.ResolveFrom = domain.ResolveFrom(dir)
		}
	}

	if err := opts.Validate(); err != nil {
		return domain.BuildOptions{}, err
	}
	return opts, nil
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (a *App) cwd() (string, error) {
	if a.workDir != "" {
		return a.workDir, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", zerr.Wrap(err, "failed to get working directory")
	}
	return cwd, nil
}

// Scan prints the legacy core-js imports reachable from the entry points.
func (a *App) Scan(ctx context.Context, o BuildOverrides) ([]domain.LegacyImport, error) {
	opts, err := a.LoadOptions(o)
	if err != nil {
		return nil, err
	}
	imports, err := a.bundler.Scan(ctx, opts)
	if err != nil {
		return nil, err
	}
	return imports, a.printScan(opts.WorkingDir, imports)
}

// Build bundles once, or keeps rebuilding on changes when watch is set.
func (a *App) Build(ctx context.Context, o BuildOverrides, watch bool) error {
	opts, err := a.LoadOptions(o)
	if err != nil {
		return err
	}
	if watch {
		return a.watch(ctx, opts)
	}

	report, err := a.bundler.Build(ctx, opts)
	if err != nil {
		return err
	}
	return a.printBuild(opts.WorkingDir, report)
}

func (a *App) watch(ctx context.Context, opts domain.BuildOptions) error {
	w, err := a.watchers(outputPath(opts))
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	if err := w.Start(ctx, opts.WorkingDir); err != nil {
		_ = w.Stop()
		return err
	}
	a.logger.Info("watching " + opts.WorkingDir + " for changes")

	changes := make(chan []string)
	deb := watcher.NewDebouncer(a.debounce, func(paths []string) {
		select {
		case changes <- paths:
		case <-ctx.Done():
		}
	})

	g.Go(func() error {
		for ev := range w.Events() {
			deb.Add(ev.Path)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		deb.Stop()
		return w.Stop()
	})

	g.Go(func() error {
		return a.bundler.Watch(ctx, opts, changes, func(report *ports.BuildReport, err error) {
			if err != nil {
				a.logger.Error(err)
				return
			}
			if perr := a.printBuild(opts.WorkingDir, report); perr != nil {
				a.logger.Error(perr)
			}
		})
	})

	if err := g.Wait(); err != nil {
		return zerr.Wrap(err, domain.ErrWatchFailed.Error())
	}
	return nil
}

// outputPath is the absolute path build output is written to.
func outputPath(opts domain.BuildOptions) string {
	out := opts.Outdir
	if opts.Outfile != "" {
		out = opts.Outfile
	}
	if out == "" {
		out = domain.DefaultOutdir
	}
	if !filepath.IsAbs(out) {
		out = filepath.Join(opts.WorkingDir, out)
	}
	return out
}
