// Package bundler runs esbuild with the core-js upgrade plugin installed.
package bundler

import (
	"context"
	"errors"
	"strings"
	"sync"

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

const (
	// PluginName is reported by esbuild in messages coming from the plugin.
	PluginName = "corejs-upgrade"

	// Filter selects the requests the plugin inspects.
	Filter = `core-js`

	fileNamespace = "file"
)

// reentry marks resolutions the plugin starts itself, so its own callback
// lets them through to esbuild.
type reentry struct{}

// Plugin hooks the Upgrader into esbuild's OnResolve mechanism.
type Plugin struct {
	opts     domain.Options
	logger   ports.Logger
	tracer   trace.Tracer
	node     *noderesolve.Resolver
	observer func(domain.LegacyImport)
}

// PluginOption configures a Plugin.
type PluginOption func(*Plugin)

// WithTracer sets the tracer used for upgrade spans.
func WithTracer(t trace.Tracer) PluginOption {
	return func(p *Plugin) {
		p.tracer = t
	}
}

// WithObserver registers a callback invoked for every upgraded request.
// It may be called concurrently.
func WithObserver(fn func(domain.LegacyImport)) PluginOption {
	return func(p *Plugin) {
		p.observer = fn
	}
}

// NewPlugin creates a plugin for the given options, merged over the defaults.
// node is used when ResolveFrom is set; it may be nil otherwise.
func NewPlugin(opts domain.Options, logger ports.Logger, node *noderesolve.Resolver, popts ...PluginOption) *Plugin {
	p := &Plugin{
		opts:   domain.DefaultOptions().Merge(opts),
		logger: logger,
		tracer: otel.Tracer(upgrader.TracerName),
		node:   node,
	}
	for _, opt := range popts {
		opt(p)
	}
	return p
}

// Esbuild returns the esbuild plugin. ctx is the parent of every upgrade span.
func (p *Plugin) Esbuild(ctx context.Context) api.Plugin {
	return api.Plugin{
		Name: PluginName,
		Setup: func(build api.PluginBuild) {
			u := upgrader.New(p.strategy(build), p.logger, upgrader.WithTracer(p.tracer))

			build.OnResolve(api.OnResolveOptions{Filter: Filter, Namespace: fileNamespace},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					if _, ok := args.PluginData.(reentry); ok {
						return api.OnResolveResult{}, nil
					}
					if isRelative(args.Path) {
						return api.OnResolveResult{}, nil
					}

					res, err := u.Upgrade(ctx, requestFromArgs(args))
					if err != nil {
						return api.OnResolveResult{}, err
					}
					if !res.Upgraded {
						return api.OnResolveResult{}, nil
					}

					if p.observer != nil {
						p.observer(domain.LegacyImport{
							Request:   args.Path,
							Importer:  args.Importer,
							Rule:      rewriter.Classify(args.Path).Rule,
							Rewritten: res.Rewritten,
							Supported: true,
						})
					}
					return api.OnResolveResult{Path: res.Path, Namespace: fileNamespace}, nil
				})
		},
	}
}

// strategy picks the resolver once per build: esbuild's own resolution
// from the importer, or node resolution rooted at ResolveFrom.
func (p *Plugin) strategy(build api.PluginBuild) ports.ModuleResolver {
	if p.opts.ResolveFrom.Enabled() {
		node := p.node
		if node == nil {
			var err error
			node, err = noderesolve.NewResolver(noderesolve.NewOSFS(), noderesolve.DefaultCacheSize)
			if err != nil {
				return failingResolver{err: err}
			}
		}
		return node.At(string(p.opts.ResolveFrom))
	}
	return &hostResolver{build: build}
}

// isRelative reports requests already relative to the importing file.
func isRelative(p string) bool {
	return strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../")
}

func requestFromArgs(args api.OnResolveArgs) domain.ResolveRequest {
	return domain.ResolveRequest{
		Path:       args.Path,
		Importer:   args.Importer,
		ResolveDir: args.ResolveDir,
		Kind:       kindFromAPI(args.Kind),
	}
}

func kindFromAPI(k api.ResolveKind) domain.ImportKind {
	switch k {
	case api.ResolveEntryPoint:
		return domain.KindEntryPoint
	case api.ResolveJSImportStatement:
		return domain.KindImportStatement
	case api.ResolveJSRequireCall, api.ResolveJSRequireResolve:
		return domain.KindRequireCall
	case api.ResolveJSDynamicImport:
		return domain.KindDynamicImport
	default:
		return domain.KindUnknown
	}
}

func kindToAPI(k domain.ImportKind) api.ResolveKind {
	switch k {
	case domain.KindEntryPoint:
		return api.ResolveEntryPoint
	case domain.KindRequireCall:
		return api.ResolveJSRequireCall
	case domain.KindDynamicImport:
		return api.ResolveJSDynamicImport
	default:
		return api.ResolveJSImportStatement
	}
}

// hostResolver resolves through esbuild itself.
type hostResolver struct {
	build api.PluginBuild
}

func (h *hostResolver) Resolve(_ context.Context, req domain.ResolveRequest) (string, error) {
	result := h.build.Resolve(req.Path, api.ResolveOptions{
		PluginName: PluginName,
		Importer:   req.Importer,
		Namespace:  fileNamespace,
		ResolveDir: req.ResolveDir,
		Kind:       kindToAPI(req.Kind),
		PluginData: reentry{},
	})
	if len(result.Errors) > 0 {
		return "", zerr.With(zerr.Wrap(errors.New(result.Errors[0].Text), domain.ErrModuleNotFound.Error()), "request", req.Path)
	}
	if result.External {
		return req.Path, nil
	}
	return result.Path, nil
}

type failingResolver struct {
	err error
}

func (f failingResolver) Resolve(context.Context, domain.ResolveRequest) (string, error) {
	return "", f.err
}

// collector gathers legacy imports reported from concurrent callbacks.
type collector struct {
	mu      sync.Mutex
	imports []domain.LegacyImport
}

func (c *collector) add(li domain.LegacyImport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.imports = append(c.imports, li)
}

func (c *collector) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.imports = nil
}

// sorted returns the unique imports ordered by importer, then request.
func (c *collector) sorted() []domain.LegacyImport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return sortImports(c.imports)
}
