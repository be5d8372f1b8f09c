package ports

import (
	"context"

	"go.trai.ch/corejs-upgrade/internal/core/domain"
)

// BuildReport summarises a finished bundling run.
type BuildReport struct {
	// OutputFiles are the paths written by the build.
	OutputFiles []string
	// Upgraded are the requests that were rewritten to resolve.
	Upgraded []domain.LegacyImport
	// Warnings are bundler warnings rendered as text.
	Warnings []string
}

// Bundler runs builds with the upgrade plugin installed.
//
//go:generate mockgen -source=bundler.go -destination=mocks/mock_bundler.go -package=mocks
type Bundler interface {
	// Build bundles the entry points once.
	Build(ctx context.Context, opts domain.BuildOptions) (*BuildReport, error)
	// Scan lists the legacy core-js imports reachable from the entry points without writing output.
	Scan(ctx context.Context, opts domain.BuildOptions) ([]domain.LegacyImport, error)
	// Watch builds once and then rebuilds whenever a value arrives on changes,
	// until ctx is cancelled or changes is closed. Each report is passed to onBuild.
	Watch(ctx context.Context, opts domain.BuildOptions, changes <-chan []string, onBuild func(*BuildReport, error)) error
}
