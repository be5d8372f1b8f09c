package ports

import (
	"context"

	"go.trai.ch/corejs-upgrade/internal/core/domain"
)

// ModuleResolver turns a module request into an absolute file path.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type ModuleResolver interface {
	// Resolve returns the file the request refers to.
	// It returns an error wrapping domain.ErrModuleNotFound when nothing matches.
	Resolve(ctx context.Context, req domain.ResolveRequest) (string, error)
}
