package bundler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/corejs-upgrade/internal/adapters/logger"
	"go.trai.ch/corejs-upgrade/internal/adapters/noderesolve"
	"go.trai.ch/corejs-upgrade/internal/core/ports"
)

// NodeID is the unique identifier for the esbuild bundler Graft node.
const NodeID graft.ID = "adapter.bundler"

func init() {
	graft.Register(graft.Node[ports.Bundler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, noderesolve.NodeID},
		Run: func(ctx context.Context) (ports.Bundler, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			node, err := graft.Dep[*noderesolve.Resolver](ctx)
			if err != nil {
				return nil, err
			}
			return New(log, node), nil
		},
	})
}
