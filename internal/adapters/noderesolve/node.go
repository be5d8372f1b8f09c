package noderesolve

import (
	"context"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the node resolver Graft node.
const NodeID graft.ID = "adapter.noderesolve"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*Resolver, error) {
			return NewResolver(NewOSFS(), DefaultCacheSize)
		},
	})
}
