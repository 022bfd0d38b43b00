package rewriter

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/verso/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/verso/internal/core/ports"
)

// NodeID is the unique identifier for the rewriter Graft node.
const NodeID graft.ID = "engine.rewriter"

func init() {
	graft.Register(graft.Node[ports.NamespaceRewriter]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.NamespaceRewriter, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewRewriter(log), nil
		},
	})
}
