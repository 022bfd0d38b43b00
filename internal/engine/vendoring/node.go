package vendoring

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/verso/internal/adapters/fs"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/verso/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/verso/internal/adapters/shell"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/verso/internal/core/ports"
)

// NodeID is the unique identifier for the vendoring Graft node.
const NodeID graft.ID = "engine.vendoring"

func init() {
	graft.Register(graft.Node[ports.Vendorer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			shell.FetcherNodeID,
			fs.ResolverNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (ports.Vendorer, error) {
			fetcher, err := graft.Dep[ports.Fetcher](ctx)
			if err != nil {
				return nil, err
			}

			resolver, err := graft.Dep[ports.PathResolver](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewPipeline(fetcher, resolver, log), nil
		},
	})
}
