package renamer

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/verso/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/verso/internal/core/ports"
)

// NodeID is the unique identifier for the renamer Graft node.
const NodeID graft.ID = "engine.renamer"

func init() {
	graft.Register(graft.Node[ports.ArtifactRenamer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ArtifactRenamer, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewRenamer(log), nil
		},
	})
}
