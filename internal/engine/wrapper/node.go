package wrapper

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/verso/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/verso/internal/core/ports"
)

// NodeID is the unique identifier for the wrapper generator Graft node.
const NodeID graft.ID = "engine.wrapper"

func init() {
	graft.Register(graft.Node[ports.WrapperGenerator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.WrapperGenerator, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewGenerator(log), nil
		},
	})
}
