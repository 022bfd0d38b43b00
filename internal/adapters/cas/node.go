package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/verso/internal/core/ports"
)

const NodeID graft.ID = "adapter.revision_registry"

func init() {
	graft.Register(graft.Node[ports.RevisionRegistry]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.RevisionRegistry, error) {
			return NewRegistry(), nil
		},
	})
}
