package orchestrator

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/verso/internal/adapters/cas"                //nolint:depguard // Wired in engine wiring
	"go.trai.ch/verso/internal/adapters/fs"                 //nolint:depguard // Wired in engine wiring
	"go.trai.ch/verso/internal/adapters/logger"             //nolint:depguard // Wired in engine wiring
	"go.trai.ch/verso/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/verso/internal/core/ports"
	"go.trai.ch/verso/internal/engine/renamer"
	"go.trai.ch/verso/internal/engine/rewriter"
	"go.trai.ch/verso/internal/engine/vendoring"
	"go.trai.ch/verso/internal/engine/wrapper"
)

// NodeID is the unique identifier for the orchestrator Graft node.
const NodeID graft.ID = "engine.orchestrator"

func init() {
	graft.Register(graft.Node[*Orchestrator]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			vendoring.NodeID,
			rewriter.NodeID,
			renamer.NodeID,
			wrapper.NodeID,
			cas.NodeID,
			fs.HasherNodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Orchestrator, error) {
			vendorer, err := graft.Dep[ports.Vendorer](ctx)
			if err != nil {
				return nil, err
			}

			rw, err := graft.Dep[ports.NamespaceRewriter](ctx)
			if err != nil {
				return nil, err
			}

			rn, err := graft.Dep[ports.ArtifactRenamer](ctx)
			if err != nil {
				return nil, err
			}

			generator, err := graft.Dep[ports.WrapperGenerator](ctx)
			if err != nil {
				return nil, err
			}

			registry, err := graft.Dep[ports.RevisionRegistry](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.TreeHasher](ctx)
			if err != nil {
				return nil, err
			}

			telemetry, err := graft.Dep[ports.Telemetry](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewOrchestrator(vendorer, rw, rn, generator, registry, hasher, telemetry, log), nil
		},
	})
}
