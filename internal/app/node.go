package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/verso/internal/adapters/cas"                //nolint:depguard // Wired in app layer
	"go.trai.ch/verso/internal/adapters/config"             //nolint:depguard // Wired in app layer
	"go.trai.ch/verso/internal/adapters/logger"             //nolint:depguard // Wired in app layer
	"go.trai.ch/verso/internal/adapters/telemetry/progrock" //nolint:depguard // Wired in app layer
	"go.trai.ch/verso/internal/core/ports"
	"go.trai.ch/verso/internal/engine/orchestrator"
	"go.trai.ch/verso/internal/engine/vendoring"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			orchestrator.NodeID,
			vendoring.NodeID,
			cas.NodeID,
			progrock.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	orch, err := graft.Dep[*orchestrator.Orchestrator](ctx)
	if err != nil {
		return nil, err
	}

	vendorer, err := graft.Dep[ports.Vendorer](ctx)
	if err != nil {
		return nil, err
	}

	registry, err := graft.Dep[ports.RevisionRegistry](ctx)
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

	return New(loader, orch, vendorer, registry, telemetry, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return NewComponents(app, log), nil
}
