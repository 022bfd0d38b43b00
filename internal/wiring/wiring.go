// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/verso/internal/adapters/cas"
	_ "go.trai.ch/verso/internal/adapters/config"
	_ "go.trai.ch/verso/internal/adapters/fs"
	_ "go.trai.ch/verso/internal/adapters/logger"
	_ "go.trai.ch/verso/internal/adapters/shell"
	_ "go.trai.ch/verso/internal/adapters/telemetry/progrock"
	// Register app and engine nodes.
	_ "go.trai.ch/verso/internal/app"
	_ "go.trai.ch/verso/internal/engine/orchestrator"
	_ "go.trai.ch/verso/internal/engine/renamer"
	_ "go.trai.ch/verso/internal/engine/rewriter"
	_ "go.trai.ch/verso/internal/engine/vendoring"
	_ "go.trai.ch/verso/internal/engine/wrapper"
)
