// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/verso/internal/core/domain"
)

// Executor defines the interface for running external commands.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs cmd, streaming its output to stdout and stderr.
	//
	// It returns an error if the command cannot start or exits unsuccessfully.
	Execute(ctx context.Context, cmd domain.Command, stdout, stderr io.Writer) error
}

// Fetcher retrieves an upstream module checkout.
type Fetcher interface {
	// Fetch places a checkout of repoURL at ref (the default branch when empty) into dst.
	// dst must not exist.
	Fetch(ctx context.Context, repoURL, ref, dst string) error
}
