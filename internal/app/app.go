// Package app implements the application layer for verso.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/verso/internal/core/ports"
	"go.trai.ch/verso/internal/engine/orchestrator"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	orchestrator *orchestrator.Orchestrator
	vendorer     ports.Vendorer
	registry     ports.RevisionRegistry
	telemetry    ports.Telemetry
	logger       ports.Logger
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	orch *orchestrator.Orchestrator,
	vendorer ports.Vendorer,
	registry ports.RevisionRegistry,
	telemetry ports.Telemetry,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		orchestrator: orch,
		vendorer:     vendorer,
		registry:     registry,
		telemetry:    telemetry,
		logger:       log,
	}
}

// Options are the invocation settings shared by every operation.
type Options struct {
	// Root is the owning tree the registry and output directory live in.
	Root string
	// ConfigPath overrides <Root>/verso.yaml.
	ConfigPath string
	// Parallelism overrides the registry setting when positive.
	Parallelism int
	// Force reruns work the manifest or vendor markers report as current.
	Force bool
}

// VersionModule versions one registered module into revision.
// A pipeline failure is returned as a *domain.StageError.
func (a *App) VersionModule(ctx context.Context, opts Options, module, revision string) error {
	if opts.Root == "" {
		return domain.MissingParameter("root")
	}
	if module == "" {
		return domain.MissingParameter("module")
	}
	_, err := a.AddRevision(ctx, opts, revision, []string{module})
	return err
}

// AddRevision versions the named modules into revision, or every registered
// module when none are named.
func (a *App) AddRevision(
	ctx context.Context, opts Options, revision string, modules []string,
) (*orchestrator.Report, error) {
	if opts.Root == "" {
		return nil, domain.MissingParameter("root")
	}
	if revision == "" {
		return nil, domain.MissingParameter("revision")
	}
	rev, err := domain.ParseRevision(revision)
	if err != nil {
		return nil, err
	}

	cfg, err := a.loadConfig(opts)
	if err != nil {
		return nil, err
	}
	selected, skipped, err := selectModules(cfg, modules)
	if err != nil {
		return nil, err
	}
	for _, name := range skipped {
		a.logger.Info(fmt.Sprintf("skipping %s, it declares no Android subtree", name))
	}

	report, err := a.orchestrator.Run(ctx, orchestrator.Request{
		Root:        opts.Root,
		Revision:    rev,
		Modules:     selected,
		Parallelism: a.parallelism(opts, cfg),
		Force:       opts.Force,
		OutputDir:   cfg.OutputDir,
		Strict:      cfg.Strict,
		Cleanup:     cfg.Cleanup,
	})
	if report != nil {
		a.logger.Info(summarize(report))
	}
	return report, err
}

// RemoveRevision deletes revision from the output tree and the manifest.
func (a *App) RemoveRevision(ctx context.Context, opts Options, revision string) error {
	if opts.Root == "" {
		return domain.MissingParameter("root")
	}
	if revision == "" {
		return domain.MissingParameter("revision")
	}
	rev, err := domain.ParseRevision(revision)
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig(opts)
	if err != nil {
		return err
	}
	return a.orchestrator.Remove(ctx, opts.Root, cfg.OutputDir, rev)
}

// Vendor copies one registered module into the root without versioning it.
// An empty platform vendors the Android subtree.
func (a *App) Vendor(ctx context.Context, opts Options, module, platform string) error {
	if opts.Root == "" {
		return domain.MissingParameter("root")
	}
	if module == "" {
		return domain.MissingParameter("module")
	}
	p, err := parsePlatform(platform)
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig(opts)
	if err != nil {
		return err
	}
	m, ok := cfg.Module(module)
	if !ok {
		return domain.Classify(domain.ErrConfiguration, domain.Tag(domain.ErrModuleNotFound, "module", module))
	}

	vctx, vertex := a.telemetry.Record(ctx, module+": "+string(domain.StageVendoring))
	copied, err := a.vendorer.Ensure(vctx, opts.Root, &m, ports.VendorOptions{
		OutputDir: cfg.OutputDir,
		Platform:  p,
		Cleanup:   cfg.Cleanup,
		Force:     opts.Force,
	})
	vertex.Complete(err)
	if err != nil {
		return err
	}
	if copied {
		a.logger.Info(fmt.Sprintf("vendored %s (%s)", module, p))
	} else {
		a.logger.Info(fmt.Sprintf("%s is already vendored (%s)", module, p))
	}
	return nil
}

// GenerateWrappers rebuilds every façade from the manifest.
func (a *App) GenerateWrappers(ctx context.Context, opts Options) error {
	if opts.Root == "" {
		return domain.MissingParameter("root")
	}
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return err
	}
	return a.orchestrator.RegenerateWrappers(ctx, opts.Root, cfg.OutputDir)
}

// Status returns the manifest of the root.
func (a *App) Status(opts Options) (*domain.Manifest, error) {
	if opts.Root == "" {
		return nil, domain.MissingParameter("root")
	}
	cfg, err := a.loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return a.registry.Load(domain.ManifestPath(opts.Root, cfg.OutputDir))
}

// Close flushes the telemetry session.
func (a *App) Close() error {
	return a.telemetry.Close()
}

func (a *App) loadConfig(opts Options) (*domain.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path = filepath.Join(opts.Root, domain.ConfigFileName)
	}
	cfg, err := a.configLoader.Load(path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return cfg, nil
}

func (a *App) parallelism(opts Options, cfg *domain.Config) int {
	if opts.Parallelism > 0 {
		return opts.Parallelism
	}
	return cfg.Parallelism
}

// selectModules resolves names against the registry. With no names every
// module with an Android subtree is selected and the iOS-only ones are
// returned as skipped.
func selectModules(cfg *domain.Config, names []string) ([]domain.VendoredModule, []string, error) {
	if len(names) == 0 {
		var selected []domain.VendoredModule
		var skipped []string
		for _, m := range cfg.Modules {
			if !m.HasAndroid() {
				skipped = append(skipped, m.Name.String())
				continue
			}
			selected = append(selected, m)
		}
		if len(selected) == 0 {
			return nil, skipped, domain.Classify(domain.ErrConfiguration, zerr.New("registry declares no Android modules"))
		}
		return selected, skipped, nil
	}

	selected := make([]domain.VendoredModule, 0, len(names))
	for _, name := range names {
		m, ok := cfg.Module(name)
		if !ok {
			return nil, nil, domain.Classify(domain.ErrConfiguration, domain.Tag(domain.ErrModuleNotFound, "module", name))
		}
		if !m.HasAndroid() {
			return nil, nil, domain.Classify(domain.ErrConfiguration, domain.Tag(domain.ErrNoAndroidSubtree, "module", name))
		}
		selected = append(selected, m)
	}
	return selected, nil, nil
}

func parsePlatform(s string) (domain.Platform, error) {
	switch p := domain.Platform(s); p {
	case "":
		return domain.PlatformAndroid, nil
	case domain.PlatformAndroid, domain.PlatformIOS, domain.PlatformAll:
		return p, nil
	default:
		return "", domain.Classify(domain.ErrConfiguration,
			zerr.With(zerr.New("platform must be one of android, ios, all"), "platform", s))
	}
}

func summarize(r *orchestrator.Report) string {
	var done, cached, failed int
	for _, m := range r.Modules {
		switch {
		case m.Cached:
			cached++
		case m.Stage == domain.StageDone:
			done++
		case m.Err != nil:
			failed++
		}
	}
	return fmt.Sprintf("revision %s: %d versioned, %d up to date, %d failed", r.Revision, done, cached, failed)
}
