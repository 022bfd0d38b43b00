// Package orchestrator drives modules through the versioning pipeline for one revision.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/verso/internal/core/ports"
	"go.trai.ch/verso/internal/engine/staging"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Request describes one run: every module is versioned into Revision under Root.
type Request struct {
	Root     string
	Revision domain.RevisionIdentifier
	Modules  []domain.VendoredModule
	// Parallelism bounds how many module pipelines run at once. Zero means one per CPU.
	Parallelism int
	// Force reruns modules the manifest already records as done.
	Force bool

	OutputDir string
	Strict    bool
	Cleanup   []string
}

// ModuleReport is the outcome of one module pipeline.
type ModuleReport struct {
	Module string
	Stage  domain.Stage
	// Cached reports that the module was already done and nothing reran.
	Cached bool
	Err    error
}

// Report summarizes a run.
type Report struct {
	Revision domain.RevisionIdentifier
	// Modules is sorted by name.
	Modules []ModuleReport
}

// Module returns the report of the named module.
func (r *Report) Module(name string) (ModuleReport, bool) {
	for _, m := range r.Modules {
		if m.Module == name {
			return m, true
		}
	}
	return ModuleReport{}, false
}

// Orchestrator runs the stage graph for every module of a request.
type Orchestrator struct {
	vendorer  ports.Vendorer
	rewriter  ports.NamespaceRewriter
	renamer   ports.ArtifactRenamer
	generator ports.WrapperGenerator
	registry  ports.RevisionRegistry
	hasher    ports.TreeHasher
	telemetry ports.Telemetry
	logger    ports.Logger

	graph *domain.StageGraph
	locks *Locker
}

// NewOrchestrator creates a new Orchestrator over the default stage graph.
func NewOrchestrator(
	vendorer ports.Vendorer,
	rewriter ports.NamespaceRewriter,
	renamer ports.ArtifactRenamer,
	generator ports.WrapperGenerator,
	registry ports.RevisionRegistry,
	hasher ports.TreeHasher,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *Orchestrator {
	return &Orchestrator{
		vendorer:  vendorer,
		rewriter:  rewriter,
		renamer:   renamer,
		generator: generator,
		registry:  registry,
		hasher:    hasher,
		telemetry: telemetry,
		logger:    logger,
		graph:     domain.DefaultStageGraph(),
		locks:     NewLocker(),
	}
}

// pipeline is the state of one (module, revision) unit during a run.
type pipeline struct {
	module      *domain.VendoredModule
	mapping     domain.NamespaceMapping
	fingerprint string

	stage     domain.Stage
	completed map[domain.Stage]bool
	cached    bool
	treeHash  string
	artifacts []domain.ArtifactRecord
	err       error
}

func (p *pipeline) name() string {
	return p.mapping.Module
}

// advance moves the pipeline into next once every required stage completed.
func (p *pipeline) advance(g *domain.StageGraph, next domain.Stage) error {
	for _, req := range g.Requires(next) {
		if !p.completed[req] {
			var detail error = domain.Tag(domain.ErrPreconditionFailed, "stage", string(next))
			return zerr.With(detail, "requires", string(req))
		}
	}
	stage, err := p.stage.Transition(next)
	if err != nil {
		return err
	}
	p.stage = stage
	return nil
}

func (p *pipeline) fail(stage domain.Stage, err error) {
	p.err = &domain.StageError{Stage: stage, Module: p.name(), Revision: p.mapping.Revision, Err: err}
	p.stage = domain.StageFailed
}

func (p *pipeline) record(root string, state domain.Stage) domain.ModuleRecord {
	out := p.mapping.OutputDir
	if rel, err := filepath.Rel(root, out); err == nil {
		out = rel
	}
	rec := domain.ModuleRecord{
		Name:            p.name(),
		SourceNamespace: p.mapping.SourceNamespace,
		TargetNamespace: p.mapping.TargetNamespace,
		OutputDir:       filepath.ToSlash(out),
		Installable:     p.module.InstallableInManagedApps,
		State:           state,
		Fingerprint:     p.fingerprint,
		TreeHash:        p.treeHash,
		Artifacts:       slices.Clone(p.artifacts),
	}
	if p.module.Surface != nil {
		s := *p.module.Surface
		s.Operations = slices.Clone(s.Operations)
		rec.Surface = &s
	}
	return rec
}

// Run versions every module of req into req.Revision.
// Module pipelines run concurrently and never affect each other; the façades
// are regenerated only when every module of the request reached renaming.
// The returned error joins the *domain.StageError of every failed module.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Report, error) {
	pipelines, err := o.plan(req)
	if err != nil {
		return nil, err
	}

	manifest, err := o.registry.Load(domain.ManifestPath(req.Root, req.OutputDir))
	if err != nil {
		return nil, err
	}

	var g errgroup.Group
	g.SetLimit(parallelism(req.Parallelism))
	for _, p := range pipelines {
		g.Go(func() error {
			o.runModule(ctx, req, manifest, p)
			return nil
		})
	}
	_ = g.Wait()

	o.barrier(ctx, req, pipelines)

	report := &Report{Revision: req.Revision}
	var errs []error
	for _, p := range pipelines {
		report.Modules = append(report.Modules, ModuleReport{
			Module: p.name(),
			Stage:  p.stage,
			Cached: p.cached,
			Err:    p.err,
		})
		if p.err != nil {
			errs = append(errs, p.err)
		}
	}
	return report, joinErrors(errs)
}

// plan derives every mapping up front, so configuration errors surface before any I/O.
func (o *Orchestrator) plan(req Request) ([]*pipeline, error) {
	if req.Root == "" {
		return nil, domain.MissingParameter("root")
	}
	if _, err := domain.ParseRevision(req.Revision.String()); err != nil {
		return nil, err
	}
	if len(req.Modules) == 0 {
		return nil, domain.MissingParameter("module")
	}

	pipelines := make([]*pipeline, 0, len(req.Modules))
	seen := make(map[string]bool, len(req.Modules))
	for i := range req.Modules {
		m := &req.Modules[i]
		name := m.Name.String()
		if seen[name] {
			return nil, domain.Classify(domain.ErrConfiguration, domain.Tag(domain.ErrDuplicateModule, "module", name))
		}
		seen[name] = true

		mapping, err := domain.DeriveMapping(m, req.Revision, req.Root, req.OutputDir)
		if err != nil {
			return nil, err
		}
		pipelines = append(pipelines, &pipeline{
			module:      m,
			mapping:     mapping,
			fingerprint: mapping.Fingerprint(m),
			stage:       domain.StagePending,
			completed:   make(map[domain.Stage]bool),
		})
	}

	slices.SortFunc(pipelines, func(a, b *pipeline) int { return strings.Compare(a.name(), b.name()) })
	return pipelines, nil
}

func (o *Orchestrator) runModule(ctx context.Context, req Request, manifest *domain.Manifest, p *pipeline) {
	if o.upToDate(req, manifest, p) {
		_, vertex := o.telemetry.Record(ctx, p.name(), ports.WithGroup(req.Revision.String()))
		vertex.Cached()
		p.stage = domain.StageDone
		p.cached = true
		o.logger.Info(fmt.Sprintf("%s %s: up to date", p.name(), req.Revision))
		return
	}

	release, err := o.locks.Acquire(ctx, p.mapping.VendoredDir, p.mapping.OutputDir)
	if err != nil {
		p.fail(domain.StageVendoring, err)
		return
	}
	defer release()

	for n := range o.graph.PerModule() {
		if err := ctx.Err(); err != nil {
			p.fail(n.Stage, err)
			break
		}
		if err := p.advance(o.graph, n.Stage); err != nil {
			p.fail(n.Stage, err)
			break
		}
		if err := o.runStage(ctx, req, p, n.Stage); err != nil {
			p.fail(n.Stage, err)
			break
		}
		p.completed[n.Stage] = true
	}

	if p.err != nil {
		o.recordFailure(ctx, req, p)
		return
	}

	_, err = o.registry.Update(ctx, domain.ManifestPath(req.Root, req.OutputDir), func(m *domain.Manifest) error {
		m.Put(req.Revision, p.record(req.Root, domain.StageRenaming))
		return nil
	})
	if err != nil {
		p.fail(domain.StageRenaming, err)
	}
}

// upToDate reports whether the manifest holds a finished record with the same
// mapping fingerprint and the output tree still hashes to the recorded value.
func (o *Orchestrator) upToDate(req Request, manifest *domain.Manifest, p *pipeline) bool {
	if req.Force {
		return false
	}
	rec, ok := manifest.Lookup(req.Revision, p.name())
	if !ok || rec.State != domain.StageDone || rec.Fingerprint != p.fingerprint {
		return false
	}
	hash, err := o.hasher.HashTree(p.mapping.OutputDir)
	return err == nil && hash != "" && hash == rec.TreeHash
}

func (o *Orchestrator) runStage(ctx context.Context, req Request, p *pipeline, stage domain.Stage) error {
	vctx, vertex := o.telemetry.Record(ctx, p.name()+": "+string(stage), ports.WithGroup(req.Revision.String()))
	o.logger.Info(fmt.Sprintf("%s %s: %s", p.name(), req.Revision, stage))

	var err error
	switch stage {
	case domain.StageVendoring:
		err = o.vendor(vctx, req, p)
	case domain.StageRewriting:
		err = o.rewrite(vctx, req, p)
	case domain.StageRenaming:
		err = o.rename(vctx, req, p)
	default:
		err = domain.Tag(domain.ErrInvalidTransition, "stage", string(stage))
	}

	if err != nil {
		vertex.Log(domain.LogLevelError, err.Error())
	}
	vertex.Complete(err)
	return err
}

func (o *Orchestrator) vendor(ctx context.Context, req Request, p *pipeline) error {
	copied, err := o.vendorer.Ensure(ctx, req.Root, p.module, ports.VendorOptions{
		OutputDir: req.OutputDir,
		Platform:  domain.PlatformAndroid,
		Cleanup:   req.Cleanup,
		Force:     req.Force,
	})
	if err != nil {
		return err
	}
	if !copied {
		o.logger.Info(fmt.Sprintf("%s: vendored copy is current", p.name()))
		if v, ok := ports.VertexFromContext(ctx); ok {
			v.Log(domain.LogLevelInfo, "vendored copy is current")
		}
	}
	return nil
}

func (o *Orchestrator) rewrite(ctx context.Context, req Request, p *pipeline) error {
	area := staging.NewArea(domain.StagingPath(req.Root, req.OutputDir))
	scratch, err := area.Create()
	if err != nil {
		return err
	}
	defer area.Discard(scratch)

	if err := o.rewriter.Rewrite(ctx, p.mapping, scratch, ports.RewriteOptions{Strict: req.Strict}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return area.Commit(scratch, p.mapping.OutputDir)
}

func (o *Orchestrator) rename(ctx context.Context, req Request, p *pipeline) error {
	if len(p.module.Artifacts) > 0 {
		area := staging.NewArea(domain.StagingPath(req.Root, req.OutputDir))
		scratch, err := area.Create()
		if err != nil {
			return err
		}
		defer area.Discard(scratch)

		if err := staging.CopyTree(ctx, p.mapping.OutputDir, scratch, nil); err != nil {
			return err
		}
		records, err := o.renamer.Rename(ctx, scratch, req.Revision, p.module.Artifacts)
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := area.Commit(scratch, p.mapping.OutputDir); err != nil {
			return err
		}
		p.artifacts = records
	}

	hash, err := o.hasher.HashTree(p.mapping.OutputDir)
	if err != nil {
		return err
	}
	p.treeHash = hash
	return nil
}

// recordFailure marks the module failed in the manifest, even when ctx was canceled.
func (o *Orchestrator) recordFailure(ctx context.Context, req Request, p *pipeline) {
	o.logger.Error(p.err)

	_, err := o.registry.Update(context.WithoutCancel(ctx), domain.ManifestPath(req.Root, req.OutputDir),
		func(m *domain.Manifest) error {
			m.Put(req.Revision, p.record(req.Root, domain.StageFailed))
			return nil
		})
	if err != nil {
		o.logger.Error(zerr.With(zerr.Wrap(err, "failed to record module failure"), "module", p.name()))
	}
}

// barrier runs the barrier stages for every module that reached renaming.
// When a sibling failed, the survivors stay at renaming and report the
// revision as incomplete.
func (o *Orchestrator) barrier(ctx context.Context, req Request, pipelines []*pipeline) {
	var failed []string
	for _, p := range pipelines {
		if p.stage == domain.StageFailed {
			failed = append(failed, p.name())
		}
	}

	for _, p := range pipelines {
		if p.stage != domain.StageRenaming {
			continue
		}
		if len(failed) > 0 {
			detail := domain.Tag(domain.ErrRevisionIncomplete, "failed_modules", strings.Join(failed, ","))
			p.err = &domain.StageError{
				Stage:    domain.StageWrapperGeneration,
				Module:   p.name(),
				Revision: req.Revision,
				Err:      detail,
			}
			continue
		}
		o.finish(ctx, req, p)
	}
}

func (o *Orchestrator) finish(ctx context.Context, req Request, p *pipeline) {
	manifestPath := domain.ManifestPath(req.Root, req.OutputDir)

	for n := range o.graph.Barriers() {
		if err := ctx.Err(); err != nil {
			p.fail(n.Stage, err)
			break
		}
		if err := p.advance(o.graph, n.Stage); err != nil {
			p.fail(n.Stage, err)
			break
		}

		manifest, err := o.registry.Update(ctx, manifestPath, func(m *domain.Manifest) error {
			m.SetState(req.Revision, n.Stage, p.name())
			return nil
		})
		if err != nil {
			p.fail(n.Stage, err)
			break
		}

		vctx, vertex := o.telemetry.Record(ctx, p.name()+": "+string(n.Stage), ports.WithGroup(req.Revision.String()))
		o.logger.Info(fmt.Sprintf("%s %s: %s", p.name(), req.Revision, n.Stage))
		err = o.generateFacade(vctx, req.Root, req.OutputDir, manifest, p.name(), p.mapping.SourceNamespace)
		vertex.Complete(err)
		if err != nil {
			p.fail(n.Stage, err)
			break
		}
		p.completed[n.Stage] = true
	}

	if p.err != nil {
		o.recordFailure(ctx, req, p)
		return
	}

	if err := p.advance(o.graph, domain.StageDone); err != nil {
		p.fail(domain.StageWrapperGeneration, err)
		return
	}
	_, err := o.registry.Update(ctx, manifestPath, func(m *domain.Manifest) error {
		m.SetState(req.Revision, domain.StageDone, p.name())
		return nil
	})
	if err != nil {
		p.fail(domain.StageWrapperGeneration, err)
		return
	}
	o.logger.Info(fmt.Sprintf("%s %s: done", p.name(), req.Revision))
}

// facadeStates are the record states whose surfaces take part in a façade.
var facadeStates = []domain.Stage{domain.StageRenaming, domain.StageWrapperGeneration, domain.StageDone}

// generateFacade rebuilds the façade of module from manifest. A module that
// no longer has any revision with a surface loses its façade.
func (o *Orchestrator) generateFacade(
	ctx context.Context, root, outputDir string, manifest *domain.Manifest, module, sourcePackage string,
) error {
	dir := domain.FacadePath(root, outputDir, module)
	release, err := o.locks.Acquire(ctx, dir)
	if err != nil {
		return err
	}
	defer release()

	area := staging.NewArea(domain.StagingPath(root, outputDir))
	spec, ok := manifest.WrapperSpec(module, sourcePackage, facadeStates...)
	if !ok {
		return area.Remove(dir)
	}

	scratch, err := area.Create()
	if err != nil {
		return err
	}
	defer area.Discard(scratch)

	if err := o.generator.Generate(ctx, spec, scratch); err != nil {
		return err
	}
	return area.Commit(scratch, dir)
}

// Remove deletes rev from the output tree and the manifest, then regenerates
// the façades of the modules it carried.
func (o *Orchestrator) Remove(ctx context.Context, root, outputDir string, rev domain.RevisionIdentifier) error {
	if root == "" {
		return domain.MissingParameter("root")
	}
	if _, err := domain.ParseRevision(rev.String()); err != nil {
		return err
	}

	manifestPath := domain.ManifestPath(root, outputDir)
	manifest, err := o.registry.Load(manifestPath)
	if err != nil {
		return err
	}
	rm, ok := manifest.Revision(rev)
	if !ok {
		return domain.Classify(domain.ErrConfiguration, domain.Tag(domain.ErrRevisionNotFound, "revision", rev.String()))
	}
	modules := make(map[string]string, len(rm.Modules))
	for _, rec := range rm.Modules {
		modules[rec.Name] = rec.SourceNamespace
	}

	dir := domain.RevisionPath(root, outputDir, rev)
	release, err := o.locks.Acquire(ctx, dir)
	if err != nil {
		return err
	}
	err = staging.NewArea(domain.StagingPath(root, outputDir)).Remove(dir)
	release()
	if err != nil {
		return err
	}

	updated, err := o.registry.Update(ctx, manifestPath, func(m *domain.Manifest) error {
		m.RemoveRevision(rev)
		return nil
	})
	if err != nil {
		return err
	}
	o.logger.Info(fmt.Sprintf("removed revision %s", rev))

	var errs []error
	for _, name := range slices.Sorted(maps.Keys(modules)) {
		if err := o.generateFacade(ctx, root, outputDir, updated, name, modules[name]); err != nil {
			errs = append(errs, &domain.StageError{
				Stage: domain.StageWrapperGeneration, Module: name, Revision: rev, Err: err,
			})
		}
	}
	return joinErrors(errs)
}

// RegenerateWrappers rebuilds every façade from the manifest and marks the
// records that were waiting on the barrier as done.
func (o *Orchestrator) RegenerateWrappers(ctx context.Context, root, outputDir string) error {
	if root == "" {
		return domain.MissingParameter("root")
	}

	manifestPath := domain.ManifestPath(root, outputDir)
	manifest, err := o.registry.Load(manifestPath)
	if err != nil {
		return err
	}

	var errs []error
	var generated []string
	for _, name := range manifest.ModuleNames() {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		latest, source := latestRecord(manifest, name)
		vctx, vertex := o.telemetry.Record(ctx, name+": "+string(domain.StageWrapperGeneration))
		err := o.generateFacade(vctx, root, outputDir, manifest, name, source)
		vertex.Complete(err)
		if err != nil {
			errs = append(errs, &domain.StageError{
				Stage: domain.StageWrapperGeneration, Module: name, Revision: latest, Err: err,
			})
			continue
		}
		generated = append(generated, name)
	}

	if len(generated) > 0 {
		_, err := o.registry.Update(ctx, manifestPath, func(m *domain.Manifest) error {
			for i := range m.Revisions {
				rm := &m.Revisions[i]
				for j := range rm.Modules {
					rec := &rm.Modules[j]
					if slices.Contains(generated, rec.Name) &&
						(rec.State == domain.StageRenaming || rec.State == domain.StageWrapperGeneration) {
						rec.State = domain.StageDone
					}
				}
			}
			return nil
		})
		if err != nil {
			errs = append(errs, err)
		}
	}
	o.logger.Info(fmt.Sprintf("regenerated %d façades", len(generated)))
	return joinErrors(errs)
}

// latestRecord returns the newest revision carrying module and its source namespace.
func latestRecord(m *domain.Manifest, module string) (domain.RevisionIdentifier, string) {
	var rev domain.RevisionIdentifier
	var source string
	for _, rm := range m.Revisions {
		for _, rec := range rm.Modules {
			if rec.Name == module {
				rev, source = rm.Revision, rec.SourceNamespace
			}
		}
	}
	return rev, source
}

func parallelism(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// joinErrors returns the single error unchanged so callers can type-assert it.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}
