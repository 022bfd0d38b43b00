// Package config provides the module registry loader for verso.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/verso/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// DefaultCleanup lists the patterns removed from a vendored tree when the
// registry does not override them. Patterns with a slash are anchored to the
// subtree root, so source packages named build survive.
var DefaultCleanup = []string{
	".git",
	".gradle",
	".idea",
	"*.iml",
	"*.podspec",
	"/build",
	"Podfile.lock",
	"gradle-wrapper.jar",
	"gradlew",
	"gradlew.bat",
	"local.properties",
	"package.json",
}

var (
	validModuleNameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")
	validArtifactRegex   = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+$`)
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the registry at path and returns the validated configuration.
func (l *Loader) Load(configPath string) (*domain.Config, error) {
	data, err := os.ReadFile(configPath) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, domain.Classify(domain.ErrConfiguration,
			zerr.With(domain.Classify(domain.ErrConfigReadFailed, err), "path", configPath))
	}

	var file Versofile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, domain.Classify(domain.ErrConfiguration,
			zerr.With(domain.Classify(domain.ErrConfigParseFailed, err), "path", configPath))
	}

	return l.build(&file)
}

func (l *Loader) build(file *Versofile) (*domain.Config, error) {
	if file.Version != "" && file.Version != "1" {
		return nil, configError(zerr.With(zerr.New("unsupported registry version"), "version", file.Version))
	}
	if file.Parallelism < 0 {
		return nil, configError(zerr.With(zerr.New("parallelism must not be negative"), "parallelism", file.Parallelism))
	}
	if file.Output != "" {
		if err := validateRelPath("output", file.Output); err != nil {
			return nil, configError(err)
		}
	}

	cfg := &domain.Config{
		OutputDir:   file.Output,
		Parallelism: file.Parallelism,
		Strict:      file.Rewrite.Strict,
		Cleanup:     slices.Clone(DefaultCleanup),
	}
	if file.Vendoring.Cleanup != nil {
		cfg.Cleanup = slices.Clone(file.Vendoring.Cleanup)
	}

	names := make([]string, 0, len(file.Modules))
	for name := range file.Modules {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		m, err := l.buildModule(name, file.Modules[name])
		if err != nil {
			return nil, err
		}
		cfg.Modules = append(cfg.Modules, m)
	}

	if err := validateTargets(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) buildModule(name string, dto ModuleDTO) (domain.VendoredModule, error) {
	if !validModuleNameRegex.MatchString(name) {
		return domain.VendoredModule{}, configError(domain.Tag(domain.ErrInvalidModuleName, "module", name))
	}
	if dto.RepoURL == "" {
		return domain.VendoredModule{}, moduleError(name, domain.Tag(domain.ErrMissingParameter, "field", "repoUrl"))
	}
	android := dto.SourceAndroidPath != "" || dto.TargetAndroidPath != ""
	ios := dto.SourceIosPath != "" && dto.TargetIosPath != ""
	switch {
	case android && (dto.SourceAndroidPath == "" || dto.TargetAndroidPath == ""):
		return domain.VendoredModule{}, moduleError(name,
			domain.Tag(domain.ErrMissingParameter, "field", "sourceAndroidPath/targetAndroidPath"))
	case !android && !ios:
		return domain.VendoredModule{}, moduleError(name,
			domain.Tag(domain.ErrMissingParameter, "field", "android or ios source/target paths"))
	case !android && dto.Surface != nil:
		return domain.VendoredModule{}, moduleError(name,
			zerr.New("surface requires an Android subtree"))
	}
	if (android || dto.SourceAndroidPackage != "") && !domain.IsJavaPackage(dto.SourceAndroidPackage) {
		return domain.VendoredModule{}, moduleError(name,
			domain.Tag(domain.ErrInvalidNamespace, "sourceAndroidPackage", dto.SourceAndroidPackage))
	}
	if dto.TargetAndroidPackage != "" && !strings.Contains(dto.TargetAndroidPackage, domain.RevisionPlaceholder) {
		return domain.VendoredModule{}, moduleError(name,
			domain.Tag(domain.ErrMissingRevisionPlaceholder, "targetAndroidPackage", dto.TargetAndroidPackage))
	}

	for _, f := range [][2]string{
		{"sourceAndroidPath", dto.SourceAndroidPath},
		{"targetAndroidPath", dto.TargetAndroidPath},
		{"sourceIosPath", dto.SourceIosPath},
		{"targetIosPath", dto.TargetIosPath},
	} {
		if f[1] == "" {
			continue
		}
		if err := validateRelPath(f[0], f[1]); err != nil {
			return domain.VendoredModule{}, moduleError(name, err)
		}
	}
	if android && (dto.SourceIosPath == "") != (dto.TargetIosPath == "") {
		l.Logger.Warn(fmt.Sprintf("module %s declares only one of sourceIosPath/targetIosPath, iOS vendoring disabled", name))
		dto.SourceIosPath, dto.TargetIosPath = "", ""
	}

	artifacts, err := buildArtifacts(dto.Artifacts)
	if err != nil {
		return domain.VendoredModule{}, moduleError(name, err)
	}

	surface, err := buildSurface(dto.Surface)
	if err != nil {
		return domain.VendoredModule{}, moduleError(name, err)
	}
	if surface == nil && android {
		l.Logger.Warn(fmt.Sprintf("module %s declares no surface, no façade will be generated", name))
	}

	return domain.VendoredModule{
		Name:                     domain.NewInternedString(name),
		RepoURL:                  dto.RepoURL,
		Ref:                      dto.Ref,
		SourceIosPath:            cleanRel(dto.SourceIosPath),
		SourceAndroidPath:        cleanRel(dto.SourceAndroidPath),
		TargetIosPath:            cleanRel(dto.TargetIosPath),
		TargetAndroidPath:        cleanRel(dto.TargetAndroidPath),
		SourceAndroidPackage:     dto.SourceAndroidPackage,
		TargetAndroidPackage:     dto.TargetAndroidPackage,
		InstallableInManagedApps: dto.InstallableInManagedApps,
		SkipCleanup:              dto.SkipCleanup,
		Artifacts:                artifacts,
		Surface:                  surface,
	}, nil
}

func buildArtifacts(dtos []ArtifactDTO) ([]domain.ArtifactSpec, error) {
	var out []domain.ArtifactSpec
	seen := make(map[string]bool)
	for _, a := range dtos {
		if !validArtifactRegex.MatchString(a.Name) {
			return nil, domain.Tag(domain.ErrInvalidArtifact, "name", a.Name)
		}
		if a.File != "" && (!validArtifactRegex.MatchString(a.File) || !strings.Contains(a.File, a.Name)) {
			return nil, zerr.With(domain.Tag(domain.ErrInvalidArtifact, "name", a.Name), "file", a.File)
		}
		if seen[a.Name] {
			return nil, zerr.With(domain.Tag(domain.ErrInvalidArtifact, "name", a.Name), "reason", "duplicate")
		}
		seen[a.Name] = true
		out = append(out, domain.ArtifactSpec{Name: a.Name, File: a.File, BuildFromSource: a.BuildFromSource})
	}
	return out, nil
}

func buildSurface(dto *SurfaceDTO) (*domain.Surface, error) {
	if dto == nil {
		return nil, nil
	}
	if !isJavaIdentifier(dto.Class) || domain.IsJavaKeyword(dto.Class) {
		return nil, zerr.With(zerr.New("surface class must be a Java identifier"), "class", dto.Class)
	}
	if dto.Package != "" && !domain.IsJavaPackage(dto.Package) {
		return nil, domain.Tag(domain.ErrInvalidNamespace, "package", dto.Package)
	}

	s := &domain.Surface{Class: dto.Class, Package: dto.Package}
	seen := make(map[string]bool)
	for _, op := range dto.Operations {
		if !isJavaIdentifier(op.Name) {
			return nil, zerr.With(zerr.New("operation name must be a Java identifier"), "operation", op.Name)
		}
		if seen[op.Name] {
			return nil, domain.Tag(domain.ErrDuplicateOperation, "operation", op.Name)
		}
		seen[op.Name] = true

		params := make([]domain.Param, 0, len(op.Params))
		for i, p := range op.Params {
			if strings.TrimSpace(p.Type) == "" {
				return nil, zerr.With(zerr.With(zerr.New("parameter type is required"), "operation", op.Name), "index", i)
			}
			pname := p.Name
			if pname == "" {
				pname = fmt.Sprintf("arg%d", i)
			}
			if !isJavaIdentifier(pname) {
				return nil, zerr.With(zerr.With(zerr.New("parameter name must be a Java identifier"), "operation", op.Name), "param", pname)
			}
			params = append(params, domain.Param{Name: pname, Type: strings.TrimSpace(p.Type)})
		}
		operation := domain.Operation{
			Name:    op.Name,
			Params:  params,
			Returns: strings.TrimSpace(op.Returns),
		}
		if err := operation.CheckNames(); err != nil {
			return nil, err
		}
		s.Operations = append(s.Operations, operation)
	}
	return s, nil
}

// validateTargets rejects modules whose vendored trees would nest inside each other.
func validateTargets(cfg *domain.Config) error {
	for i := range cfg.Modules {
		for j := i + 1; j < len(cfg.Modules); j++ {
			a, b := cfg.Modules[i], cfg.Modules[j]
			if a.HasAndroid() && b.HasAndroid() && pathsOverlap(a.TargetAndroidPath, b.TargetAndroidPath) {
				err := domain.Tag(domain.ErrOverlappingTargets, "modules", a.Name.String()+","+b.Name.String())
				return configError(err)
			}
			if a.TargetIosPath != "" && b.TargetIosPath != "" && pathsOverlap(a.TargetIosPath, b.TargetIosPath) {
				err := domain.Tag(domain.ErrOverlappingTargets, "modules", a.Name.String()+","+b.Name.String())
				return configError(err)
			}
		}
	}
	return nil
}

func pathsOverlap(a, b string) bool {
	return a == b || strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}

func validateRelPath(field, p string) error {
	slashed := strings.ReplaceAll(p, "\\", "/")
	clean := path.Clean(slashed)
	if path.IsAbs(slashed) || clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return zerr.With(domain.Tag(domain.ErrInvalidPath, "field", field), "path", p)
	}
	return nil
}

func cleanRel(p string) string {
	if p == "" {
		return ""
	}
	return path.Clean(strings.ReplaceAll(p, "\\", "/"))
}

func isJavaIdentifier(s string) bool {
	return s != "" && !strings.Contains(s, ".") && domain.IsJavaPackage(s)
}

func configError(err error) error {
	return domain.Classify(domain.ErrConfiguration, err)
}

func moduleError(name string, err error) error {
	return configError(zerr.With(err, "module", name))
}
