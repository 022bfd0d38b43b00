package domain

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/zerr"
)

// NamespaceMapping is the concrete rewrite plan for one (module, revision) pair.
// It is a pure function of its inputs: deriving it twice yields identical values.
type NamespaceMapping struct {
	Module   string
	Revision RevisionIdentifier

	SourceNamespace string
	TargetNamespace string

	// VendoredDir is the unversioned tree produced by vendoring.
	VendoredDir string
	// OutputDir is the revision-qualified destination of the module tree.
	OutputDir string
}

// DeriveMapping computes the mapping of module m into revision rev under root.
func DeriveMapping(m *VendoredModule, rev RevisionIdentifier, root, outputDir string) (NamespaceMapping, error) {
	name := m.Name.String()
	if !m.HasAndroid() {
		return NamespaceMapping{}, Classify(ErrConfiguration, Tag(ErrNoAndroidSubtree, "module", name))
	}
	if m.TargetAndroidPath == "" {
		return NamespaceMapping{}, Classify(ErrConfiguration,
			zerr.With(Tag(ErrInvalidPath, "field", "targetAndroidPath"), "module", name))
	}
	if !IsJavaPackage(m.SourceAndroidPackage) {
		return NamespaceMapping{}, Classify(ErrConfiguration,
			zerr.With(Tag(ErrInvalidNamespace, "namespace", m.SourceAndroidPackage), "module", name))
	}

	tmpl := m.TargetNamespaceTemplate()
	if !strings.Contains(tmpl, RevisionPlaceholder) {
		return NamespaceMapping{}, Classify(ErrConfiguration,
			zerr.With(Tag(ErrMissingRevisionPlaceholder, "template", tmpl), "module", name))
	}
	target := strings.ReplaceAll(tmpl, RevisionPlaceholder, rev.Qualifier())
	if !IsJavaPackage(target) {
		return NamespaceMapping{}, Classify(ErrConfiguration,
			zerr.With(Tag(ErrInvalidNamespace, "namespace", target), "module", name))
	}

	return NamespaceMapping{
		Module:          name,
		Revision:        rev,
		SourceNamespace: m.SourceAndroidPackage,
		TargetNamespace: target,
		VendoredDir:     filepath.Join(root, filepath.FromSlash(m.TargetAndroidPath)),
		OutputDir: filepath.Join(
			RevisionPath(root, outputDir, rev),
			filepath.FromSlash(m.TargetAndroidPath),
		),
	}, nil
}

// SourcePath returns the source namespace in slash form ("com/acme/foolib").
func (nm NamespaceMapping) SourcePath() string {
	return strings.ReplaceAll(nm.SourceNamespace, ".", "/")
}

// TargetPath returns the target namespace in slash form.
func (nm NamespaceMapping) TargetPath() string {
	return strings.ReplaceAll(nm.TargetNamespace, ".", "/")
}

// Fingerprint returns a deterministic hash of the mapping and the module
// descriptor fields that shape the output tree.
func (nm NamespaceMapping) Fingerprint(m *VendoredModule) string {
	var builder strings.Builder
	write := func(parts ...string) {
		for _, p := range parts {
			builder.WriteString(p)
			builder.WriteString(";")
		}
	}

	write(nm.Module, nm.Revision.String(), nm.SourceNamespace, nm.TargetNamespace,
		filepath.ToSlash(nm.VendoredDir), filepath.ToSlash(nm.OutputDir))
	for _, a := range m.Artifacts {
		build := "prebuilt"
		if a.BuildFromSource {
			build = "source"
		}
		write("artifact", a.Name, a.PhysicalName(), build)
	}
	if m.Surface != nil {
		write("surface", m.Surface.Class, m.Surface.FacadePackage(m.SourceAndroidPackage))
		for _, op := range m.Surface.Operations {
			write("op", op.Signature())
		}
	}

	return strconv.FormatUint(xxhash.Sum64String(builder.String()), 16)
}
