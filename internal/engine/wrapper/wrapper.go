// Package wrapper generates the façade that dispatches calls to one of the
// embedded revisions of a module.
package wrapper

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"text/template"

	"go.trai.ch/verso/internal/core/domain"
	"go.trai.ch/verso/internal/core/ports"
	"go.trai.ch/verso/internal/engine/staging"
	"go.trai.ch/zerr"
)

var _ ports.WrapperGenerator = (*Generator)(nil)

// Generator implements ports.WrapperGenerator by rendering Java sources.
// Its output depends only on the WrapperSpec it is given.
type Generator struct {
	logger ports.Logger
}

// NewGenerator creates a new Generator.
func NewGenerator(logger ports.Logger) *Generator {
	return &Generator{logger: logger}
}

// File is one generated source, relative to the façade root.
type File struct {
	Path    string
	Content []byte
}

// Generate renders spec and writes the sources below dst, in the directory of
// the façade package.
func (g *Generator) Generate(ctx context.Context, spec domain.WrapperSpec, dst string) error {
	files, err := Render(spec)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := staging.WriteFile(filepath.Join(dst, filepath.FromSlash(f.Path)), f.Content, domain.FilePerm); err != nil {
			return err
		}
	}
	g.logger.Info(fmt.Sprintf("generated façade %s.%s for %s (%d revisions)",
		spec.FacadePackage, spec.Class, spec.Module, len(spec.Revisions)))
	return nil
}

// Render returns the dispatcher followed by one binding per revision, oldest first.
func Render(spec domain.WrapperSpec) ([]File, error) {
	if err := validate(spec); err != nil {
		return nil, err
	}

	spec.Revisions = slices.Clone(spec.Revisions)
	slices.SortFunc(spec.Revisions, func(a, b domain.RevisionSurface) int {
		return a.Revision.Compare(b.Revision)
	})

	ops, err := spec.MergeOperations()
	if err != nil {
		return nil, err
	}
	methods := make([]method, len(ops))
	for i, op := range ops {
		methods[i] = toMethod(op)
	}

	dir := strings.ReplaceAll(spec.FacadePackage, ".", "/")
	data := dispatcherData{
		Package:    spec.FacadePackage,
		Class:      spec.Class,
		Default:    spec.Latest().String(),
		Operations: methods,
	}

	files := make([]File, 0, len(spec.Revisions)+1)
	for _, rs := range spec.Revisions {
		implClass := spec.Class + "Impl_" + rs.Revision.Qualifier()
		data.Bindings = append(data.Bindings, binding{Revision: rs.Revision.String(), ImplClass: implClass})

		bd := bindingData{
			Package:   spec.FacadePackage,
			Class:     spec.Class,
			ImplClass: implClass,
			Revision:  rs.Revision.String(),
			Target:    rs.TargetNamespace + "." + rs.Surface.Class,
		}
		for _, m := range methods {
			_, ok := rs.Surface.Operation(m.Name)
			bd.Methods = append(bd.Methods, boundMethod{method: m, Supported: ok})
		}

		content, err := render(bindingTemplate, bd)
		if err != nil {
			return nil, err
		}
		files = append(files, File{Path: dir + "/" + implClass + ".java", Content: content})
	}

	content, err := render(dispatcherTemplate, data)
	if err != nil {
		return nil, err
	}
	return append([]File{{Path: dir + "/" + spec.Class + ".java", Content: content}}, files...), nil
}

func validate(spec domain.WrapperSpec) error {
	if len(spec.Revisions) == 0 {
		return wrapperError(spec, zerr.New("no revision declares a surface"))
	}
	if spec.Class == "" || strings.Contains(spec.Class, ".") ||
		!domain.IsJavaPackage(spec.Class) || domain.IsJavaKeyword(spec.Class) {
		return wrapperError(spec, zerr.With(zerr.New("invalid façade class"), "class", spec.Class))
	}
	if !domain.IsJavaPackage(spec.FacadePackage) {
		return wrapperError(spec, domain.Tag(domain.ErrInvalidNamespace, "package", spec.FacadePackage))
	}

	seen := make(map[domain.RevisionIdentifier]bool, len(spec.Revisions))
	for _, rs := range spec.Revisions {
		if seen[rs.Revision] {
			return wrapperError(spec, zerr.With(zerr.New("revision listed twice"), "revision", rs.Revision.String()))
		}
		seen[rs.Revision] = true
		if !domain.IsJavaPackage(rs.TargetNamespace) {
			return wrapperError(spec, domain.Tag(domain.ErrInvalidNamespace, "namespace", rs.TargetNamespace))
		}
		for _, op := range rs.Surface.Operations {
			if err := op.CheckNames(); err != nil {
				return wrapperError(spec, zerr.With(err, "revision", rs.Revision.String()))
			}
		}
	}
	return nil
}

func toMethod(op domain.Operation) method {
	decls := make([]string, len(op.Params))
	args := make([]string, len(op.Params))
	for i, p := range op.Params {
		decls[i] = p.Type + " " + p.Name
		args[i] = p.Name
	}
	return method{
		Name:    op.Name,
		Returns: op.ReturnType(),
		Void:    op.IsVoid(),
		Params:  strings.Join(decls, ", "),
		Args:    strings.Join(args, ", "),
	}
}

func render(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to render façade"), "template", tmpl.Name())
	}
	return buf.Bytes(), nil
}

func wrapperError(spec domain.WrapperSpec, err error) error {
	return domain.Classify(domain.ErrConfiguration, zerr.With(err, "module", spec.Module))
}
