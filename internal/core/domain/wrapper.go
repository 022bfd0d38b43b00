package domain

import (
	"fmt"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Surface is the public API a module exposes to the host application.
type Surface struct {
	// Class is the simple name of the implementation class inside the module namespace.
	Class string `json:"class"`
	// Package overrides the façade package. Defaults to facade.<source package>.
	Package    string      `json:"package,omitempty"`
	Operations []Operation `json:"operations"`
}

// FacadePackage returns the package the façade is generated into.
func (s *Surface) FacadePackage(sourcePackage string) string {
	if s.Package != "" {
		return s.Package
	}
	return "facade." + sourcePackage
}

// Operation returns the operation with the given name.
func (s *Surface) Operation(name string) (Operation, bool) {
	for _, op := range s.Operations {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

// Param is one operation parameter.
type Param struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Operation is one static method of the public surface.
type Operation struct {
	Name    string  `json:"name"`
	Params  []Param `json:"params,omitempty"`
	Returns string  `json:"returns,omitempty"`
}

// ReturnType returns the declared return type, "void" when none was declared.
func (o Operation) ReturnType() string {
	if o.Returns == "" {
		return "void"
	}
	return o.Returns
}

// IsVoid reports whether the operation returns nothing.
func (o Operation) IsVoid() bool {
	return o.ReturnType() == "void"
}

// Signature renders the operation as "ReturnType name(Type, Type)". Parameter names are omitted.
func (o Operation) Signature() string {
	types := make([]string, len(o.Params))
	for i, p := range o.Params {
		types[i] = p.Type
	}
	return o.ReturnType() + " " + o.Name + "(" + strings.Join(types, ", ") + ")"
}

// DispatcherMethods are the static methods every façade dispatcher declares.
var DispatcherMethods = []string{"select", "revisions", "active"}

var javaKeywords = map[string]bool{
	"_": true, "abstract": true, "assert": true, "boolean": true, "break": true, "byte": true,
	"case": true, "catch": true, "char": true, "class": true, "const": true, "continue": true,
	"default": true, "do": true, "double": true, "else": true, "enum": true, "extends": true,
	"false": true, "final": true, "finally": true, "float": true, "for": true, "goto": true,
	"if": true, "implements": true, "import": true, "instanceof": true, "int": true,
	"interface": true, "long": true, "native": true, "new": true, "null": true, "package": true,
	"private": true, "protected": true, "public": true, "return": true, "short": true,
	"static": true, "strictfp": true, "super": true, "switch": true, "synchronized": true,
	"this": true, "throw": true, "throws": true, "transient": true, "true": true, "try": true,
	"void": true, "volatile": true, "while": true,
}

// IsJavaKeyword reports whether s is a reserved word or literal of the Java language.
func IsJavaKeyword(s string) bool {
	return javaKeywords[s]
}

// CheckNames rejects operation and parameter names the generated façade cannot declare.
func (o Operation) CheckNames() error {
	if IsJavaKeyword(o.Name) || slices.Contains(DispatcherMethods, o.Name) {
		return Tag(ErrReservedName, "operation", o.Name)
	}
	for _, p := range o.Params {
		if IsJavaKeyword(p.Name) {
			return zerr.With(Tag(ErrReservedName, "operation", o.Name), "param", p.Name)
		}
	}
	return nil
}

// RevisionSurface is the surface one revision exposes and the namespace it lives in.
type RevisionSurface struct {
	Revision        RevisionIdentifier
	TargetNamespace string
	Surface         Surface
}

// WrapperSpec is the input to façade generation for one module.
type WrapperSpec struct {
	Module        string
	FacadePackage string
	Class         string
	// Revisions is sorted ascending by revision.
	Revisions []RevisionSurface
}

// Latest returns the newest revision of w.
func (w *WrapperSpec) Latest() RevisionIdentifier {
	if len(w.Revisions) == 0 {
		return ""
	}
	return w.Revisions[len(w.Revisions)-1].Revision
}

// MergeOperations returns the union of operations across revisions in first-seen order.
// An operation declared by two revisions with different parameter or return types
// is a surface mismatch.
func (w *WrapperSpec) MergeOperations() ([]Operation, error) {
	var merged []Operation
	seen := make(map[string]RevisionIdentifier)

	for _, rs := range w.Revisions {
		for _, op := range rs.Surface.Operations {
			firstRev, ok := seen[op.Name]
			if !ok {
				seen[op.Name] = rs.Revision
				merged = append(merged, op)
				continue
			}
			var first Operation
			for _, m := range merged {
				if m.Name == op.Name {
					first = m
					break
				}
			}
			if first.Signature() != op.Signature() {
				var detail error = zerr.New(fmt.Sprintf("operation %s: revision %s declares %q, revision %s declares %q",
					op.Name, firstRev, first.Signature(), rs.Revision, op.Signature()))
				detail = zerr.With(detail, "module", w.Module)
				detail = zerr.With(detail, "operation", op.Name)
				return nil, Classify(ErrSurfaceMismatch, detail)
			}
		}
	}
	return merged, nil
}
