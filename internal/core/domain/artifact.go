package domain

import "strings"

// ReferenceKind classifies where a binary artifact is referenced.
type ReferenceKind string

const (
	// ReferencePhysical is a mention of the on-disk file name (lib<name>.so).
	ReferencePhysical ReferenceKind = "physical"
	// ReferenceLoadCall is a System.loadLibrary("<name>") call.
	ReferenceLoadCall ReferenceKind = "load_call"
	// ReferenceBuildDeclaration is a CMake, ndk-build or Gradle declaration of the library target.
	ReferenceBuildDeclaration ReferenceKind = "build_declaration"
)

// ReferenceSite is one location that names a binary artifact.
type ReferenceSite struct {
	// Path is slash-separated and relative to the module tree.
	Path string
	Line int
	Kind ReferenceKind
}

// ArtifactRecord captures a completed rename so later runs can detect drift.
type ArtifactRecord struct {
	Name         string `json:"name"`
	OriginalFile string `json:"originalFile"`
	RenamedName  string `json:"renamedName"`
	RenamedFile  string `json:"renamedFile"`
}

// Rename returns the revision-qualified identity of a.
// The logical name becomes <name>-<qualifier> and the file lib<name>-<qualifier>.so.
func (a ArtifactSpec) Rename(rev RevisionIdentifier) ArtifactRecord {
	renamed := a.Name + "-" + rev.Qualifier()
	physical := a.PhysicalName()
	ext := ".so"
	if i := strings.LastIndex(physical, "."); i > 0 {
		ext = physical[i:]
	}
	stem := strings.TrimSuffix(physical, ext)
	return ArtifactRecord{
		Name:         a.Name,
		OriginalFile: physical,
		RenamedName:  renamed,
		RenamedFile:  stem + "-" + rev.Qualifier() + ext,
	}
}
