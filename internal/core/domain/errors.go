package domain

import (
	"errors"
	"fmt"

	"go.trai.ch/zerr"
)

// Error taxonomy. Every pipeline failure is classified with exactly one of these
// kinds via errors.Join, so callers can branch with errors.Is.
var (
	// ErrConfiguration is returned for a missing or invalid required parameter.
	// It is always raised before any I/O side effect.
	ErrConfiguration = zerr.New("configuration error")

	// ErrFetch is returned when the upstream location is unreachable or the declared subpath is missing.
	ErrFetch = zerr.New("fetch failed")

	// ErrConflict is returned when a target path already holds content that does not belong to the module.
	ErrConflict = zerr.New("target path conflict")

	// ErrAmbiguousRewrite is returned when a namespace match cannot be proven to sit on a segment boundary.
	ErrAmbiguousRewrite = zerr.New("ambiguous namespace rewrite")

	// ErrDanglingReference is returned when a binary artifact reference and its physical file disagree.
	ErrDanglingReference = zerr.New("dangling binary artifact reference")

	// ErrSurfaceMismatch is returned when two revisions declare incompatible signatures for one operation.
	ErrSurfaceMismatch = zerr.New("public surface mismatch")
)

var (
	// ErrMissingParameter is returned when a required invocation flag is absent.
	ErrMissingParameter = zerr.New("missing required parameter")

	// ErrInvalidRevision is returned when a revision identifier is not MAJOR.MINOR.PATCH.
	ErrInvalidRevision = zerr.New("invalid revision identifier, expected MAJOR.MINOR.PATCH")

	// ErrInvalidNamespace is returned when a namespace is not a dotted Java package name.
	ErrInvalidNamespace = zerr.New("invalid namespace")

	// ErrMissingRevisionPlaceholder is returned when a target namespace template does not reference {revision}.
	ErrMissingRevisionPlaceholder = zerr.New("target namespace template must contain " + RevisionPlaceholder)

	// ErrInvalidModuleName is returned when a module name contains invalid characters.
	ErrInvalidModuleName = zerr.New("module name can only contain alphanumeric characters, hyphens and underscores")

	// ErrDuplicateModule is returned when two modules share the same name.
	ErrDuplicateModule = zerr.New("duplicate module name")

	// ErrOverlappingTargets is returned when two modules vendor into nested target paths.
	ErrOverlappingTargets = zerr.New("module target paths overlap")

	// ErrInvalidPath is returned when a descriptor path is absolute or escapes the root.
	ErrInvalidPath = zerr.New("path must be relative and stay inside the root")

	// ErrModuleNotFound is returned when a requested module is not registered.
	ErrModuleNotFound = zerr.New("module not found")

	// ErrNoAndroidSubtree is returned when an iOS-only module is asked for a namespace revision.
	ErrNoAndroidSubtree = zerr.New("module declares no Android subtree")

	// ErrDuplicateOperation is returned when a surface declares the same operation twice.
	ErrDuplicateOperation = zerr.New("duplicate operation in public surface")

	// ErrReservedName is returned when a surface names an operation or parameter
	// after a Java keyword or a method the façade dispatcher declares itself.
	ErrReservedName = zerr.New("reserved name in public surface")

	// ErrInvalidArtifact is returned when an artifact descriptor is malformed.
	ErrInvalidArtifact = zerr.New("invalid binary artifact descriptor")

	// ErrStageAlreadyExists is returned when attempting to add a stage that already exists.
	ErrStageAlreadyExists = zerr.New("stage already exists")

	// ErrMissingDependency is returned when a stage requires a stage that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the stage graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrInvalidTransition is returned when a pipeline attempts to skip or revisit a stage.
	ErrInvalidTransition = zerr.New("invalid stage transition")

	// ErrPreconditionFailed is returned when a stage starts before its required stages completed.
	ErrPreconditionFailed = zerr.New("stage precondition not met")

	// ErrRevisionIncomplete is returned when wrapper generation is deferred because a sibling module failed.
	ErrRevisionIncomplete = zerr.New("wrapper generation deferred, revision has failed modules")

	// ErrRevisionNotFound is returned when a revision is not present in the manifest.
	ErrRevisionNotFound = zerr.New("revision not found in manifest")

	// ErrRegistryConflict is returned when a compare-and-swap on the manifest loses a race.
	ErrRegistryConflict = zerr.New("manifest was modified concurrently")

	// ErrRegistryReadFailed is returned when the manifest cannot be read.
	ErrRegistryReadFailed = zerr.New("failed to read manifest")

	// ErrRegistryUnmarshalFailed is returned when the manifest cannot be decoded.
	ErrRegistryUnmarshalFailed = zerr.New("failed to unmarshal manifest")

	// ErrRegistryMarshalFailed is returned when the manifest cannot be encoded.
	ErrRegistryMarshalFailed = zerr.New("failed to marshal manifest")

	// ErrRegistryWriteFailed is returned when the manifest cannot be written.
	ErrRegistryWriteFailed = zerr.New("failed to write manifest")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrStagingFailed is returned when a staging directory cannot be prepared or committed.
	ErrStagingFailed = zerr.New("failed to stage output")

	// ErrFileOpenFailed is returned when a file cannot be opened.
	ErrFileOpenFailed = zerr.New("failed to open file")

	// ErrFileHashFailed is returned when hashing a file fails.
	ErrFileHashFailed = zerr.New("failed to hash file content")

	// ErrWriteHashFailed is returned when writing the hash to the digest fails.
	ErrWriteHashFailed = zerr.New("failed to write hash to digest")

	// ErrCommandFailed is returned when an external command exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")
)

// MissingParameter reports a required flag that was not supplied.
func MissingParameter(flag string) error {
	detail := zerr.With(zerr.New(fmt.Sprintf("missing required flag --%s", flag)), "flag", flag)
	return Classify(ErrConfiguration, errors.Join(ErrMissingParameter, detail))
}

// Classify tags detail with a taxonomy kind.
func Classify(kind, detail error) error {
	if detail == nil {
		return kind
	}
	return errors.Join(kind, detail)
}

// Tag attaches metadata to kind. The result still matches kind with errors.Is.
func Tag(kind error, key string, value any) error {
	return zerr.With(zerr.Wrap(kind, ""), key, value)
}

// StageError reports the stage, module and revision of a failed pipeline so
// the unit can be re-run after the root cause is fixed.
type StageError struct {
	Stage    Stage
	Module   string
	Revision RevisionIdentifier
	Err      error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed for module %q at revision %s: %v", e.Stage, e.Module, e.Revision, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
