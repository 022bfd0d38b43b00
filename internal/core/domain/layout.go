package domain

import "path/filepath"

const (
	// ConfigFileName is the name of the module registry file.
	ConfigFileName = "verso.yaml"

	// DefaultOutputDirName is the directory under the root that holds all revision trees.
	DefaultOutputDirName = "versioned"

	// FacadeDirName is the directory under the output directory that holds generated façades.
	FacadeDirName = "facade"

	// StagingDirName is the directory under the output directory used for uncommitted stage output.
	StagingDirName = ".staging"

	// ManifestFileName is the name of the manifest enumerating revisions and their modules.
	ManifestFileName = "manifest.json"

	// VendorMarkerFileName marks a vendored tree with the identity of the module it came from.
	VendorMarkerFileName = ".verso-vendor.json"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// ExecFilePerm is the permission for files that carried an executable bit upstream.
	ExecFilePerm = 0o755
)

// OutputPath returns the absolute-or-relative output directory for a root.
func OutputPath(root, outputDir string) string {
	if outputDir == "" {
		outputDir = DefaultOutputDirName
	}
	return filepath.Join(root, outputDir)
}

// ManifestPath returns the path of the manifest for a root.
func ManifestPath(root, outputDir string) string {
	return filepath.Join(OutputPath(root, outputDir), ManifestFileName)
}

// StagingPath returns the staging directory for a root.
func StagingPath(root, outputDir string) string {
	return filepath.Join(OutputPath(root, outputDir), StagingDirName)
}

// FacadePath returns the directory holding the generated façade of a module.
func FacadePath(root, outputDir, module string) string {
	return filepath.Join(OutputPath(root, outputDir), FacadeDirName, module)
}

// RevisionPath returns the directory holding every module tree of one revision.
func RevisionPath(root, outputDir string, rev RevisionIdentifier) string {
	return filepath.Join(OutputPath(root, outputDir), rev.Qualifier())
}
