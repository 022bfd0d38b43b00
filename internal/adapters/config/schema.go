package config

// Versofile represents the structure of the verso.yaml module registry.
type Versofile struct {
	Version     string               `yaml:"version"`
	Output      string               `yaml:"output"`
	Parallelism int                  `yaml:"parallelism"`
	Rewrite     RewriteDTO           `yaml:"rewrite"`
	Vendoring   VendoringDTO         `yaml:"vendoring"`
	Modules     map[string]ModuleDTO `yaml:"modules"`
}

// RewriteDTO holds namespace rewriting settings.
type RewriteDTO struct {
	Strict bool `yaml:"strict"`
}

// VendoringDTO holds vendoring settings.
type VendoringDTO struct {
	// Cleanup replaces the default post-copy cleanup patterns when set.
	Cleanup []string `yaml:"cleanup"`
}

// ModuleDTO represents a vendored module descriptor in the configuration.
type ModuleDTO struct {
	RepoURL                  string        `yaml:"repoUrl"`
	Ref                      string        `yaml:"ref"`
	SourceIosPath            string        `yaml:"sourceIosPath"`
	SourceAndroidPath        string        `yaml:"sourceAndroidPath"`
	TargetIosPath            string        `yaml:"targetIosPath"`
	TargetAndroidPath        string        `yaml:"targetAndroidPath"`
	SourceAndroidPackage     string        `yaml:"sourceAndroidPackage"`
	TargetAndroidPackage     string        `yaml:"targetAndroidPackage"`
	InstallableInManagedApps bool          `yaml:"installableInManagedApps"`
	SkipCleanup              bool          `yaml:"skipCleanup"`
	Artifacts                []ArtifactDTO `yaml:"artifacts"`
	Surface                  *SurfaceDTO   `yaml:"surface"`
}

// ArtifactDTO represents a native binary shipped by a module.
type ArtifactDTO struct {
	Name            string `yaml:"name"`
	File            string `yaml:"file"`
	BuildFromSource bool   `yaml:"buildFromSource"`
}

// SurfaceDTO represents the public surface of a module.
type SurfaceDTO struct {
	Class      string         `yaml:"class"`
	Package    string         `yaml:"package"`
	Operations []OperationDTO `yaml:"operations"`
}

// OperationDTO represents one public operation.
type OperationDTO struct {
	Name    string     `yaml:"name"`
	Params  []ParamDTO `yaml:"params"`
	Returns string     `yaml:"returns"`
}

// ParamDTO represents one operation parameter.
type ParamDTO struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}
