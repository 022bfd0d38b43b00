package domain

import "strings"

// RevisionPlaceholder is substituted with the revision qualifier in target namespace templates.
const RevisionPlaceholder = "{revision}"

// Platform selects which descriptor paths a vendoring run copies.
type Platform string

const (
	// PlatformAndroid vendors the Android subtree only.
	PlatformAndroid Platform = "android"
	// PlatformIOS vendors the iOS subtree only.
	PlatformIOS Platform = "ios"
	// PlatformAll vendors every subtree the descriptor declares.
	PlatformAll Platform = "all"
)

// VendoredModule describes an upstream native module that is copied into the
// owning tree and versioned per revision.
// It uses InternedString for the name, which repeats across every revision record.
type VendoredModule struct {
	Name    InternedString
	RepoURL string
	Ref     string

	SourceIosPath     string
	SourceAndroidPath string
	TargetIosPath     string
	TargetAndroidPath string

	SourceAndroidPackage string
	TargetAndroidPackage string

	InstallableInManagedApps bool
	SkipCleanup              bool

	Artifacts []ArtifactSpec
	Surface   *Surface
}

// HasAndroid reports whether m declares an Android subtree. Modules without
// one are vendored for iOS only and never versioned.
func (m *VendoredModule) HasAndroid() bool {
	return m.SourceAndroidPath != "" || m.TargetAndroidPath != ""
}

// TargetNamespaceTemplate returns the declared template, or the default
// "versioned.{revision}.<source package>" when none was declared.
func (m *VendoredModule) TargetNamespaceTemplate() string {
	if m.TargetAndroidPackage != "" {
		return m.TargetAndroidPackage
	}
	return "versioned." + RevisionPlaceholder + "." + m.SourceAndroidPackage
}

// PlatformPaths returns the (source, target) subpath pairs vendored for p.
// Pairs with an empty source path are omitted.
func (m *VendoredModule) PlatformPaths(p Platform) [][2]string {
	var pairs [][2]string
	if (p == PlatformAndroid || p == PlatformAll) && m.SourceAndroidPath != "" {
		pairs = append(pairs, [2]string{m.SourceAndroidPath, m.TargetAndroidPath})
	}
	if (p == PlatformIOS || p == PlatformAll) && m.SourceIosPath != "" {
		pairs = append(pairs, [2]string{m.SourceIosPath, m.TargetIosPath})
	}
	return pairs
}

// ArtifactSpec declares one loadable native binary shipped by a module.
type ArtifactSpec struct {
	// Name is the logical load name, as passed to System.loadLibrary.
	Name string
	// File overrides the physical file name. Defaults to lib<Name>.so.
	File string
	// BuildFromSource marks artifacts produced by the native build rather than shipped prebuilt.
	BuildFromSource bool
}

// PhysicalName returns the on-disk file name of the artifact.
func (a ArtifactSpec) PhysicalName() string {
	if a.File != "" {
		return a.File
	}
	return "lib" + a.Name + ".so"
}

// Config is the loaded module registry plus pipeline settings.
type Config struct {
	OutputDir   string
	Parallelism int
	Strict      bool
	Cleanup     []string
	Modules     []VendoredModule
}

// Module returns the registered module with the given name.
func (c *Config) Module(name string) (VendoredModule, bool) {
	for _, m := range c.Modules {
		if m.Name.String() == name {
			return m, true
		}
	}
	return VendoredModule{}, false
}

// IsJavaPackage reports whether s is a dotted sequence of Java identifiers.
func IsJavaPackage(s string) bool {
	if s == "" {
		return false
	}
	for _, seg := range strings.Split(s, ".") {
		if seg == "" {
			return false
		}
		for i, r := range seg {
			switch {
			case r == '_':
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			case r >= '0' && r <= '9' && i > 0:
			default:
				return false
			}
		}
	}
	return true
}
