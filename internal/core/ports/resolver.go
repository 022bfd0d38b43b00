package ports

// PathResolver defines the interface for resolving cleanup patterns.
//
//go:generate mockgen -destination=mocks/resolver_mock.go -package=mocks -source=resolver.go
type PathResolver interface {
	// Match returns every path below root whose base name matches one of the patterns.
	// Matched directories are returned without their contents.
	Match(root string, patterns []string) ([]string, error)
}
