package ports

// TreeHasher computes content hashes of directory trees.
//
//go:generate mockgen -destination=mocks/hasher_mock.go -package=mocks -source=hasher.go
type TreeHasher interface {
	// HashTree hashes every file below root (relative paths, contents and modes),
	// skipping entries whose base name matches one of the exclude patterns.
	HashTree(root string, exclude ...string) (string, error)
}
