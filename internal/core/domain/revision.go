package domain

import (
	"slices"
	"strings"

	"golang.org/x/mod/semver"
)

// RevisionIdentifier identifies one coexisting, namespace-isolated copy of the
// platform SDK surface (e.g. "31.0.0").
type RevisionIdentifier string

// ParseRevision validates s as a MAJOR.MINOR.PATCH revision.
func ParseRevision(s string) (RevisionIdentifier, error) {
	s = strings.TrimSpace(s)
	v := "v" + s
	if s == "" || strings.Count(s, ".") != 2 || !semver.IsValid(v) ||
		semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return "", Classify(ErrConfiguration, Tag(ErrInvalidRevision, "revision", s))
	}
	return RevisionIdentifier(s), nil
}

// String returns the revision as written.
func (r RevisionIdentifier) String() string {
	return string(r)
}

// Compare orders revisions by semantic version. It returns -1, 0 or +1.
func (r RevisionIdentifier) Compare(other RevisionIdentifier) int {
	return semver.Compare("v"+string(r), "v"+string(other))
}

// Qualifier returns the identifier-safe token used in namespaces, paths and
// binary names: "r31" for 31.0.0, "r31_1_0" for 31.1.0.
func (r RevisionIdentifier) Qualifier() string {
	major, rest, _ := strings.Cut(string(r), ".")
	if rest == "0.0" {
		return "r" + major
	}
	return "r" + major + "_" + strings.ReplaceAll(rest, ".", "_")
}

// SortRevisions orders revisions ascending in place.
func SortRevisions(revs []RevisionIdentifier) {
	slices.SortFunc(revs, RevisionIdentifier.Compare)
}
