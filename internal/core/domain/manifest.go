package domain

import (
	"slices"
	"strings"
)

// Manifest enumerates every revision present under the output directory and
// the modules each revision carries. It is the single source of truth for
// which revisions exist.
type Manifest struct {
	// Version increases by one on every successful write.
	Version   uint64             `json:"version"`
	Revisions []RevisionManifest `json:"revisions"`
}

// RevisionManifest lists the modules versioned into one revision.
type RevisionManifest struct {
	Revision  RevisionIdentifier `json:"revision"`
	Qualifier string             `json:"qualifier"`
	Modules   []ModuleRecord     `json:"modules"`
}

// ModuleRecord is the outcome of versioning one module into one revision.
type ModuleRecord struct {
	Name            string `json:"name"`
	SourceNamespace string `json:"sourceNamespace"`
	TargetNamespace string `json:"targetNamespace"`
	// OutputDir is slash-separated and relative to the root.
	OutputDir   string           `json:"outputDir"`
	Installable bool             `json:"installableInManagedApps"`
	State       Stage            `json:"state"`
	Fingerprint string           `json:"fingerprint"`
	TreeHash    string           `json:"treeHash"`
	Artifacts   []ArtifactRecord `json:"artifacts,omitempty"`
	Surface     *Surface         `json:"surface,omitempty"`
}

// Clone returns a deep copy of m, so a loaded manifest can be mutated and
// compared against the original.
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return &Manifest{}
	}
	out := &Manifest{Version: m.Version, Revisions: make([]RevisionManifest, len(m.Revisions))}
	for i, rm := range m.Revisions {
		mods := make([]ModuleRecord, len(rm.Modules))
		for j, rec := range rm.Modules {
			rec.Artifacts = slices.Clone(rec.Artifacts)
			if rec.Surface != nil {
				s := *rec.Surface
				s.Operations = make([]Operation, len(rec.Surface.Operations))
				for k, op := range rec.Surface.Operations {
					op.Params = slices.Clone(op.Params)
					s.Operations[k] = op
				}
				rec.Surface = &s
			}
			mods[j] = rec
		}
		out.Revisions[i] = RevisionManifest{Revision: rm.Revision, Qualifier: rm.Qualifier, Modules: mods}
	}
	return out
}

// Revision returns the entry for rev.
func (m *Manifest) Revision(rev RevisionIdentifier) (*RevisionManifest, bool) {
	for i := range m.Revisions {
		if m.Revisions[i].Revision == rev {
			return &m.Revisions[i], true
		}
	}
	return nil, false
}

// Lookup returns the record of module in rev.
func (m *Manifest) Lookup(rev RevisionIdentifier, module string) (ModuleRecord, bool) {
	rm, ok := m.Revision(rev)
	if !ok {
		return ModuleRecord{}, false
	}
	for _, rec := range rm.Modules {
		if rec.Name == module {
			return rec, true
		}
	}
	return ModuleRecord{}, false
}

// Put inserts or replaces the record of rec.Name in rev.
// Revisions stay sorted ascending and modules sorted by name.
func (m *Manifest) Put(rev RevisionIdentifier, rec ModuleRecord) {
	rm, ok := m.Revision(rev)
	if !ok {
		m.Revisions = append(m.Revisions, RevisionManifest{Revision: rev, Qualifier: rev.Qualifier()})
		slices.SortFunc(m.Revisions, func(a, b RevisionManifest) int {
			return a.Revision.Compare(b.Revision)
		})
		rm, _ = m.Revision(rev)
	}

	idx := slices.IndexFunc(rm.Modules, func(r ModuleRecord) bool { return r.Name == rec.Name })
	if idx >= 0 {
		rm.Modules[idx] = rec
		return
	}
	rm.Modules = append(rm.Modules, rec)
	slices.SortFunc(rm.Modules, func(a, b ModuleRecord) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// SetState updates the state of every listed module in rev.
func (m *Manifest) SetState(rev RevisionIdentifier, state Stage, modules ...string) {
	rm, ok := m.Revision(rev)
	if !ok {
		return
	}
	for i := range rm.Modules {
		if slices.Contains(modules, rm.Modules[i].Name) {
			rm.Modules[i].State = state
		}
	}
}

// RemoveRevision drops rev from the manifest. It reports whether rev was present.
func (m *Manifest) RemoveRevision(rev RevisionIdentifier) bool {
	n := len(m.Revisions)
	m.Revisions = slices.DeleteFunc(m.Revisions, func(rm RevisionManifest) bool {
		return rm.Revision == rev
	})
	return len(m.Revisions) != n
}

// RevisionIDs returns every revision in ascending order.
func (m *Manifest) RevisionIDs() []RevisionIdentifier {
	ids := make([]RevisionIdentifier, len(m.Revisions))
	for i, rm := range m.Revisions {
		ids[i] = rm.Revision
	}
	return ids
}

// ModuleNames returns every module that appears in at least one revision, sorted.
func (m *Manifest) ModuleNames() []string {
	var names []string
	for _, rm := range m.Revisions {
		for _, rec := range rm.Modules {
			if !slices.Contains(names, rec.Name) {
				names = append(names, rec.Name)
			}
		}
	}
	slices.Sort(names)
	return names
}

// WrapperSpec assembles the façade input of module from every revision whose
// record is in the given states and declares a surface.
func (m *Manifest) WrapperSpec(module, sourcePackage string, states ...Stage) (WrapperSpec, bool) {
	spec := WrapperSpec{Module: module}
	for _, rm := range m.Revisions {
		for _, rec := range rm.Modules {
			if rec.Name != module || rec.Surface == nil || !slices.Contains(states, rec.State) {
				continue
			}
			// The newest revision names the façade.
			spec.Class = rec.Surface.Class
			spec.FacadePackage = rec.Surface.FacadePackage(sourcePackage)
			spec.Revisions = append(spec.Revisions, RevisionSurface{
				Revision:        rm.Revision,
				TargetNamespace: rec.TargetNamespace,
				Surface:         *rec.Surface,
			})
		}
	}
	return spec, len(spec.Revisions) > 0
}
