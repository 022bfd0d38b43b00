package renamer

import (
	"bytes"
	"cmp"
	"path"
	"regexp"
	"slices"
	"strings"

	"go.trai.ch/verso/internal/core/domain"
)

// site is one reference to an artifact, with the byte span of the name to replace.
type site struct {
	domain.ReferenceSite
	start, end int
	// renamed is the text that replaces content[start:end].
	renamed string
}

// matcher finds the reference sites of one artifact.
type matcher struct {
	record     domain.ArtifactRecord
	physical   []byte
	loadCall   *regexp.Regexp
	gradle     *regexp.Regexp
	ndkModule  *regexp.Regexp
	ndkLibrary *regexp.Regexp
}

func newMatcher(rec domain.ArtifactRecord) *matcher {
	name := regexp.QuoteMeta(rec.Name)
	return &matcher{
		record:     rec,
		physical:   []byte(rec.OriginalFile),
		loadCall:   regexp.MustCompile(`\bloadLibrary\(\s*"(` + name + `)"\s*\)`),
		gradle:     regexp.MustCompile(`(?m)\btargets\b[^\n]*?["'](` + name + `)["']`),
		ndkModule:  regexp.MustCompile(`(?m)^\s*LOCAL_MODULE\s*:?=\s*(` + name + `)\s*$`),
		ndkLibrary: regexp.MustCompile(`(?m)^\s*LOCAL_(?:SHARED|STATIC)_LIBRARIES\s*[:+]?=[^\n]*`),
	}
}

// find returns every reference site in content, ordered by offset.
// rel is the slash-separated path of the file relative to the tree.
func (m *matcher) find(rel string, content []byte) []site {
	var sites []site
	add := func(kind domain.ReferenceKind, start, end int, renamed string) {
		sites = append(sites, site{
			ReferenceSite: domain.ReferenceSite{Path: rel, Line: lineOf(content, start), Kind: kind},
			start:         start,
			end:           end,
			renamed:       renamed,
		})
	}

	for off := 0; ; {
		idx := bytes.Index(content[off:], m.physical)
		if idx < 0 {
			break
		}
		start := off + idx
		end := start + len(m.physical)
		if physicalBoundary(content, start, end) {
			add(domain.ReferencePhysical, start, end, m.record.RenamedFile)
		}
		off = start + 1
	}

	for _, loc := range m.loadCall.FindAllSubmatchIndex(content, -1) {
		add(domain.ReferenceLoadCall, loc[2], loc[3], m.record.RenamedName)
	}

	base := path.Base(rel)
	switch {
	case base == "CMakeLists.txt" || path.Ext(base) == ".cmake":
		for _, span := range cmakeTokens(content, m.record.Name) {
			add(domain.ReferenceBuildDeclaration, span[0], span[1], m.record.RenamedName)
		}
	case path.Ext(base) == ".mk":
		for _, loc := range m.ndkModule.FindAllSubmatchIndex(content, -1) {
			add(domain.ReferenceBuildDeclaration, loc[2], loc[3], m.record.RenamedName)
		}
		for _, loc := range m.ndkLibrary.FindAllIndex(content, -1) {
			for _, span := range wordSpans(content, loc[0], loc[1], m.record.Name) {
				add(domain.ReferenceBuildDeclaration, span[0], span[1], m.record.RenamedName)
			}
		}
	case strings.HasSuffix(base, ".gradle") || strings.HasSuffix(base, ".gradle.kts"):
		for _, loc := range m.gradle.FindAllSubmatchIndex(content, -1) {
			add(domain.ReferenceBuildDeclaration, loc[2], loc[3], m.record.RenamedName)
		}
	}

	slices.SortFunc(sites, func(a, b site) int { return cmp.Compare(a.start, b.start) })
	// A span claimed by an earlier site is not rewritten twice.
	out := sites[:0]
	for _, s := range sites {
		if len(out) > 0 && s.start < out[len(out)-1].end {
			continue
		}
		out = append(out, s)
	}
	return out
}

// embeds reports whether binary content carries the original file name as a
// whole name, such as a NEEDED entry of a shared library.
func (m *matcher) embeds(content []byte) bool {
	for off := 0; ; {
		idx := bytes.Index(content[off:], m.physical)
		if idx < 0 {
			return false
		}
		start := off + idx
		if physicalBoundary(content, start, start+len(m.physical)) {
			return true
		}
		off = start + 1
	}
}

func isNameByte(b byte) bool {
	return b == '_' || b == '-' || b == '+' || b == '.' ||
		b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// physicalBoundary reports whether content[start:end] is a whole file name.
func physicalBoundary(content []byte, start, end int) bool {
	if start > 0 && isNameByte(content[start-1]) {
		return false
	}
	if end == len(content) || !isNameByte(content[end]) {
		return true
	}
	// A period closing a sentence is not part of the name.
	return content[end] == '.' && (end+1 == len(content) || !isNameByte(content[end+1]))
}

// cmakeTokens returns the spans of name used as a whole CMake argument.
// Path components and variable references are not arguments.
func cmakeTokens(content []byte, name string) [][2]int {
	var spans [][2]int
	needle := []byte(name)
	for off := 0; ; {
		idx := bytes.Index(content[off:], needle)
		if idx < 0 {
			break
		}
		start := off + idx
		end := start + len(needle)
		off = start + 1

		if start > 0 && !isCMakeSeparator(content[start-1]) {
			continue
		}
		if end < len(content) && !isCMakeSeparator(content[end]) {
			continue
		}
		spans = append(spans, [2]int{start, end})
	}
	return spans
}

func isCMakeSeparator(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '(', ')', '"':
		return true
	}
	return false
}

// wordSpans returns the whitespace-delimited occurrences of word in content[from:to].
func wordSpans(content []byte, from, to int, word string) [][2]int {
	var spans [][2]int
	for i := from; i < to; {
		for i < to && isSpace(content[i]) {
			i++
		}
		j := i
		for j < to && !isSpace(content[j]) {
			j++
		}
		if j > i && string(content[i:j]) == word {
			spans = append(spans, [2]int{i, j})
		}
		i = j
	}
	return spans
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func lineOf(content []byte, offset int) int {
	return 1 + bytes.Count(content[:offset], []byte{'\n'})
}
