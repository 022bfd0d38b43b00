package rewriter

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf16"
)

// form is one spelling of a namespace: dotted for source code, slashed for
// paths and JVM descriptors, mangled for JNI native method symbols.
type form struct {
	from  []byte
	to    []byte
	slash bool
	jni   bool
}

// ambiguity locates a match whose segment boundary cannot be proven.
type ambiguity struct {
	line   int
	column int
	match  string
	reason string
}

// scanner performs a single left-to-right pass over a buffer, replacing every
// namespace occurrence that sits on a segment boundary.
type scanner struct {
	forms  []form
	strict bool
}

func newScanner(source, target, sourcePath, targetPath string, strict bool) *scanner {
	s := &scanner{strict: strict}
	s.forms = append(s.forms, form{from: []byte(source), to: []byte(target)})
	if sourcePath != source {
		s.forms = append(s.forms, form{from: []byte(sourcePath), to: []byte(targetPath), slash: true})
	}
	s.forms = append(s.forms, form{from: []byte(jniPrefix(source)), to: []byte(jniPrefix(target)), jni: true})
	return s
}

// jniPrefix returns the symbol prefix of native methods declared in package ns,
// e.g. Java_com_acme_foolib_ for com.acme.foolib.
func jniPrefix(ns string) string {
	var b strings.Builder
	b.WriteString("Java_")
	for _, r := range ns {
		switch {
		case r == '.':
			b.WriteByte('_')
		case r == '_':
			b.WriteString("_1")
		case r < 0x80 && isIdentByte(byte(r)):
			b.WriteRune(r)
		default:
			for _, u := range utf16.Encode([]rune{r}) {
				fmt.Fprintf(&b, "_0%04x", u)
			}
		}
	}
	b.WriteByte('_')
	return b.String()
}

// verdict is the classification of one match.
type verdict int

const (
	verdictRewrite verdict = iota
	verdictForeign
	verdictAmbiguous
)

// rewrite returns the rewritten content and the number of replaced matches.
// Content without matches is returned as is.
func (s *scanner) rewrite(content []byte) ([]byte, int, *ambiguity) {
	var out []byte
	written, count := 0, 0

	for pos := 0; pos < len(content); {
		start, f := s.next(content, pos)
		if f == nil {
			break
		}
		end := start + len(f.from)

		v, reason := s.classify(content, start, end, f)
		switch v {
		case verdictAmbiguous:
			line, col := position(content, start)
			return nil, 0, &ambiguity{line: line, column: col, match: excerpt(content, start, end), reason: reason}
		case verdictForeign:
			pos = start + 1
			continue
		case verdictRewrite:
		}

		if out == nil {
			out = make([]byte, 0, len(content)+len(content)/8)
		}
		out = append(out, content[written:start]...)
		out = append(out, f.to...)
		written = end
		pos = end
		count++
	}

	if count == 0 {
		return content, 0, nil
	}
	return append(out, content[written:]...), count, nil
}

// next returns the earliest match at or after pos.
func (s *scanner) next(content []byte, pos int) (int, *form) {
	best, bestForm := -1, (*form)(nil)
	for i := range s.forms {
		idx := bytes.Index(content[pos:], s.forms[i].from)
		if idx < 0 {
			continue
		}
		if best < 0 || pos+idx < best {
			best, bestForm = pos+idx, &s.forms[i]
		}
	}
	return best, bestForm
}

func (s *scanner) classify(content []byte, start, end int, f *form) (verdict, string) {
	if f.jni {
		return s.classifySymbol(content, start, end)
	}
	if start > 0 {
		switch l := content[start-1]; {
		case l == '$':
			return verdictAmbiguous, "'$' adjacent to namespace"
		case l == '.':
			// Suffix of a longer dotted name.
			return verdictForeign, ""
		case f.slash && l == 'L' && (start == 1 || !isIdentByte(content[start-2])):
			// JVM type descriptor, e.g. Lcom/acme/foolib/Foo;
		case isIdentByte(l) || l >= 0x80:
			if s.strict {
				return verdictAmbiguous, "identifier continues before namespace"
			}
			return verdictForeign, ""
		}
	}

	if end < len(content) {
		switch r := content[end]; {
		case r == '$':
			return verdictAmbiguous, "'$' adjacent to namespace"
		case isIdentByte(r) || r >= 0x80:
			if s.strict {
				return verdictAmbiguous, "identifier continues after namespace"
			}
			return verdictForeign, ""
		}
	}
	return verdictRewrite, ""
}

// classifySymbol checks a JNI prefix match. The prefix ends in the separator
// before the class name, so only a mangling escape may follow it.
func (s *scanner) classifySymbol(content []byte, start, end int) (verdict, string) {
	if start > 0 {
		if l := content[start-1]; l == '$' {
			return verdictAmbiguous, "'$' adjacent to namespace"
		} else if isIdentByte(l) || l >= 0x80 {
			if s.strict {
				return verdictAmbiguous, "identifier continues before namespace"
			}
			return verdictForeign, ""
		}
	}
	if end < len(content) && content[end] >= '0' && content[end] <= '3' {
		// Escape continuing the last package segment, e.g. Java_com_acme_foolib_1x_.
		return verdictForeign, ""
	}
	return verdictRewrite, ""
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// position returns the 1-based line and byte column of offset.
func position(content []byte, offset int) (int, int) {
	line := 1 + bytes.Count(content[:offset], []byte{'\n'})
	lineStart := bytes.LastIndexByte(content[:offset], '\n') + 1
	return line, offset - lineStart + 1
}

// excerpt returns the match plus the identifier characters around it.
func excerpt(content []byte, start, end int) string {
	for start > 0 && (isIdentByte(content[start-1]) || content[start-1] == '$' || content[start-1] == '.') {
		start--
	}
	for end < len(content) && (isIdentByte(content[end]) || content[end] == '$') {
		end++
	}
	return string(content[start:end])
}
