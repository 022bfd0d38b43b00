package renamer

import (
	"path"
	"strings"
)

// commentStyle selects how comment text is recognized in a file.
type commentStyle int

const (
	styleNone commentStyle = iota
	styleC
	styleHash
	styleDoc
)

func styleFor(rel string) commentStyle {
	base := path.Base(rel)
	switch ext := strings.ToLower(path.Ext(base)); {
	case base == "CMakeLists.txt":
		return styleHash
	case ext == ".md" || ext == ".rst" || ext == ".txt" || ext == ".adoc" || base == "LICENSE" || base == "NOTICE":
		return styleDoc
	case ext == ".java" || ext == ".kt" || ext == ".kts" || ext == ".gradle" || ext == ".c" || ext == ".cc" ||
		ext == ".cpp" || ext == ".h" || ext == ".hpp" || ext == ".m" || ext == ".mm" || ext == ".js" || ext == ".ts":
		return styleC
	case ext == ".cmake" || ext == ".mk" || ext == ".sh" || ext == ".properties" || ext == ".pro" ||
		ext == ".py" || ext == ".yaml" || ext == ".yml" || ext == ".toml":
		return styleHash
	}
	return styleNone
}

// stripComments blanks out comment text, keeping offsets and newlines intact.
// Documentation files are blanked entirely.
func stripComments(rel string, content []byte) []byte {
	style := styleFor(rel)
	if style == styleNone {
		return content
	}

	out := make([]byte, len(content))
	copy(out, content)
	blank := func(from, to int) {
		for i := from; i < to; i++ {
			if out[i] != '\n' {
				out[i] = ' '
			}
		}
	}

	if style == styleDoc {
		blank(0, len(out))
		return out
	}

	var quote byte
	for i := 0; i < len(content); i++ {
		c := content[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote || c == '\n' {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case style == styleHash && c == '#':
			end := lineEnd(content, i)
			blank(i, end)
			i = end - 1
		case style == styleC && c == '/' && i+1 < len(content) && content[i+1] == '/':
			end := lineEnd(content, i)
			blank(i, end)
			i = end - 1
		case style == styleC && c == '/' && i+1 < len(content) && content[i+1] == '*':
			end := strings.Index(string(content[i+2:]), "*/")
			if end < 0 {
				blank(i, len(content))
				return out
			}
			blank(i, i+2+end+2)
			i += 2 + end + 1
		}
	}
	return out
}

func lineEnd(content []byte, from int) int {
	for i := from; i < len(content); i++ {
		if content[i] == '\n' {
			return i
		}
	}
	return len(content)
}
