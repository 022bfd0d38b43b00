package renamer

// StripComments exposes stripComments.
func StripComments(rel, content string) string {
	return string(stripComments(rel, []byte(content)))
}
