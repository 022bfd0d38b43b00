package rewriter

// RewriteContent exposes the scanner for table tests.
func RewriteContent(source, target string, strict bool, content string) (string, int, error) {
	sourcePath := slashed(source)
	sc := newScanner(source, target, sourcePath, slashed(target), strict)
	out, n, amb := sc.rewrite([]byte(content))
	if amb != nil {
		return "", 0, ambiguousError("input", amb)
	}
	return string(out), n, nil
}

// Relocate exposes relocate.
var Relocate = relocate

func slashed(ns string) string {
	out := []byte(ns)
	for i, b := range out {
		if b == '.' {
			out[i] = '/'
		}
	}
	return string(out)
}
