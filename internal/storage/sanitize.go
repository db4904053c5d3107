package storage

import (
	"net/url"
	"path/filepath"
	"strings"
)

// FallbackName is used when sanitization leaves nothing usable of the
// original filename.
const FallbackName = "unnamed"

// Sanitize reduces an arbitrary client-supplied name to a safe filename.
// The same function backs storage paths, file URLs and delete resolution,
// so the three can never disagree about what a name maps to.
//
// Rules: path components are stripped, characters outside
// [a-zA-Z0-9._-] become underscores, leading dots are removed so the
// result is never hidden, and names that end up empty or consist only of
// dots and underscores normalize to FallbackName.
func Sanitize(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == ".." || name == "/" {
		return FallbackName
	}

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if isSafeRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}

	cleaned := strings.TrimLeft(b.String(), ".")
	if cleaned == "" || strings.Trim(cleaned, "._") == "" {
		return FallbackName
	}
	return cleaned
}

func isSafeRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
		r == '-' || r == '_' || r == '.'
}

// FileURL derives the public URL for a stored filename. With no public base
// configured the URL is the same-origin serving path.
func FileURL(publicBase, filename string) string {
	path := "/files/" + url.PathEscape(filename)
	if publicBase == "" {
		return path
	}
	return strings.TrimRight(publicBase, "/") + path
}
