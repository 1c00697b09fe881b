package transform

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLength      = 200
	maxExtensionLength = 16
)

var (
	// Characters invalid in file names on most filesystems
	invalidNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	// Multiple spaces to collapse
	multipleSpaces = regexp.MustCompile(`\s+`)
)

// SanitizeName turns a remote file or folder title into a single safe path
// element. Distinct remote names can collapse onto the same local name, in
// which case the second one is treated as already imported.
func SanitizeName(name string) string {
	return sanitize(name, maxNameLength)
}

// SanitizeFileName is SanitizeName for files: a name that has to be
// shortened keeps its extension.
func SanitizeFileName(name string) string {
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if len(ext) > maxExtensionLength || strings.Trim(base, ". ") == "" {
		return SanitizeName(name)
	}
	return WithExtension(base, ext)
}

// WithExtension sanitizes base and appends ext, shortening base so that
// the whole name fits.
func WithExtension(base, ext string) string {
	ext = invalidNameChars.ReplaceAllString(ext, "_")
	return sanitize(base, maxNameLength-len(ext)) + ext
}

func sanitize(name string, limit int) string {
	name = multipleSpaces.ReplaceAllString(name, " ")
	name = invalidNameChars.ReplaceAllString(name, "_")
	name = strings.TrimSpace(name)

	if len(name) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimSpace(name[:cut])
	}

	switch name {
	case "", ".", "..":
		return "Untitled"
	}
	return name
}
