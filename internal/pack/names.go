package pack

import (
	"strconv"
	"strings"
)

// Entry names inside a score package. Page and annotation entries are keyed by
// their one-based page number.
const (
	ManifestEntry = "manifest"
	OriginalEntry = "original"

	pagePrefix       = "pages/"
	annotationPrefix = "annotations/"
)

// PageEntry returns the entry name holding the raster image for page n.
func PageEntry(n int) string {
	return pagePrefix + strconv.Itoa(n)
}

// AnnotationEntry returns the entry name holding the overlay payload for page n.
func AnnotationEntry(n int) string {
	return annotationPrefix + strconv.Itoa(n)
}

// IsAnnotationEntry reports whether name follows the annotation naming
// convention.
func IsAnnotationEntry(name string) bool {
	_, ok := AnnotationPage(name)
	return ok
}

// AnnotationPage extracts the page number from an annotation entry name.
func AnnotationPage(name string) (int, bool) {
	return pageNumber(name, annotationPrefix)
}

// PagePage extracts the page number from a page image entry name.
func PagePage(name string) (int, bool) {
	return pageNumber(name, pagePrefix)
}

func pageNumber(name, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(name, prefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
