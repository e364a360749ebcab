package pack_test

import (
	"testing"

	"scorepack/internal/pack"
)

func TestEntryNames(t *testing.T) {
	if got := pack.PageEntry(12); got != "pages/12" {
		t.Fatalf("PageEntry: %q", got)
	}
	if got := pack.AnnotationEntry(3); got != "annotations/3" {
		t.Fatalf("AnnotationEntry: %q", got)
	}
}

func TestAnnotationPage(t *testing.T) {
	cases := []struct {
		name string
		page int
		ok   bool
	}{
		{"annotations/1", 1, true},
		{"annotations/42", 42, true},
		{"annotations/", 0, false},
		{"annotations/0", 0, false},
		{"annotations/-3", 0, false},
		{"annotations/two", 0, false},
		{"pages/2", 0, false},
		{"manifest", 0, false},
	}
	for _, tc := range cases {
		page, ok := pack.AnnotationPage(tc.name)
		if ok != tc.ok || page != tc.page {
			t.Fatalf("%q: got (%d, %v), want (%d, %v)", tc.name, page, ok, tc.page, tc.ok)
		}
	}

	if !pack.IsAnnotationEntry("annotations/7") || pack.IsAnnotationEntry("pages/7") {
		t.Fatal("IsAnnotationEntry misclassified")
	}
}

func TestPagePage(t *testing.T) {
	if n, ok := pack.PagePage("pages/9"); !ok || n != 9 {
		t.Fatalf("PagePage: got (%d, %v)", n, ok)
	}
	if _, ok := pack.PagePage("original"); ok {
		t.Fatal("PagePage accepted non-page entry")
	}
}
