package pack_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"scorepack/internal/pack"
)

func entrySetFor(m pack.Manifest) map[string]int64 {
	entries := map[string]int64{
		pack.ManifestEntry: 128,
		pack.OriginalEntry: 1024,
	}
	for _, ref := range m.Pages {
		entries[ref.Image] = 2048
	}
	return entries
}

func TestManifestRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	m := pack.NewManifest("Clair de Lune", 3, created)

	data, err := m.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	parsed, err := pack.ParseManifest(data)
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if parsed.Title != "Clair de Lune" || parsed.PageCount != 3 {
		t.Fatalf("unexpected manifest: %#v", parsed)
	}
	if !parsed.CreatedAt.Equal(created) {
		t.Fatalf("created at drifted: %v", parsed.CreatedAt)
	}
	if len(parsed.Pages) != 3 || parsed.Pages[1].Image != pack.PageEntry(2) {
		t.Fatalf("unexpected page index: %#v", parsed.Pages)
	}
}

func TestNewManifestNormalizesTitle(t *testing.T) {
	// "é" as e + combining acute must normalize to the composed form.
	m := pack.NewManifest("  Prélude  ", 1, time.Now())
	if m.Title != "Prélude" {
		t.Fatalf("title not normalized: %q", m.Title)
	}

	if got := pack.NewManifest("   ", 1, time.Now()).Title; got != "Untitled" {
		t.Fatalf("blank title: got %q", got)
	}
}

func TestParseManifestRejectsUnknownVersion(t *testing.T) {
	m := pack.NewManifest("Score", 1, time.Now())
	m.FormatVersion = 99
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}

	_, err = pack.ParseManifest(data)
	if !errors.Is(err, pack.ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestParseManifestRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("{"), []byte("not json")} {
		if _, err := pack.ParseManifest(data); !errors.Is(err, pack.ErrMalformed) {
			t.Fatalf("%q: expected ErrMalformed, got %v", data, err)
		}
	}
}

func TestValidateAccepts(t *testing.T) {
	m := pack.NewManifest("Score", 4, time.Now())
	entries := entrySetFor(m)
	entries[pack.AnnotationEntry(2)] = 64
	if err := m.Validate(entries); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsEveryMissingPage(t *testing.T) {
	const pages = 5
	for missing := 1; missing <= pages; missing++ {
		m := pack.NewManifest("Score", pages, time.Now())
		entries := entrySetFor(m)
		delete(entries, pack.PageEntry(missing))

		err := m.Validate(entries)
		if !errors.Is(err, pack.ErrStructural) {
			t.Fatalf("missing page %d: expected ErrStructural, got %v", missing, err)
		}
	}
}

func TestValidateRejects(t *testing.T) {
	base := func() pack.Manifest { return pack.NewManifest("Score", 2, time.Now()) }

	cases := []struct {
		name    string
		mutate  func(*pack.Manifest, map[string]int64)
	}{
		{"page count mismatch", func(m *pack.Manifest, _ map[string]int64) { m.PageCount = 3 }},
		{"non-positive page count", func(m *pack.Manifest, _ map[string]int64) { m.PageCount = 0; m.Pages = nil }},
		{"non-contiguous index", func(m *pack.Manifest, _ map[string]int64) { m.Pages[1].Number = 5 }},
		{"duplicate page number", func(m *pack.Manifest, _ map[string]int64) { m.Pages[1].Number = 1 }},
		{"dangling image reference", func(m *pack.Manifest, _ map[string]int64) { m.Pages[0].Image = "pages/9" }},
		{"annotation beyond page count", func(_ *pack.Manifest, e map[string]int64) { e[pack.AnnotationEntry(7)] = 16 }},
		{"unparseable annotation name", func(_ *pack.Manifest, e map[string]int64) { e["annotations/two"] = 16 }},
		{"missing original", func(_ *pack.Manifest, e map[string]int64) { delete(e, pack.OriginalEntry) }},
		{"empty original", func(_ *pack.Manifest, e map[string]int64) { e[pack.OriginalEntry] = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := base()
			entries := entrySetFor(m)
			tc.mutate(&m, entries)
			if err := m.Validate(entries); !errors.Is(err, pack.ErrStructural) {
				t.Fatalf("expected ErrStructural, got %v", err)
			}
		})
	}
}

func TestVerifyEntrySet(t *testing.T) {
	m := pack.NewManifest("Score", 1, time.Now())
	data, err := m.Serialize()
	if err != nil {
		t.Fatal(err)
	}
	entries := map[string][]byte{
		pack.ManifestEntry: data,
		pack.PageEntry(1):  []byte("image"),
		pack.OriginalEntry: []byte("%PDF-1.4"),
	}
	if err := pack.VerifyEntrySet(entries); err != nil {
		t.Fatalf("VerifyEntrySet: %v", err)
	}

	delete(entries, pack.PageEntry(1))
	if err := pack.VerifyEntrySet(entries); !errors.Is(err, pack.ErrStructural) {
		t.Fatalf("expected ErrStructural, got %v", err)
	}

	delete(entries, pack.ManifestEntry)
	if err := pack.VerifyEntrySet(entries); !errors.Is(err, pack.ErrStructural) {
		t.Fatalf("expected ErrStructural without manifest, got %v", err)
	}
}
