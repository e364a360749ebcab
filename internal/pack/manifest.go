package pack

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// FormatVersion is the single manifest version this build reads and writes.
// Unknown versions are rejected outright rather than best-effort parsed; the
// annotation payload schema is versioned implicitly through this value.
const FormatVersion = 1

// PageRef ties a one-based page number to the archive entry holding its
// raster image.
type PageRef struct {
	Number int    `json:"number"`
	Image  string `json:"image"`
}

// Manifest is the container's structural metadata record. It is written once
// at conversion time; CreatedAt never changes afterwards.
type Manifest struct {
	FormatVersion int       `json:"formatVersion"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"createdAt"`
	PageCount     int       `json:"pageCount"`
	Pages         []PageRef `json:"pages"`
	Original      string    `json:"original"`
}

// NewManifest builds a manifest for a document with pageCount pages using the
// standard entry naming. The title is trimmed and normalized to NFC so that a
// package created from composed and decomposed input sorts and compares the
// same way everywhere.
func NewManifest(title string, pageCount int, createdAt time.Time) Manifest {
	title = norm.NFC.String(strings.TrimSpace(title))
	if title == "" {
		title = "Untitled"
	}
	pages := make([]PageRef, 0, pageCount)
	for n := 1; n <= pageCount; n++ {
		pages = append(pages, PageRef{Number: n, Image: PageEntry(n)})
	}
	return Manifest{
		FormatVersion: FormatVersion,
		Title:         title,
		CreatedAt:     createdAt.UTC(),
		PageCount:     pageCount,
		Pages:         pages,
		Original:      OriginalEntry,
	}
}

// ParseManifest decodes manifest bytes. A decode failure is ErrMalformed; a
// version other than FormatVersion is ErrUnsupportedVersion.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("%w: decode manifest: %w", ErrMalformed, err)
	}
	if m.FormatVersion != FormatVersion {
		return Manifest{}, fmt.Errorf("%w: manifest declares version %d, supported version is %d",
			ErrUnsupportedVersion, m.FormatVersion, FormatVersion)
	}
	return m, nil
}

// Serialize encodes the manifest for storage.
func (m Manifest) Serialize() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return data, nil
}

// Validate re-checks the container invariants against the live entry list,
// given as entry name -> uncompressed size:
//
//  1. PageCount matches the page index and the index covers exactly 1..N.
//  2. Every referenced image entry exists.
//  3. Every annotation entry names a page inside 1..N.
//  4. The embedded original exists and is non-empty.
func (m Manifest) Validate(entries map[string]int64) error {
	if m.PageCount < 1 {
		return fmt.Errorf("%w: page count %d is not positive", ErrStructural, m.PageCount)
	}
	if len(m.Pages) != m.PageCount {
		return fmt.Errorf("%w: page count %d does not match %d indexed pages",
			ErrStructural, m.PageCount, len(m.Pages))
	}
	for i, ref := range m.Pages {
		want := i + 1
		if ref.Number != want {
			return fmt.Errorf("%w: page index position %d holds page %d", ErrStructural, want, ref.Number)
		}
		if _, ok := entries[ref.Image]; !ok {
			return fmt.Errorf("%w: page %d references missing entry %q", ErrStructural, ref.Number, ref.Image)
		}
	}
	for name := range entries {
		n, ok := AnnotationPage(name)
		if !ok {
			if strings.HasPrefix(name, annotationPrefix) {
				return fmt.Errorf("%w: unparseable annotation entry %q", ErrStructural, name)
			}
			continue
		}
		if n > m.PageCount {
			return fmt.Errorf("%w: annotation entry %q exceeds page count %d", ErrStructural, name, m.PageCount)
		}
	}
	if strings.TrimSpace(m.Original) == "" {
		return fmt.Errorf("%w: manifest names no original document entry", ErrStructural)
	}
	size, ok := entries[m.Original]
	if !ok {
		return fmt.Errorf("%w: original document entry %q is missing", ErrStructural, m.Original)
	}
	if size == 0 {
		return fmt.Errorf("%w: original document entry %q is empty", ErrStructural, m.Original)
	}
	return nil
}

// EntryReader is the view of an open container the manifest reader needs.
// archive.Handle satisfies it.
type EntryReader interface {
	Read(name string) ([]byte, error)
	Sizes() map[string]int64
}

// ReadManifest parses and validates the manifest of an open container. This
// runs on every open so that structural damage is caught before any page is
// served.
func ReadManifest(r EntryReader) (Manifest, error) {
	data, err := r.Read(ManifestEntry)
	if err != nil {
		return Manifest{}, fmt.Errorf("%w: container has no manifest entry", ErrStructural)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return Manifest{}, err
	}
	if err := m.Validate(r.Sizes()); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

// VerifyEntrySet checks a complete would-be entry set (name -> payload) for
// manifest consistency. Archive writers run it immediately before the commit
// rename so that a manifest/entry mismatch is rejected instead of written.
func VerifyEntrySet(entries map[string][]byte) error {
	data, ok := entries[ManifestEntry]
	if !ok {
		return fmt.Errorf("%w: entry set has no manifest", ErrStructural)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return err
	}
	sizes := make(map[string]int64, len(entries))
	for name, payload := range entries {
		sizes[name] = int64(len(payload))
	}
	return m.Validate(sizes)
}
