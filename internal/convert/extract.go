package convert

import (
	"fmt"

	"scorepack/internal/overlay"
	"scorepack/internal/pack"
)

// ExtractAnnotations reads every non-empty overlay out of a container, keyed
// by page number. Used when migrating a score back out of the package format.
func (c *Converter) ExtractAnnotations(path string) (map[int]overlay.Overlay, error) {
	h, err := c.store.Open(path)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	if _, err := pack.ReadManifest(h); err != nil {
		return nil, err
	}

	out := make(map[int]overlay.Overlay)
	for _, name := range h.List() {
		page, ok := pack.AnnotationPage(name)
		if !ok {
			continue
		}
		data, err := h.Read(name)
		if err != nil {
			return nil, err
		}
		ov, err := overlay.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if ov.Empty() {
			continue
		}
		out[page] = ov
	}
	return out, nil
}

// ExtractOriginal returns the verbatim source document embedded in the
// container.
func (c *Converter) ExtractOriginal(path string) ([]byte, error) {
	h, err := c.store.Open(path)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	m, err := pack.ReadManifest(h)
	if err != nil {
		return nil, err
	}
	return h.Read(m.Original)
}
