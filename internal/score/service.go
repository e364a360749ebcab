package score

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"scorepack/internal/archive"
	"scorepack/internal/logging"
	"scorepack/internal/overlay"
	"scorepack/internal/pack"
)

// ErrPageNotFound reports a page number outside the manifest's page index.
// It is a not-found condition, distinct from corruption.
var ErrPageNotFound = errors.New("page not found")

// Service exposes container read and single-page write operations.
type Service struct {
	store  *archive.Store
	logger *slog.Logger
}

// NewService builds the façade. A nil logger disables logging.
func NewService(store *archive.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// OpenManifest parses and re-validates the container's manifest.
func (s *Service) OpenManifest(path string) (pack.Manifest, error) {
	h, err := s.store.Open(path)
	if err != nil {
		return pack.Manifest{}, err
	}
	defer h.Close()
	return pack.ReadManifest(h)
}

// ReadPageImage returns the raster image for one page. The page number is
// checked against the manifest before any entry is touched.
func (s *Service) ReadPageImage(path string, page int) ([]byte, error) {
	h, err := s.store.Open(path)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	m, err := pack.ReadManifest(h)
	if err != nil {
		return nil, err
	}
	if page < 1 || page > m.PageCount {
		return nil, fmt.Errorf("%w: page %d of %d in %s", ErrPageNotFound, page, m.PageCount, path)
	}
	return h.Read(m.Pages[page-1].Image)
}

// ReadPageAnnotations returns one page's overlay. A missing annotation entry
// is the canonical empty overlay.
func (s *Service) ReadPageAnnotations(path string, page int) (overlay.Overlay, error) {
	h, err := s.store.Open(path)
	if err != nil {
		return nil, err
	}
	defer h.Close()

	m, err := pack.ReadManifest(h)
	if err != nil {
		return nil, err
	}
	if page < 1 || page > m.PageCount {
		return nil, fmt.Errorf("%w: page %d of %d in %s", ErrPageNotFound, page, m.PageCount, path)
	}

	data, err := h.Read(pack.AnnotationEntry(page))
	if errors.Is(err, archive.ErrEntryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return overlay.Decode(data)
}

// ReadAllAnnotations returns every page's overlay, keyed by page number.
// Only pages with a non-empty overlay appear.
func (s *Service) ReadAllAnnotations(path string) (map[int]overlay.Overlay, error) {
	h, err := s.store.Open(path)
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

// HasAnyAnnotations reports whether at least one annotation entry exists.
func (s *Service) HasAnyAnnotations(path string) (bool, error) {
	h, err := s.store.Open(path)
	if err != nil {
		return false, err
	}
	defer h.Close()

	for _, name := range h.List() {
		if pack.IsAnnotationEntry(name) {
			return true, nil
		}
	}
	return false, nil
}

// StripAnnotations deletes every annotation entry in one atomic replace. It
// returns the number of pages that carried an overlay.
func (s *Service) StripAnnotations(ctx context.Context, path string) (int, error) {
	h, err := s.store.Open(path)
	if err != nil {
		return 0, err
	}
	if _, err := pack.ReadManifest(h); err != nil {
		h.Close()
		return 0, err
	}
	deletes := make(map[string]struct{})
	for _, name := range h.List() {
		if pack.IsAnnotationEntry(name) {
			deletes[name] = struct{}{}
		}
	}
	h.Close()

	if len(deletes) == 0 {
		return 0, nil
	}
	if err := s.store.ReplaceEntries(ctx, path, nil, deletes, pack.VerifyEntrySet); err != nil {
		return 0, err
	}
	logging.WithContext(ctx, s.logger).Info("annotations stripped",
		slog.String(logging.FieldContainer, path),
		slog.Int("pages", len(deletes)))
	return len(deletes), nil
}

// WritePageAnnotations replaces one page's overlay. An empty overlay deletes
// the annotation entry; all other entries pass through unchanged.
func (s *Service) WritePageAnnotations(ctx context.Context, path string, page int, ov overlay.Overlay) error {
	m, err := s.OpenManifest(path)
	if err != nil {
		return err
	}
	if page < 1 || page > m.PageCount {
		return fmt.Errorf("%w: page %d of %d in %s", ErrPageNotFound, page, m.PageCount, path)
	}

	entry := pack.AnnotationEntry(page)
	var upserts map[string][]byte
	var deletes map[string]struct{}
	if ov.Empty() {
		deletes = map[string]struct{}{entry: {}}
	} else {
		payload, err := overlay.Encode(ov)
		if err != nil {
			return err
		}
		upserts = map[string][]byte{entry: payload}
	}

	if err := s.store.ReplaceEntries(ctx, path, upserts, deletes, pack.VerifyEntrySet); err != nil {
		return err
	}
	logging.WithContext(ctx, s.logger).Debug("page annotations written",
		slog.String(logging.FieldContainer, path),
		slog.Int(logging.FieldPage, page),
		slog.Bool("cleared", ov.Empty()))
	return nil
}
