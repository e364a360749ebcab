package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"scorepack/internal/archive"
	"scorepack/internal/logging"
	"scorepack/internal/overlay"
	"scorepack/internal/pack"
)

var (
	// ErrEmptyDocument reports a conversion with no rendered pages.
	ErrEmptyDocument = errors.New("document has no rendered pages")
	// ErrPageImage reports an empty or unrecognized page image.
	ErrPageImage = errors.New("invalid page image")
	// ErrTargetExists reports that a container already sits at the target.
	ErrTargetExists = errors.New("conversion target already exists")
)

// Recognized raster formats for rendered pages.
var imageMagics = [][]byte{
	{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A},
	{0xFF, 0xD8, 0xFF},
}

// Request carries one conversion. Pages are in render order; their positions
// become page numbers 1..N. Annotations carries any pre-existing overlays
// keyed by page number, typically recovered from a previous container.
type Request struct {
	Title       string
	Original    []byte
	Pages       [][]byte
	Annotations map[int]overlay.Overlay
	TargetPath  string
}

// Converter assembles containers through the archive store.
type Converter struct {
	store  *archive.Store
	logger *slog.Logger
}

// New builds a converter. A nil logger disables logging.
func New(store *archive.Store, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Converter{store: store, logger: logger}
}

// Convert validates the request, assembles the full entry set, and writes the
// container in one bulk ReplaceEntries call against a fresh target path.
func (c *Converter) Convert(ctx context.Context, req Request) error {
	if len(req.Pages) == 0 {
		return ErrEmptyDocument
	}
	if len(bytes.TrimSpace(req.Original)) == 0 {
		return fmt.Errorf("%w: original document bytes are empty", pack.ErrStructural)
	}
	if _, err := os.Stat(req.TargetPath); err == nil {
		return fmt.Errorf("%w: %s", ErrTargetExists, req.TargetPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat target %s: %w", req.TargetPath, err)
	}

	pageCount := len(req.Pages)
	entries := make(map[string][]byte, pageCount+len(req.Annotations)+2)
	for i, image := range req.Pages {
		if err := checkPageImage(image); err != nil {
			return fmt.Errorf("page %d: %w", i+1, err)
		}
		entries[pack.PageEntry(i+1)] = image
	}

	for page, ov := range req.Annotations {
		if page < 1 || page > pageCount {
			return fmt.Errorf("%w: prior annotations reference page %d of %d",
				pack.ErrStructural, page, pageCount)
		}
		if ov.Empty() {
			continue
		}
		payload, err := overlay.Encode(ov)
		if err != nil {
			return fmt.Errorf("encode annotations for page %d: %w", page, err)
		}
		entries[pack.AnnotationEntry(page)] = payload
	}

	manifest := pack.NewManifest(req.Title, pageCount, time.Now().UTC())
	manifestBytes, err := manifest.Serialize()
	if err != nil {
		return err
	}
	entries[pack.ManifestEntry] = manifestBytes
	// The original goes in verbatim so it can be recovered losslessly later.
	entries[pack.OriginalEntry] = req.Original

	start := time.Now()
	if err := c.store.ReplaceEntries(ctx, req.TargetPath, entries, nil, pack.VerifyEntrySet); err != nil {
		return err
	}
	logging.WithContext(ctx, c.logger).Info("container converted",
		slog.String(logging.FieldContainer, req.TargetPath),
		slog.String("title", manifest.Title),
		slog.Int("pages", pageCount),
		slog.Int("annotated_pages", len(entries)-pageCount-2),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

func checkPageImage(image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("%w: empty image payload", ErrPageImage)
	}
	for _, magic := range imageMagics {
		if bytes.HasPrefix(image, magic) {
			return nil
		}
	}
	return fmt.Errorf("%w: unrecognized raster format", ErrPageImage)
}
