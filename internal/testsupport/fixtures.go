package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"scorepack/internal/convert"
	"scorepack/internal/overlay"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// PageImage fabricates a deterministic PNG-signed payload for page n. The
// body is not a decodable image; the format core only sniffs the signature.
func PageImage(n int) []byte {
	return append(append([]byte{}, pngSignature...), []byte(fmt.Sprintf("page-%d-bitmap", n))...)
}

// PDFBytes fabricates a minimal PDF-signed source document payload.
func PDFBytes() []byte {
	return []byte("%PDF-1.4\n% scorepack test fixture\n%%EOF\n")
}

// PenStroke builds a single-stroke overlay in the given color.
func PenStroke(color string, points ...overlay.Point) overlay.Overlay {
	return overlay.Overlay{overlay.StrokeItem(overlay.Stroke{
		Tool:      overlay.ToolPen,
		Color:     color,
		LineWidth: 2,
		Points:    points,
	})}
}

// BuildContainer converts a synthetic document into a container at path.
func BuildContainer(t testing.TB, conv *convert.Converter, path, title string, pages int, annotations map[int]overlay.Overlay) {
	t.Helper()

	images := make([][]byte, pages)
	for i := range images {
		images[i] = PageImage(i + 1)
	}
	err := conv.Convert(context.Background(), convert.Request{
		Title:       title,
		Original:    PDFBytes(),
		Pages:       images,
		Annotations: annotations,
		TargetPath:  path,
	})
	if err != nil {
		t.Fatalf("build container: %v", err)
	}
}

// WritePagesDir materializes n rendered page image files for pipeline tests.
func WritePagesDir(t testing.TB, dir string, n int) {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= n; i++ {
		name := filepath.Join(dir, fmt.Sprintf("page-%03d.png", i))
		if err := os.WriteFile(name, PageImage(i), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}
