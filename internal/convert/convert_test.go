package convert_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"scorepack/internal/convert"
	"scorepack/internal/overlay"
	"scorepack/internal/pack"
	"scorepack/internal/score"
	"scorepack/internal/testsupport"
)

func TestConvertEndToEnd(t *testing.T) {
	store := testsupport.NewArchiveStore(t)
	conv := convert.New(store, nil)
	svc := score.NewService(store, nil)
	path := filepath.Join(t.TempDir(), "nocturne.scorepack")

	stroke := testsupport.PenStroke("#1a1a1a",
		overlay.Point{X: 10, Y: 10}, overlay.Point{X: 20, Y: 14},
		overlay.Point{X: 31, Y: 18}, overlay.Point{X: 45, Y: 30})
	pages := [][]byte{testsupport.PageImage(1), testsupport.PageImage(2), testsupport.PageImage(3)}

	err := conv.Convert(context.Background(), convert.Request{
		Title:       "Nocturne",
		Original:    testsupport.PDFBytes(),
		Pages:       pages,
		Annotations: map[int]overlay.Overlay{2: stroke},
		TargetPath:  path,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	m, err := svc.OpenManifest(path)
	if err != nil {
		t.Fatalf("OpenManifest: %v", err)
	}
	if m.PageCount != 3 || m.Title != "Nocturne" {
		t.Fatalf("unexpected manifest: %+v", m)
	}

	has, err := svc.HasAnyAnnotations(path)
	if err != nil || !has {
		t.Fatalf("HasAnyAnnotations = %v, %v", has, err)
	}

	for i := 1; i <= 3; i++ {
		image, err := svc.ReadPageImage(path, i)
		if err != nil {
			t.Fatalf("ReadPageImage(%d): %v", i, err)
		}
		if !bytes.Equal(image, pages[i-1]) {
			t.Fatalf("page %d image not byte-identical", i)
		}
	}

	got, err := svc.ReadPageAnnotations(path, 2)
	if err != nil {
		t.Fatalf("ReadPageAnnotations(2): %v", err)
	}
	if !reflect.DeepEqual(got, stroke) {
		t.Fatalf("page 2 overlay mismatch:\n got %#v\nwant %#v", got, stroke)
	}
	for _, page := range []int{1, 3} {
		got, err := svc.ReadPageAnnotations(path, page)
		if err != nil {
			t.Fatalf("ReadPageAnnotations(%d): %v", page, err)
		}
		if !got.Empty() {
			t.Fatalf("page %d: expected empty overlay, got %#v", page, got)
		}
	}
}

func TestConvertEmptyDocument(t *testing.T) {
	conv := convert.New(testsupport.NewArchiveStore(t), nil)
	err := conv.Convert(context.Background(), convert.Request{
		Title:      "Empty",
		Original:   testsupport.PDFBytes(),
		TargetPath: filepath.Join(t.TempDir(), "empty.scorepack"),
	})
	if !errors.Is(err, convert.ErrEmptyDocument) {
		t.Fatalf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestConvertRejectsBadPageImage(t *testing.T) {
	conv := convert.New(testsupport.NewArchiveStore(t), nil)
	dir := t.TempDir()

	cases := []struct {
		name string
		page []byte
	}{
		{"empty image", nil},
		{"unrecognized format", []byte("GIF89a not supported")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".scorepack")
			err := conv.Convert(context.Background(), convert.Request{
				Title:      "Broken",
				Original:   testsupport.PDFBytes(),
				Pages:      [][]byte{testsupport.PageImage(1), tc.page},
				TargetPath: path,
			})
			if !errors.Is(err, convert.ErrPageImage) {
				t.Fatalf("expected ErrPageImage, got %v", err)
			}
			// No partial container may exist.
			store := testsupport.NewArchiveStore(t)
			if _, openErr := store.Open(path); openErr == nil {
				t.Fatal("partial container left at target")
			}
		})
	}
}

func TestConvertRejectsAnnotationsBeyondPageCount(t *testing.T) {
	conv := convert.New(testsupport.NewArchiveStore(t), nil)
	err := conv.Convert(context.Background(), convert.Request{
		Title:    "Overrun",
		Original: testsupport.PDFBytes(),
		Pages:    [][]byte{testsupport.PageImage(1)},
		Annotations: map[int]overlay.Overlay{
			4: testsupport.PenStroke("#000000", overlay.Point{}, overlay.Point{X: 1}),
		},
		TargetPath: filepath.Join(t.TempDir(), "overrun.scorepack"),
	})
	if !errors.Is(err, pack.ErrStructural) {
		t.Fatalf("expected ErrStructural, got %v", err)
	}
}

func TestConvertSkipsEmptyPriorOverlays(t *testing.T) {
	store := testsupport.NewArchiveStore(t)
	conv := convert.New(store, nil)
	path := filepath.Join(t.TempDir(), "clean.scorepack")

	tapOnly := overlay.Overlay{overlay.StrokeItem(overlay.Stroke{
		Tool:   overlay.ToolPen,
		Points: []overlay.Point{{X: 5, Y: 5}},
	})}
	err := conv.Convert(context.Background(), convert.Request{
		Title:       "Clean",
		Original:    testsupport.PDFBytes(),
		Pages:       [][]byte{testsupport.PageImage(1), testsupport.PageImage(2)},
		Annotations: map[int]overlay.Overlay{1: {}, 2: tapOnly},
		TargetPath:  path,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}

	svc := score.NewService(store, nil)
	has, err := svc.HasAnyAnnotations(path)
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Fatal("empty prior overlay produced an annotation entry")
	}
}

func TestConvertRefusesExistingTarget(t *testing.T) {
	store := testsupport.NewArchiveStore(t)
	conv := convert.New(store, nil)
	path := filepath.Join(t.TempDir(), "existing.scorepack")
	testsupport.BuildContainer(t, conv, path, "First", 1, nil)

	err := conv.Convert(context.Background(), convert.Request{
		Title:      "Second",
		Original:   testsupport.PDFBytes(),
		Pages:      [][]byte{testsupport.PageImage(1)},
		TargetPath: path,
	})
	if !errors.Is(err, convert.ErrTargetExists) {
		t.Fatalf("expected ErrTargetExists, got %v", err)
	}
}

func TestExtractRoundTrip(t *testing.T) {
	store := testsupport.NewArchiveStore(t)
	conv := convert.New(store, nil)
	path := filepath.Join(t.TempDir(), "extract.scorepack")

	annotations := map[int]overlay.Overlay{
		1: testsupport.PenStroke("#ff0000", overlay.Point{X: 1, Y: 2}, overlay.Point{X: 3, Y: 4}),
		3: {overlay.StampItem(overlay.Stamp{ID: overlay.StampFermata, At: overlay.Point{X: 50, Y: 8}, Size: 14})},
	}
	testsupport.BuildContainer(t, conv, path, "Extract", 3, annotations)

	gotAnnotations, err := conv.ExtractAnnotations(path)
	if err != nil {
		t.Fatalf("ExtractAnnotations: %v", err)
	}
	if !reflect.DeepEqual(gotAnnotations, annotations) {
		t.Fatalf("annotations mismatch:\n got %#v\nwant %#v", gotAnnotations, annotations)
	}

	original, err := conv.ExtractOriginal(path)
	if err != nil {
		t.Fatalf("ExtractOriginal: %v", err)
	}
	if !bytes.Equal(original, testsupport.PDFBytes()) {
		t.Fatal("original not recovered byte-for-byte")
	}
}
