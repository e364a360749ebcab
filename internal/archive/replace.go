package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
)

// VerifyFunc inspects the complete would-be entry set immediately before the
// commit rename. Returning an error aborts the write with the target
// untouched; this is how format-level invariants are enforced on the write
// path without the blob store knowing about manifests.
type VerifyFunc func(entries map[string][]byte) error

// Payloads the zip layer should store uncompressed because they already carry
// their own compression.
var storedMagics = [][]byte{
	{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A},
	{0xFF, 0xD8, 0xFF},
	[]byte("%PDF-"),
	{'P', 'K', 0x03, 0x04},
}

// ReplaceEntries is the sole mutation primitive and is all-or-nothing. It
// merges the target's current entries with upserts and deletes, verifies the
// result, writes it to a temporary file beside the target, flushes, and
// atomically renames it over the target. Interruption at any point before the
// rename leaves the original container untouched; the rename is the single
// commit point.
//
// A missing target is not an error: the merged set is then just the upserts,
// which is how fresh containers are created. Writers on the same path are
// serialized through the lock registry and fail with ErrBusy after its
// bounded timeout.
func (s *Store) ReplaceEntries(ctx context.Context, path string, upserts map[string][]byte, deletes map[string]struct{}, verify VerifyFunc) error {
	release, err := s.locks.acquire(ctx, path)
	if err != nil {
		return err
	}
	defer release()

	entries, err := s.mergedEntries(path, upserts, deletes)
	if err != nil {
		return err
	}
	if verify != nil {
		if err := verify(entries); err != nil {
			return fmt.Errorf("reject write to %s: %w", path, err)
		}
	}

	start := time.Now()
	if err := s.commit(path, entries); err != nil {
		return err
	}
	s.logger.Debug("container replaced",
		slog.String("container", path),
		slog.Int("entries", len(entries)),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// mergedEntries loads every surviving entry of the current container and
// applies the upsert/delete sets.
func (s *Store) mergedEntries(path string, upserts map[string][]byte, deletes map[string]struct{}) (map[string][]byte, error) {
	entries := make(map[string][]byte, len(upserts))

	h, err := s.Open(path)
	switch {
	case errors.Is(err, ErrNotFound):
		// Fresh target: nothing to carry over.
	case err != nil:
		return nil, err
	default:
		defer h.Close()
		for name := range h.index {
			if _, ok := upserts[name]; ok {
				continue
			}
			if _, ok := deletes[name]; ok {
				continue
			}
			data, err := h.Read(name)
			if err != nil {
				return nil, err
			}
			entries[name] = data
		}
	}

	for name, data := range upserts {
		entries[name] = data
	}
	return entries, nil
}

// commit writes the entry set to a temporary sibling file and renames it over
// the target. The temporary file is removed on every failure path.
func (s *Store) commit(path string, entries map[string][]byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", base, uuid.NewString()))

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create temp container: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err := writeZip(f, entries); err != nil {
		return fmt.Errorf("write temp container %s: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("flush temp container %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp container %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("commit container %s: %w", path, err)
	}
	committed = true
	return nil
}

func writeZip(f *os.File, entries map[string][]byte) error {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(f)
	for _, name := range names {
		data := entries[name]
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   compressionFor(data),
			Modified: time.Now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("create entry %q: %w", name, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write entry %q: %w", name, err)
		}
	}
	return zw.Close()
}

// compressionFor stores already-compressed payloads (rasters, PDFs) as-is and
// deflates everything else.
func compressionFor(data []byte) uint16 {
	for _, magic := range storedMagics {
		if bytes.HasPrefix(data, magic) {
			return zip.Store
		}
	}
	return zip.Deflate
}
