package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sort"
)

var (
	// ErrNotFound reports that no container exists at the requested path.
	ErrNotFound = errors.New("container not found")
	// ErrEntryNotFound reports that the container has no entry by that name.
	ErrEntryNotFound = errors.New("entry not found")
	// ErrBusy reports that the per-path write lock could not be acquired
	// within the configured timeout. Callers should retry with backoff.
	ErrBusy = errors.New("container busy")
)

// Store reads and rewrites containers. All writes to one path funnel through
// the shared lock registry; reads need no lock because a container is only
// ever replaced wholesale.
type Store struct {
	locks  *Registry
	logger *slog.Logger
}

// NewStore builds a store around the given lock registry.
func NewStore(locks *Registry, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(127)}))
	}
	return &Store{locks: locks, logger: logger}
}

// Handle is an open read view of one container. It indexes entry names to
// zip records; entry payloads are read on demand.
type Handle struct {
	path  string
	rc    *zip.ReadCloser
	index map[string]*zip.File
}

// Open indexes the container at path. The index is built from the zip central
// directory in one pass; no entry payload is loaded.
func (s *Store) Open(path string) (*Handle, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open container %s: %w", path, err)
	}
	index := make(map[string]*zip.File, len(rc.File))
	for _, f := range rc.File {
		index[f.Name] = f
	}
	return &Handle{path: path, rc: rc, index: index}, nil
}

// Path returns the container path backing the handle.
func (h *Handle) Path() string { return h.path }

// List returns all entry names in lexical order.
func (h *Handle) List() []string {
	names := make([]string, 0, len(h.index))
	for name := range h.index {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sizes returns entry name -> uncompressed size for the whole container,
// shaped for pack.Manifest.Validate.
func (h *Handle) Sizes() map[string]int64 {
	sizes := make(map[string]int64, len(h.index))
	for name, f := range h.index {
		sizes[name] = int64(f.UncompressedSize64)
	}
	return sizes
}

// Has reports whether the container holds an entry by that name.
func (h *Handle) Has(name string) bool {
	_, ok := h.index[name]
	return ok
}

// Read returns the payload of one entry.
func (h *Handle) Read(name string) ([]byte, error) {
	f, ok := h.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q in %s", ErrEntryNotFound, name, h.path)
	}
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %q: %w", name, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read entry %q: %w", name, err)
	}
	return data, nil
}

// Close releases the underlying file handle. An already-open handle keeps
// seeing the old container even if a writer renames a new one over the path.
func (h *Handle) Close() error {
	return h.rc.Close()
}
