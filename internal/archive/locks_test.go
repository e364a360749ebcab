package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAcquireSerializesSamePath(t *testing.T) {
	r := NewRegistry(2 * time.Second)
	path := filepath.Join(t.TempDir(), "score.scorepack")

	release, err := r.acquire(context.Background(), path)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	acquired := make(chan error, 1)
	go func() {
		rel, err := r.acquire(context.Background(), path)
		if err == nil {
			rel()
		}
		acquired <- err
	}()

	select {
	case err := <-acquired:
		t.Fatalf("second acquire returned while lock held: %v", err)
	case <-time.After(100 * time.Millisecond):
	}

	release()
	if err := <-acquired; err != nil {
		t.Fatalf("second acquire after release: %v", err)
	}
}

func TestAcquireTimesOutBusy(t *testing.T) {
	r := NewRegistry(150 * time.Millisecond)
	path := filepath.Join(t.TempDir(), "score.scorepack")

	release, err := r.acquire(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	if _, err := r.acquire(context.Background(), path); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
}

func TestAcquireDifferentPathsDoNotContend(t *testing.T) {
	r := NewRegistry(200 * time.Millisecond)
	dir := t.TempDir()

	relA, err := r.acquire(context.Background(), filepath.Join(dir, "a.scorepack"))
	if err != nil {
		t.Fatal(err)
	}
	defer relA()

	relB, err := r.acquire(context.Background(), filepath.Join(dir, "b.scorepack"))
	if err != nil {
		t.Fatalf("independent path blocked: %v", err)
	}
	relB()
}

func TestRegistryDropsUnreferencedLocks(t *testing.T) {
	r := NewRegistry(time.Second)
	path := filepath.Join(t.TempDir(), "score.scorepack")

	release, err := r.acquire(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	release()
	release() // idempotent

	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.locks) != 0 {
		t.Fatalf("registry retained %d unreferenced locks", len(r.locks))
	}
}

func TestCanonicalPathResolvesSymlinkedDir(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	if err := os.Mkdir(real, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	a, err := canonicalPath(filepath.Join(real, "s.scorepack"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := canonicalPath(filepath.Join(link, "s.scorepack"))
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("symlinked spellings map to different keys: %q vs %q", a, b)
	}
}
