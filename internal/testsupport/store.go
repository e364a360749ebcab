package testsupport

import (
	"testing"
	"time"

	"scorepack/internal/archive"
	"scorepack/internal/config"
	"scorepack/internal/convertqueue"
)

// MustOpenStore opens a convertqueue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *convertqueue.Store {
	t.Helper()

	store, err := convertqueue.Open(cfg)
	if err != nil {
		t.Fatalf("convertqueue.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewArchiveStore builds an archive store with a fresh lock registry.
func NewArchiveStore(t testing.TB) *archive.Store {
	t.Helper()
	return archive.NewStore(archive.NewRegistry(5*time.Second), nil)
}
