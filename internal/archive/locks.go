package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const flockRetryDelay = 25 * time.Millisecond

// Registry serializes writers per container path. It is explicit
// process-scoped state: created at service start, passed into NewStore, keyed
// by canonicalized path, with entries dropped as soon as no writer references
// them. The in-process half is a one-slot semaphore; the cross-process half
// is an advisory flock on a sibling .lock file.
type Registry struct {
	timeout time.Duration

	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	refs int
	sem  chan struct{}
	fl   *flock.Flock
}

// NewRegistry builds a registry whose lock acquisitions time out after the
// given duration and fail with ErrBusy.
func NewRegistry(timeout time.Duration) *Registry {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Registry{
		timeout: timeout,
		locks:   make(map[string]*pathLock),
	}
}

// acquire takes the write lock for path, returning a release closure. It
// never blocks past the registry timeout; a held or stuck lock surfaces as
// ErrBusy rather than a deadlock. Writers on different paths do not contend.
func (r *Registry) acquire(ctx context.Context, path string) (func(), error) {
	key, err := canonicalPath(path)
	if err != nil {
		return nil, fmt.Errorf("canonicalize %s: %w", path, err)
	}

	r.mu.Lock()
	l, ok := r.locks[key]
	if !ok {
		// The .lock file persists after release: unlinking it would let a
		// writer blocked on the old inode and one creating a fresh file hold
		// their locks concurrently.
		l = &pathLock{
			sem: make(chan struct{}, 1),
			fl:  flock.New(key + ".lock"),
		}
		r.locks[key] = l
	}
	l.refs++
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		r.unref(key, l)
		return nil, fmt.Errorf("%w: write lock on %s held too long", ErrBusy, path)
	}

	locked, err := l.fl.TryLockContext(ctx, flockRetryDelay)
	if err != nil || !locked {
		<-l.sem
		r.unref(key, l)
		if err != nil && ctx.Err() == nil {
			return nil, fmt.Errorf("advisory lock %s: %w", l.fl.Path(), err)
		}
		return nil, fmt.Errorf("%w: advisory lock on %s held too long", ErrBusy, path)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			_ = l.fl.Unlock()
			<-l.sem
			r.unref(key, l)
		})
	}
	return release, nil
}

func (r *Registry) unref(key string, l *pathLock) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.refs--
	if l.refs <= 0 {
		delete(r.locks, key)
	}
}

// canonicalPath resolves path to a stable absolute key so that two spellings
// of the same container contend on the same lock. Symlinks are resolved for
// the existing portion of the path; the final element may not exist yet.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	dir, base := filepath.Split(abs)
	resolved, err := filepath.EvalSymlinks(filepath.Clean(dir))
	if err != nil {
		// Parent may not exist yet; the absolute path is still a stable key.
		return abs, nil
	}
	return filepath.Join(resolved, base), nil
}
