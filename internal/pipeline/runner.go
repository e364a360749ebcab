package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scorepack/internal/config"
	"scorepack/internal/convert"
	"scorepack/internal/convertqueue"
	"scorepack/internal/fileutil"
	"scorepack/internal/logging"
	"scorepack/internal/preflight"
)

// Runner processes conversion jobs from the queue.
type Runner struct {
	cfg       *config.Config
	store     *convertqueue.Store
	converter *convert.Converter
	logger    *slog.Logger
}

// NewRunner wires a runner. A nil logger disables logging.
func NewRunner(cfg *config.Config, store *convertqueue.Store, converter *convert.Converter, logger *slog.Logger) (*Runner, error) {
	if cfg == nil || store == nil || converter == nil {
		return nil, errors.New("runner requires config, store, and converter")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{cfg: cfg, store: store, converter: converter, logger: logger}, nil
}

// Startup recovers jobs interrupted by a previous crash.
func (r *Runner) Startup(ctx context.Context) error {
	reset, err := r.store.ResetStuck(ctx)
	if err != nil {
		return err
	}
	if reset > 0 {
		r.logger.Info("requeued interrupted conversions", slog.Int64("jobs", reset))
	}
	return nil
}

// RunOnce claims and processes at most one job. It reports whether a job was
// claimed; job failures are recorded on the job, not returned.
func (r *Runner) RunOnce(ctx context.Context) (bool, error) {
	job, err := r.store.ClaimNextPending(ctx)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}

	jobCtx := logging.ContextWithJob(ctx, job.ID, job.CorrelationID)
	logger := logging.WithContext(jobCtx, r.logger)
	logger.Info("converting", slog.String("source", job.SourcePath))

	targetPath, err := r.process(jobCtx, job)
	if err != nil {
		logger.Error("conversion failed", slog.String("error", err.Error()))
		if markErr := r.store.MarkFailed(ctx, job.ID, err.Error()); markErr != nil {
			return true, markErr
		}
		return true, nil
	}

	logger.Info("conversion completed", slog.String(logging.FieldContainer, targetPath))
	return true, r.store.MarkCompleted(ctx, job.ID, targetPath)
}

// Drain processes jobs until the queue is empty or ctx is cancelled.
func (r *Runner) Drain(ctx context.Context) (int, error) {
	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		claimed, err := r.RunOnce(ctx)
		if err != nil {
			return processed, err
		}
		if !claimed {
			return processed, nil
		}
		processed++
	}
}

// Watch drains the queue and then polls for new work until ctx is cancelled.
func (r *Runner) Watch(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.QueuePollInterval())
	defer ticker.Stop()
	for {
		if _, err := r.Drain(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (r *Runner) process(ctx context.Context, job *convertqueue.Job) (string, error) {
	original, err := os.ReadFile(job.SourcePath)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}
	pages, err := LoadRenderedPages(job.PagesDir)
	if err != nil {
		return "", err
	}

	estimated := uint64(len(original))
	for _, page := range pages {
		estimated += uint64(len(page))
	}
	if err := preflight.ForConversion(r.cfg, estimated); err != nil {
		return "", err
	}

	title := job.Title
	if strings.TrimSpace(title) == "" {
		title = strings.TrimSuffix(filepath.Base(job.SourcePath), filepath.Ext(job.SourcePath))
	}
	targetPath, err := TargetPath(r.cfg.Paths.LibraryDir, title)
	if err != nil {
		return "", err
	}

	if err := r.converter.Convert(ctx, convert.Request{
		Title:      title,
		Original:   original,
		Pages:      pages,
		TargetPath: targetPath,
	}); err != nil {
		return "", err
	}
	return targetPath, nil
}

// TargetPath picks an unused container path under dir for the given title.
// Collisions get a numeric suffix instead of overwriting an existing score.
func TargetPath(dir, title string) (string, error) {
	base := fileutil.SanitizeFileName(title)
	if base == "" {
		base = "score"
	}
	for attempt := 0; attempt < 1000; attempt++ {
		name := base
		if attempt > 0 {
			name = fmt.Sprintf("%s-%d", base, attempt+1)
		}
		path := filepath.Join(dir, name+".scorepack")
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return path, nil
		} else if err != nil {
			return "", fmt.Errorf("stat %s: %w", path, err)
		}
	}
	return "", fmt.Errorf("no free container name for %q in %s", title, dir)
}
