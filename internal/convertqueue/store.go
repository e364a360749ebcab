package convertqueue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"scorepack/internal/config"
)

// Store manages conversion job persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the queue database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.QueueDatabasePath()
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Add enqueues a conversion job.
func (s *Store) Add(ctx context.Context, sourcePath, pagesDir, title string) (*Job, error) {
	if strings.TrimSpace(sourcePath) == "" {
		return nil, errors.New("source path is required")
	}
	if strings.TrimSpace(pagesDir) == "" {
		return nil, errors.New("pages directory is required")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO convert_jobs (source_path, pages_dir, title, status, correlation_id, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sourcePath, pagesDir, strings.TrimSpace(title), StatusPending, uuid.NewString(), timestamp, timestamp)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetByID fetches a job by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Job, error) {
	row := s.db.QueryRowContext(ctx, selectJobs+" WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return job, err
}

// List returns all jobs, oldest first.
func (s *Store) List(ctx context.Context) ([]*Job, error) {
	rows, err := s.db.QueryContext(ctx, selectJobs+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ClaimNextPending flips the oldest pending job to converting and returns it.
// Returns nil when the queue has no pending work. The compare-and-swap on
// status keeps concurrent runners from claiming the same job.
func (s *Store) ClaimNextPending(ctx context.Context) (*Job, error) {
	for {
		row := s.db.QueryRowContext(ctx,
			selectJobs+" WHERE status = ? ORDER BY id LIMIT 1", StatusPending)
		job, err := scanJob(row)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		res, err := s.db.ExecContext(ctx,
			"UPDATE convert_jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
			StatusConverting, now(), job.ID, StatusPending)
		if err != nil {
			return nil, fmt.Errorf("claim job %d: %w", job.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 1 {
			return s.GetByID(ctx, job.ID)
		}
		// Lost the race; try the next pending job.
	}
}

// MarkCompleted records a successful conversion and its produced container.
func (s *Store) MarkCompleted(ctx context.Context, id int64, targetPath string) error {
	return s.setStatus(ctx, id,
		"UPDATE convert_jobs SET status = ?, target_path = ?, error_message = '', updated_at = ? WHERE id = ?",
		StatusCompleted, targetPath, now(), id)
}

// MarkFailed records a failed conversion with a human-readable reason.
func (s *Store) MarkFailed(ctx context.Context, id int64, message string) error {
	return s.setStatus(ctx, id,
		"UPDATE convert_jobs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?",
		StatusFailed, strings.TrimSpace(message), now(), id)
}

// Retry flips a failed job back to pending.
func (s *Store) Retry(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE convert_jobs SET status = ?, error_message = '', updated_at = ? WHERE id = ? AND status = ?",
		StatusPending, now(), id, StatusFailed)
	if err != nil {
		return fmt.Errorf("retry job %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("job %d is not failed", id)
	}
	return nil
}

// ResetStuck flips jobs left in converting (an interrupted run) back to
// pending. Safe because an interrupted conversion leaves no partial container.
func (s *Store) ResetStuck(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE convert_jobs SET status = ?, updated_at = ? WHERE status = ?",
		StatusPending, now(), StatusConverting)
	if err != nil {
		return 0, fmt.Errorf("reset stuck jobs: %w", err)
	}
	return res.RowsAffected()
}

// Clear removes jobs in the given statuses; with no statuses it removes
// everything.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int64, error) {
	query := "DELETE FROM convert_jobs"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, st := range statuses {
			placeholders[i] = "?"
			args = append(args, st)
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) setStatus(ctx context.Context, id int64, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("job %d not found", id)
	}
	return nil
}

const selectJobs = `SELECT id, source_path, pages_dir, title, target_path, status,
    error_message, correlation_id, created_at, updated_at FROM convert_jobs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var job Job
	var status, createdAt, updatedAt string
	err := row.Scan(&job.ID, &job.SourcePath, &job.PagesDir, &job.Title, &job.TargetPath,
		&status, &job.ErrorMessage, &job.CorrelationID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	job.Status = Status(status)
	if job.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if job.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &job, nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
