package convertqueue

import "time"

// Status is a conversion job's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConverting Status = "converting"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Valid reports whether the status is one of the known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConverting, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Job is one queued conversion. SourcePath is the original document;
// PagesDir holds the externally rendered page images in render order.
type Job struct {
	ID            int64
	SourcePath    string
	PagesDir      string
	Title         string
	TargetPath    string
	Status        Status
	ErrorMessage  string
	CorrelationID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
