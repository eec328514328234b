package domain

// CheckpointStatus is the terminal state recorded for a unit.
type CheckpointStatus string

const (
	// StatusDone means the unit's result was merged into the
	// accumulation buffer and flushed.
	StatusDone CheckpointStatus = "DONE"

	// StatusMissing means the unit had no source data; recorded so the
	// unit is not retried on resume.
	StatusMissing CheckpointStatus = "MISSING"
)

// CheckpointRecord marks one work unit as completed for one run.
// Written exactly once per (run id, product, unit); presence means
// "do not recompute".
type CheckpointRecord struct {
	RunID       string
	Product     string
	Unit        WorkUnitKey
	Status      CheckpointStatus
	CompletedAt int64 // Unix timestamp in milliseconds
}
