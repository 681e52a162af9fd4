package constants

// JobStatus is the canonical status for one file in a batch run.
type JobStatus string

// Stable values (stored as-is in the archive).
const (
	JobStatusQueued    JobStatus = "QUEUED"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusExtracted JobStatus = "EXTRACTED" // result built, may carry diagnostics
	JobStatusArchived  JobStatus = "ARCHIVED"  // result written to the archive store
	JobStatusFailed    JobStatus = "FAILED"    // terminal failure
)
