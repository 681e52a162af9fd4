package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/GaoLiyu/kb-system-back-sub000/constants"
)

// ErrClosed is returned by Enqueue once Shutdown has started.
var ErrClosed = errors.New("queue is shutting down")

// Job is one document of a batch run.
type Job struct {
	RunID       uuid.UUID
	Seq         int
	Path        string
	Family      constants.ReportFamily // empty means detect from the file name
	SubmittedAt time.Time
}

// Handler processes one job.
type Handler func(ctx context.Context, job Job) error

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
