package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GaoLiyu/kb-system-back-sub000/constants"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/async"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/common"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/export"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/ingest"
)

// BatchOptions configures a directory run.
type BatchOptions struct {
	Family     constants.ReportFamily // empty means detect per file
	Exts       []string
	SkipHidden bool
	OutDir     string // empty means no files are written
	XLSX       bool   // also write one workbook per file
	Workers    int
	QueueSize  int
	Timeout    time.Duration
}

// FileFailure names a file that could not be processed.
type FileFailure struct {
	Path string
	Err  string
}

// Summary aggregates a directory run.
type Summary struct {
	RunID       uuid.UUID
	Scan        ingest.DirStats
	Processed   int
	Archived    int
	Diagnostics int
	Failures    []FileFailure
	Statuses    map[string]constants.JobStatus // path -> last known status
	Outputs     []string
	Elapsed     time.Duration
}

// Writer persists the outcome of one file.
type Writer struct {
	dir      string
	xlsx     bool
	exporter *export.Service
}

func NewWriter(dir string, xlsx bool, exporter *export.Service) *Writer {
	return &Writer{dir: dir, xlsx: xlsx, exporter: exporter}
}

// Write stores <stem>.result.json (and .result.xlsx) under the output dir.
func (w *Writer) Write(out *Outcome) ([]string, error) {
	if w == nil || w.dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(out.Path), filepath.Ext(out.Path))
	jsonPath := filepath.Join(w.dir, stem+".result.json")
	if err := os.WriteFile(jsonPath, out.JSON, 0o644); err != nil {
		return nil, fmt.Errorf("write json: %w", err)
	}
	paths := []string{jsonPath}
	if w.xlsx && w.exporter != nil {
		b, err := w.exporter.ResultXLSX(out.Report)
		if err != nil {
			return paths, err
		}
		xlsxPath := filepath.Join(w.dir, stem+".result.xlsx")
		if err := os.WriteFile(xlsxPath, b, 0o644); err != nil {
			return paths, fmt.Errorf("write xlsx: %w", err)
		}
		paths = append(paths, xlsxPath)
	}
	return paths, nil
}

// RunDirectory scans root and processes every distinct matching file on a
// worker pool. Per-file failures are collected in the summary; only a scan
// failure is returned as an error.
func (p *Processor) RunDirectory(ctx context.Context, root string, opts BatchOptions, w *Writer) (*Summary, error) {
	start := time.Now()
	sum := &Summary{RunID: uuid.New(), Statuses: map[string]constants.JobStatus{}}
	logger := p.logger.With("run_id", sum.RunID.String())

	files, stats, err := ingest.ScanDirectory(root, opts.Exts, opts.SkipHidden)
	sum.Scan = stats
	if err != nil {
		return sum, common.NewAppError("SCAN_ERROR", "scan "+root, err)
	}
	logger.Info("batch.scan.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed)

	var mu sync.Mutex
	record := func(path string, out *Outcome, paths []string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			sum.Statuses[path] = constants.JobStatusFailed
			sum.Failures = append(sum.Failures, FileFailure{Path: path, Err: err.Error()})
			return
		}
		sum.Statuses[path] = out.Status
		sum.Processed++
		sum.Diagnostics += out.Diagnostics
		if out.Status == constants.JobStatusArchived {
			sum.Archived++
		}
		sum.Outputs = append(sum.Outputs, paths...)
	}

	runCtx := common.WithRunID(ctx, sum.RunID.String())
	q := async.NewWorkerQueue(func(jobCtx context.Context, job async.Job) error {
		jobCtx = common.WithRunID(jobCtx, job.RunID.String())
		jobCtx = common.WithLogger(jobCtx, logger)
		out, err := p.ProcessFile(jobCtx, job.Path, job.Family)
		if err != nil {
			record(job.Path, nil, nil, err)
			return err
		}
		paths, werr := w.Write(out)
		record(job.Path, out, paths, werr)
		return werr
	}, logger,
		async.WithWorkers(opts.Workers),
		async.WithQueueSize(opts.QueueSize),
		async.WithProcessTimeout(opts.Timeout),
	)

	seq := 0
	for _, f := range files {
		if f.Err != "" {
			sum.Failures = append(sum.Failures, FileFailure{Path: f.Path, Err: f.Err})
			continue
		}
		if f.Deduplicated {
			logger.Info("batch.skip.duplicate", "path", f.Path, "hash", f.HashHex)
			continue
		}
		seq++
		job := async.Job{RunID: sum.RunID, Seq: seq, Path: f.Path, Family: opts.Family}
		mu.Lock()
		sum.Statuses[f.Path] = constants.JobStatusQueued
		mu.Unlock()
		if err := q.Enqueue(runCtx, job); err != nil {
			mu.Lock()
			sum.Statuses[f.Path] = constants.JobStatusFailed
			sum.Failures = append(sum.Failures, FileFailure{Path: f.Path, Err: err.Error()})
			mu.Unlock()
		}
	}
	q.Shutdown(ctx)

	sum.Elapsed = time.Since(start)
	mu.Lock()
	defer mu.Unlock()
	pending := 0
	for _, st := range sum.Statuses {
		if st == constants.JobStatusQueued {
			pending++
		}
	}
	logger.Info("batch.ok",
		"processed", sum.Processed,
		"archived", sum.Archived,
		"failed", len(sum.Failures),
		"pending", pending,
		"diagnostics", sum.Diagnostics,
		"elapsed_ms", sum.Elapsed.Milliseconds())
	return sum, nil
}
