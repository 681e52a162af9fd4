package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/GaoLiyu/kb-system-back-sub000/constants"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/archive"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/common"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/export"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/extract"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/ingest"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/pipeline"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/rules"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()

	var (
		dir      = flag.String("dir", "", "directory of report documents (required)")
		out      = flag.String("out", cfg.Export.Dir, "output directory for per-file results")
		typ      = flag.String("type", cfg.Extract.ReportType, "force one report type for every file")
		exts     = flag.String("ext", "", "comma-separated extensions to include (default json,xlsx)")
		xlsx     = flag.Bool("xlsx", false, "also write one XLSX workbook per file")
		validate = flag.Bool("validate", true, "check every result against the JSON schema")
		rulesDir = flag.String("rules", cfg.Extract.RulesDir, "directory of family rule files")
		workers  = flag.Int("workers", cfg.Batch.Workers, "number of worker goroutines")
		watch    = flag.Bool("watch", false, "keep running and process files as they appear")
	)
	flag.Parse()

	cfg.Extract.ReportType = *typ
	cfg.Batch.Workers = *workers
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}
	if *dir == "" {
		printError("Error: -dir is required\n")
		os.Exit(2)
	}
	logger := common.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var reg *rules.Registry
	var err error
	if *rulesDir == "" {
		reg, err = rules.Default()
	} else {
		reg, err = rules.LoadDir(*rulesDir)
	}
	if err != nil {
		logger.Error("rules.load.failed", "dir", *rulesDir, "error", err)
		os.Exit(1)
	}

	store, err := archive.Open(ctx, cfg.Archive, logger)
	if err != nil {
		logger.Error("archive.open.failed", "driver", cfg.Archive.Driver, "error", err)
		os.Exit(1)
	}
	if store != nil {
		defer store.Close()
	}

	family, _ := constants.ParseFamily(*typ)
	var include []string
	if *exts != "" {
		include = strings.Split(*exts, ",")
	}

	proc := pipeline.NewProcessor(logger, extract.NewDispatcher(reg, logger), store, *validate)
	writer := pipeline.NewWriter(*out, *xlsx, export.NewService(logger))

	if *watch {
		if err := runWatch(ctx, proc, writer, *dir, include, family, logger); err != nil {
			logger.Error("watch.failed", "error", err)
			os.Exit(1)
		}
		return
	}

	sum, err := proc.RunDirectory(ctx, *dir, pipeline.BatchOptions{
		Family:     family,
		Exts:       include,
		SkipHidden: true,
		Workers:    cfg.Batch.Workers,
		QueueSize:  cfg.Batch.QueueSize,
		Timeout:    cfg.Batch.Timeout,
	}, writer)
	if err != nil {
		logger.Error("batch.failed", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Batch run %s complete in %s\n", sum.RunID, sum.Elapsed.Round(time.Millisecond))
	fmt.Printf("- Files matched: %d (duplicates skipped: %d)\n", sum.Scan.Matched, sum.Scan.Deduplicated)
	fmt.Printf("- Files processed: %d\n", sum.Processed)
	fmt.Printf("- Files archived: %d\n", sum.Archived)
	fmt.Printf("- Cell diagnostics: %d\n", sum.Diagnostics)
	fmt.Printf("- Failures: %d\n", len(sum.Failures))
	for _, f := range sum.Failures {
		fmt.Printf("  %s: %s\n", filepath.Base(f.Path), f.Err)
	}
	if *out != "" {
		fmt.Printf("- Output: %s\n", *out)
	}
	if len(sum.Failures) > 0 {
		os.Exit(1)
	}
}

// runWatch processes files under dir as they are created or rewritten,
// starting with the ones already there, until ctx is cancelled.
func runWatch(ctx context.Context, proc *pipeline.Processor, w *pipeline.Writer, dir string, include []string, family constants.ReportFamily, logger *slog.Logger) error {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       []string{dir},
		Exts:        include,
		SkipHidden:  true,
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
	}, logger)
	if err != nil {
		return err
	}
	runID := uuid.New()
	ctx = common.WithRunID(ctx, runID.String())
	logger.Info("watch.started", "dir", dir, "run_id", runID.String())

	for {
		select {
		case path, ok := <-events:
			if !ok {
				logger.Info("watch.stopped")
				return nil
			}
			out, err := proc.ProcessFile(ctx, path, family)
			if err != nil {
				continue
			}
			if _, err := w.Write(out); err != nil {
				logger.Error("watch.write.failed", "path", path, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Warn("watch.error", "error", err)
		}
	}
}
