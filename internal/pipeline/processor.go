// Package pipeline wires loading, extraction, serialization, validation and
// archiving of report files.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/GaoLiyu/kb-system-back-sub000/constants"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/archive"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/common"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/document"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/extract"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/serialize"
)

// Outcome is the result of processing one file.
type Outcome struct {
	Path        string
	Family      constants.ReportFamily
	Report      entity.Report
	JSON        []byte
	Diagnostics int
	Status      constants.JobStatus
	RecordID    uuid.UUID // uuid.Nil unless archived
	Elapsed     time.Duration
}

// Processor runs one file through the extraction stages.
type Processor struct {
	logger     *slog.Logger
	dispatcher *extract.Dispatcher
	store      archive.Store // optional
	validate   bool
}

func NewProcessor(logger *slog.Logger, dispatcher *extract.Dispatcher, store archive.Store, validate bool) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{logger: logger, dispatcher: dispatcher, store: store, validate: validate}
}

// ProcessFile loads path, extracts it as family (detected from the file
// name when empty), serializes and optionally validates the result, then
// archives it when a store is configured. The run ID is taken from ctx.
func (p *Processor) ProcessFile(ctx context.Context, path string, family constants.ReportFamily) (*Outcome, error) {
	start := time.Now()
	out := &Outcome{Path: path, Family: family, Status: constants.JobStatusRunning}
	logger := common.LoggerFromContext(ctx, p.logger).With("file", filepath.Base(path))

	if out.Family == "" {
		f, ok := constants.DetectFamily(path)
		if !ok {
			err := common.NewAppError("UNSUPPORTED_REPORT", "cannot detect report type from "+filepath.Base(path), common.ErrUnsupportedReport)
			return p.fail(ctx, out, start, err)
		}
		out.Family = f
	}

	doc, err := document.Open(ctx, path)
	if err != nil {
		logger.Error("processor.load.failed", "err", err)
		return p.fail(ctx, out, start, common.NewAppError("LOAD_ERROR", "load document", errors.Join(common.ErrInvalidInput, err)))
	}

	rep, err := p.dispatcher.Extract(doc, out.Family)
	if err != nil {
		return p.fail(ctx, out, start, common.WrapError(err, "extract"))
	}
	out.Report = rep
	out.Diagnostics = len(rep.DiagnosticList())

	b, err := serialize.JSON(rep)
	if err != nil {
		return p.fail(ctx, out, start, common.NewAppError("INTERNAL_ERROR", "serialize result", errors.Join(common.ErrInternal, err)))
	}
	out.JSON = b
	if p.validate {
		if err := serialize.ValidateJSON(b); err != nil {
			logger.Error("processor.validate.failed", "err", err)
			return p.fail(ctx, out, start, common.NewAppError("VALIDATION_ERROR", "result schema", errors.Join(common.ErrValidation, err)))
		}
	}
	out.Status = constants.JobStatusExtracted

	if p.store != nil {
		rec := p.record(ctx, out)
		if err := p.store.Save(ctx, rec); err != nil {
			return p.fail(ctx, out, start, common.NewAppError("ARCHIVE_ERROR", "save record", errors.Join(common.ErrDatabase, err)))
		}
		out.RecordID = rec.ID
		out.Status = constants.JobStatusArchived
	}

	out.Elapsed = time.Since(start)
	logger.Info("processor.ok",
		"family", string(out.Family),
		"status", string(out.Status),
		"diagnostics", out.Diagnostics,
		"elapsed_ms", out.Elapsed.Milliseconds())
	return out, nil
}

func (p *Processor) record(ctx context.Context, out *Outcome) *entity.ExtractRecord {
	runID, _ := uuid.Parse(common.RunIDFromContext(ctx))
	return &entity.ExtractRecord{
		RunID:        runID,
		SourceFile:   filepath.Base(out.Path),
		SourcePath:   out.Path,
		Family:       string(out.Family),
		Status:       string(constants.JobStatusArchived),
		RulesVersion: p.dispatcher.Versions()[out.Family],
		Diagnostics:  out.Diagnostics,
		Payload:      out.JSON,
	}
}

// fail marks the outcome failed and, with a store, records the failure.
// An archive error here is logged and does not replace err.
func (p *Processor) fail(ctx context.Context, out *Outcome, start time.Time, err error) (*Outcome, error) {
	out.Status = constants.JobStatusFailed
	out.Elapsed = time.Since(start)
	if p.store != nil && common.ErrorCode(err) != "ARCHIVE_ERROR" {
		rec := p.record(ctx, out)
		rec.Status = string(constants.JobStatusFailed)
		msg := err.Error()
		rec.ErrorMessage = &msg
		if serr := p.store.Save(ctx, rec); serr != nil {
			p.logger.Warn("processor.archive_failure.failed", "file", filepath.Base(out.Path), "err", serr)
		} else {
			out.RecordID = rec.ID
		}
	}
	p.logger.Error("processor.failed", "file", filepath.Base(out.Path), "family", string(out.Family), "code", common.ErrorCode(err), "err", err)
	return out, err
}
