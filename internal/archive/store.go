// Package archive persists serialized extraction results for the knowledge
// base. The search index built on top of it lives elsewhere.
package archive

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/GaoLiyu/kb-system-back-sub000/internal/common"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
)

// Store saves and loads extraction records.
type Store interface {
	Save(ctx context.Context, rec *entity.ExtractRecord) error
	Get(ctx context.Context, id uuid.UUID) (*entity.ExtractRecord, error)
	Close()
}

// Open returns the store selected by cfg.Driver, or nil for ArchiveNone.
func Open(ctx context.Context, cfg common.ArchiveConfig, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Driver {
	case "", common.ArchiveNone:
		return nil, nil
	case common.ArchiveSQLite:
		s, err := OpenSQLite(ctx, cfg.DSN, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case common.ArchivePostgres:
		s, err := OpenPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("archive driver %q is not supported", cfg.Driver), common.ErrInvalidInput)
}

// prepare fills the generated fields of a record before insert.
func prepare(rec *entity.ExtractRecord) error {
	if rec == nil {
		return common.NewAppError("ARCHIVE_ERROR", "nil record", common.ErrInvalidInput)
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = nowUTC()
	}
	if len(rec.Payload) == 0 {
		rec.Payload = []byte("{}")
	}
	return nil
}

func notFound(id uuid.UUID) error {
	return common.NewAppError("NOT_FOUND", "archive record "+id.String(), common.ErrNotFound)
}
