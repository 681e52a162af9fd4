package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/GaoLiyu/kb-system-back-sub000/internal/common"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS extract_records (
	id            TEXT PRIMARY KEY,
	run_id        TEXT NOT NULL,
	source_file   TEXT NOT NULL,
	source_path   TEXT NOT NULL,
	family        TEXT NOT NULL,
	status        TEXT NOT NULL,
	rules_version TEXT NOT NULL,
	diagnostics   INTEGER NOT NULL DEFAULT 0,
	payload       TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	error_message TEXT
);
CREATE INDEX IF NOT EXISTS extract_records_run_id ON extract_records(run_id);
`

var nowUTC = func() time.Time { return time.Now().UTC() }

// SQLiteStore keeps records in a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at dsn.
func OpenSQLite(ctx context.Context, dsn string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("archive.sqlite.open", "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, common.NewAppError("ARCHIVE_ERROR", "open sqlite", errors.Join(common.ErrDatabase, err))
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, common.NewAppError("ARCHIVE_ERROR", "create schema", errors.Join(common.ErrDatabase, err))
	}
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec *entity.ExtractRecord) error {
	if err := prepare(rec); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO extract_records
	(id, run_id, source_file, source_path, family, status, rules_version, diagnostics, payload, created_at, error_message)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	status = excluded.status,
	diagnostics = excluded.diagnostics,
	payload = excluded.payload,
	error_message = excluded.error_message`,
		rec.ID.String(), rec.RunID.String(), rec.SourceFile, rec.SourcePath, rec.Family, rec.Status,
		rec.RulesVersion, rec.Diagnostics, string(rec.Payload), rec.CreatedAt.Format(time.RFC3339Nano), rec.ErrorMessage,
	)
	if err != nil {
		s.logger.Error("archive.sqlite.save.failed", "id", rec.ID, "source_file", rec.SourceFile, "err", err)
		return fmt.Errorf("archive save: %w", err)
	}
	s.logger.Debug("archive.sqlite.save.ok", "id", rec.ID, "source_file", rec.SourceFile)
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id uuid.UUID) (*entity.ExtractRecord, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, run_id, source_file, source_path, family, status, rules_version, diagnostics, payload, created_at, error_message
FROM extract_records WHERE id = ?`, id.String())

	var (
		rec            entity.ExtractRecord
		rid, runID, ts string
		payload        string
		errMsg         sql.NullString
	)
	err := row.Scan(&rid, &runID, &rec.SourceFile, &rec.SourcePath, &rec.Family, &rec.Status,
		&rec.RulesVersion, &rec.Diagnostics, &payload, &ts, &errMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("archive get: %w", err)
	}
	if rec.ID, err = uuid.Parse(rid); err != nil {
		return nil, fmt.Errorf("archive get: id: %w", err)
	}
	if rec.RunID, err = uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("archive get: run_id: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
		return nil, fmt.Errorf("archive get: created_at: %w", err)
	}
	rec.Payload = []byte(payload)
	if errMsg.Valid {
		rec.ErrorMessage = &errMsg.String
	}
	return &rec, nil
}

// CountRun returns how many records a batch run produced.
func (s *SQLiteStore) CountRun(ctx context.Context, runID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM extract_records WHERE run_id = ?`, runID.String()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("archive count: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("archive.sqlite.close.failed", "err", err)
	}
}
