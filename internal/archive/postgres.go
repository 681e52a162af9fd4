package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/GaoLiyu/kb-system-back-sub000/internal/common"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS extract_records (
	id            UUID PRIMARY KEY,
	run_id        UUID NOT NULL,
	source_file   TEXT NOT NULL,
	source_path   TEXT NOT NULL,
	family        TEXT NOT NULL,
	status        TEXT NOT NULL,
	rules_version TEXT NOT NULL,
	diagnostics   INTEGER NOT NULL DEFAULT 0,
	payload       JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL,
	error_message TEXT
);
CREATE INDEX IF NOT EXISTS extract_records_run_id ON extract_records(run_id);
`

// PostgresStore keeps records in the knowledge-base database.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// OpenPostgres creates a pgx pool, checks it and makes sure the table exists.
func OpenPostgres(ctx context.Context, cfg common.ArchiveConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to archive database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse archive dsn", "error", err)
		return nil, common.NewAppError("ARCHIVE_ERROR", "parse dsn", errors.Join(common.ErrDatabase, err))
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = cfg.MinConns
	pc.ConnConfig.RuntimeParams["application_name"] = "appraisal-extract"

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 3 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	pool, err := pgxpool.NewWithConfig(dialCtx, pc)
	if err != nil {
		logger.Error("failed to connect to archive database", "error", err)
		return nil, common.NewAppError("ARCHIVE_ERROR", "connect", errors.Join(common.ErrDatabase, err))
	}
	if err := HealthCheck(ctx, pool, dialTimeout, logger); err != nil {
		pool.Close()
		return nil, common.NewAppError("ARCHIVE_ERROR", "ping", errors.Join(common.ErrDatabase, err))
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, common.NewAppError("ARCHIVE_ERROR", "create schema", errors.Join(common.ErrDatabase, err))
	}
	logger.Info("successfully connected to archive database")
	return &PostgresStore{pool: pool, logger: logger}, nil
}

// HealthCheck pings the pool to catch DSN issues early.
func HealthCheck(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging archive database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	logger.Debug("archive database ping successful")
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, rec *entity.ExtractRecord) error {
	if err := prepare(rec); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO extract_records
	(id, run_id, source_file, source_path, family, status, rules_version, diagnostics, payload, created_at, error_message)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (id) DO UPDATE SET
	status = EXCLUDED.status,
	diagnostics = EXCLUDED.diagnostics,
	payload = EXCLUDED.payload,
	error_message = EXCLUDED.error_message`,
		rec.ID, rec.RunID, rec.SourceFile, rec.SourcePath, rec.Family, rec.Status,
		rec.RulesVersion, rec.Diagnostics, string(rec.Payload), rec.CreatedAt, rec.ErrorMessage,
	)
	if err != nil {
		s.logger.Error("archive.postgres.save.failed", "id", rec.ID, "source_file", rec.SourceFile, "err", err)
		return fmt.Errorf("archive save: %w", err)
	}
	s.logger.Debug("archive.postgres.save.ok", "id", rec.ID, "source_file", rec.SourceFile)
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*entity.ExtractRecord, error) {
	var (
		rec     entity.ExtractRecord
		payload string
	)
	err := s.pool.QueryRow(ctx, `
SELECT id, run_id, source_file, source_path, family, status, rules_version, diagnostics, payload::text, created_at, error_message
FROM extract_records WHERE id = $1`, id).Scan(
		&rec.ID, &rec.RunID, &rec.SourceFile, &rec.SourcePath, &rec.Family, &rec.Status,
		&rec.RulesVersion, &rec.Diagnostics, &payload, &rec.CreatedAt, &rec.ErrorMessage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("archive get: %w", err)
	}
	rec.Payload = []byte(payload)
	return &rec, nil
}

// Close closes the pool gracefully.
func (s *PostgresStore) Close() {
	s.logger.Info("closing archive database connections")
	if s.pool != nil {
		s.pool.Close()
	}
	s.logger.Info("archive database connections closed")
}
