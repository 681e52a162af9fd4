package archive

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/GaoLiyu/kb-system-back-sub000/internal/common"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "archive.db"), logger)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestSQLiteSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	run := uuid.New()

	rec := &entity.ExtractRecord{
		RunID:        run,
		SourceFile:   "某涉执报告.json",
		SourcePath:   "/reports/某涉执报告.json",
		Family:       "shezhi",
		Status:       "ARCHIVED",
		RulesVersion: "1",
		Diagnostics:  2,
		Payload:      []byte(`{"report_type":"shezhi"}`),
	}
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.ID == uuid.Nil || rec.CreatedAt.IsZero() {
		t.Fatalf("generated fields not set: %+v", rec)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.RunID != run || got.SourceFile != rec.SourceFile || got.Diagnostics != 2 || got.Family != "shezhi" {
		t.Errorf("got %+v", got)
	}
	if string(got.Payload) != `{"report_type":"shezhi"}` {
		t.Errorf("payload = %s", got.Payload)
	}
	if got.ErrorMessage != nil {
		t.Errorf("error message = %v", *got.ErrorMessage)
	}
	if !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, rec.CreatedAt)
	}

	msg := "boom"
	rec.Status = "FAILED"
	rec.ErrorMessage = &msg
	if err := s.Save(ctx, rec); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	got, err = s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != "FAILED" || got.ErrorMessage == nil || *got.ErrorMessage != "boom" {
		t.Errorf("upsert not applied: %+v", got)
	}

	n, err := s.CountRun(ctx, run)
	if err != nil || n != 1 {
		t.Errorf("CountRun = %d, %v", n, err)
	}
}

func TestSQLiteGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get(context.Background(), uuid.New())
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveNilRecord(t *testing.T) {
	s := openTestStore(t)
	if err := s.Save(context.Background(), nil); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("err = %v", err)
	}
}

func TestOpenByDriver(t *testing.T) {
	ctx := context.Background()
	st, err := Open(ctx, common.ArchiveConfig{Driver: common.ArchiveNone}, nil)
	if err != nil || st != nil {
		t.Fatalf("none: %v %v", st, err)
	}

	st, err = Open(ctx, common.ArchiveConfig{Driver: common.ArchiveSQLite, DSN: filepath.Join(t.TempDir(), "a.db")}, nil)
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, ok := st.(*SQLiteStore); !ok {
		t.Errorf("store = %T", st)
	}
	st.Close()

	if _, err := Open(ctx, common.ArchiveConfig{Driver: "mongo"}, nil); !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("unknown driver err = %v", err)
	}
	if _, err := Open(ctx, common.ArchiveConfig{Driver: common.ArchivePostgres, DSN: "::not a dsn::"}, nil); err == nil {
		t.Error("bad postgres dsn accepted")
	}
}
