package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/GaoLiyu/kb-system-back-sub000/constants"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/archive"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/common"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/export"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/extract"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/rules"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var rentalTables = [][][]string{
	{
		{"坐落", "楼层", "建筑面积(㎡)", "年租金(元)", "租金单价(元/㎡·年)"},
		{"浙江省杭州市西湖区文新街道文三路8号", "3", "200", "144000", "720"},
	},
	{
		{"项目", "", "估价对象", "可比实例A", "可比实例B", "可比实例C"},
		{"地址", "", "文三路8号", "文三路9号", "文三路10号", "文三路11号"},
		{"财产范围", "", "房屋", "房屋", "房屋", "房屋"},
		{"付款方式", "", "年付", "年付", "半年付", "季付"},
		{"租赁价格", "", "", "700", "730", "760"},
		{"交易日期", "", "", "2024年1月", "2024年2月", "2024年3月"},
	},
	{
		{"项目", "可比实例A", "可比实例B", "可比实例C"},
		{"交易情况", "100/100", "100/100", "100/100"},
		{"市场状况", "1.00", "1.01", "1.00"},
		{"调整后单价", "702", "725", "741"},
	},
}

func writeDump(t *testing.T, dir, name string) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{"tables": rentalTables})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newProcessor(t *testing.T, store archive.Store) *Processor {
	t.Helper()
	reg, err := rules.Default()
	if err != nil {
		t.Fatalf("rules.Default: %v", err)
	}
	return NewProcessor(quietLogger(), extract.NewDispatcher(reg, quietLogger()), store, true)
}

func openStore(t *testing.T) *archive.SQLiteStore {
	t.Helper()
	s, err := archive.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kb.db"), quietLogger())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestProcessFileArchives(t *testing.T) {
	store := openStore(t)
	p := newProcessor(t, store)
	path := writeDump(t, t.TempDir(), "某项目租金报告.json")

	out, err := p.ProcessFile(context.Background(), path, "")
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if out.Family != constants.Zujin || out.Status != constants.JobStatusArchived || out.Diagnostics != 0 {
		t.Errorf("outcome = %+v", out)
	}

	rec, err := store.Get(context.Background(), out.RecordID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Family != "zujin" || rec.SourceFile != "某项目租金报告.json" || rec.RulesVersion == "" {
		t.Errorf("record = %+v", rec)
	}
	var payload map[string]any
	if err := json.Unmarshal(rec.Payload, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload["type"] != "zujin" || payload["report_type"] != "zujin" {
		t.Errorf("payload type = %v, report_type = %v", payload["type"], payload["report_type"])
	}
}

func TestProcessFileForcedFamily(t *testing.T) {
	p := newProcessor(t, nil)
	path := writeDump(t, t.TempDir(), "report.json")

	out, err := p.ProcessFile(context.Background(), path, constants.Zujin)
	if err != nil {
		t.Fatalf("ProcessFile: %v", err)
	}
	if out.Status != constants.JobStatusExtracted || len(out.JSON) == 0 {
		t.Errorf("outcome = %+v", out)
	}
}

func TestProcessFileFailures(t *testing.T) {
	store := openStore(t)
	p := newProcessor(t, store)
	dir := t.TempDir()

	out, err := p.ProcessFile(context.Background(), writeDump(t, dir, "report.json"), "")
	if !errors.Is(err, common.ErrUnsupportedReport) || out.Status != constants.JobStatusFailed {
		t.Fatalf("undetectable: %v %+v", err, out)
	}
	rec, gerr := store.Get(context.Background(), out.RecordID)
	if gerr != nil || rec.Status != string(constants.JobStatusFailed) || rec.ErrorMessage == nil {
		t.Errorf("failure record = %+v, %v", rec, gerr)
	}

	if _, err := p.ProcessFile(context.Background(), writeDump(t, dir, "租金.json"), "gongye"); !errors.Is(err, common.ErrUnsupportedReport) {
		t.Errorf("unknown family err = %v", err)
	}

	missing := filepath.Join(dir, "租金缺失.json")
	if _, err := p.ProcessFile(context.Background(), missing, ""); common.ErrorCode(err) != "LOAD_ERROR" {
		t.Errorf("missing file err = %v", err)
	}
}

func TestRunDirectory(t *testing.T) {
	root := t.TempDir()
	writeDump(t, root, "某项目租金报告.json")
	writeDump(t, root, "租金报告副本.json")
	if err := os.WriteFile(filepath.Join(root, "readme.json"), []byte(`{"tables":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	store := openStore(t)
	p := newProcessor(t, store)
	outDir := filepath.Join(t.TempDir(), "out")

	sum, err := p.RunDirectory(context.Background(), root, BatchOptions{
		SkipHidden: true,
		Workers:    2,
		QueueSize:  1,
	}, NewWriter(outDir, true, export.NewService(quietLogger())))
	if err != nil {
		t.Fatalf("RunDirectory: %v", err)
	}
	if sum.Processed != 1 || sum.Archived != 1 || len(sum.Failures) != 1 || sum.Scan.Deduplicated != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if len(sum.Failures) == 1 && filepath.Base(sum.Failures[0].Path) != "readme.json" {
		t.Errorf("failure = %+v", sum.Failures[0])
	}
	if len(sum.Statuses) != 2 {
		t.Errorf("statuses = %v", sum.Statuses)
	}
	for path, st := range sum.Statuses {
		want := constants.JobStatusArchived
		if filepath.Base(path) == "readme.json" {
			want = constants.JobStatusFailed
		}
		if st != want {
			t.Errorf("status %s = %s, want %s", filepath.Base(path), st, want)
		}
	}
	for _, name := range []string{"某项目租金报告.result.json", "某项目租金报告.result.xlsx"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("output %s: %v", name, err)
		}
	}
	if n, err := store.CountRun(context.Background(), sum.RunID); err != nil || n != 2 {
		t.Errorf("archived rows = %d, %v", n, err)
	}

	if _, err := p.RunDirectory(context.Background(), filepath.Join(root, "nope"), BatchOptions{}, nil); err == nil {
		t.Error("missing root accepted")
	}
}
