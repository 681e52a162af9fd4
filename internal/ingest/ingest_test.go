package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.json"), `{"tables":[]}`)
	writeFile(t, filepath.Join(root, "sub", "a.XLSX"), "xlsx bytes")
	writeFile(t, filepath.Join(root, "sub", "copy.json"), `{"tables":[]}`)
	writeFile(t, filepath.Join(root, "notes.txt"), "skip")
	writeFile(t, filepath.Join(root, ".hidden", "c.json"), "{}")
	writeFile(t, filepath.Join(root, "~$b.xlsx"), "lock")

	results, stats, err := ScanDirectory(root, nil, true)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if stats.Matched != 3 || stats.Succeeded != 3 || stats.Deduplicated != 1 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	want := []string{
		filepath.Join(root, "b.json"),
		filepath.Join(root, "sub", "a.XLSX"),
		filepath.Join(root, "sub", "copy.json"),
	}
	if len(results) != len(want) {
		t.Fatalf("results = %+v", results)
	}
	for i, r := range results {
		if r.Path != want[i] {
			t.Errorf("results[%d] = %s, want %s", i, r.Path, want[i])
		}
		if len(r.HashHex) != 64 || r.Size == 0 {
			t.Errorf("results[%d] hash/size = %q/%d", i, r.HashHex, r.Size)
		}
	}
	if results[0].Deduplicated || !results[2].Deduplicated {
		t.Errorf("dedup flags = %v %v", results[0].Deduplicated, results[2].Deduplicated)
	}

	_, stats, err = ScanDirectory(root, []string{".TXT"}, false)
	if err != nil || stats.Matched != 1 {
		t.Errorf("txt scan: %+v %v", stats, err)
	}
}

func TestScanDirectoryErrors(t *testing.T) {
	if _, _, err := ScanDirectory("  ", nil, true); err == nil {
		t.Error("empty root accepted")
	}
	if _, _, err := ScanDirectory(filepath.Join(t.TempDir(), "missing"), nil, true); err == nil {
		t.Error("missing root accepted")
	}
}

func TestIsHidden(t *testing.T) {
	cases := map[string]bool{
		"/a/.git":        true,
		"/a/~$r.xlsx":    true,
		"/a/report.json": false,
		".":              false,
	}
	for path, want := range cases {
		if got := IsHidden(path); got != want {
			t.Errorf("IsHidden(%q) = %v, want %v", path, got, want)
		}
	}
	if !AllowedExt(".JSON") || AllowedExt("pdf") {
		t.Error("AllowedExt")
	}
}

func TestWatcherInitialScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "r.json"), "{}")
	writeFile(t, filepath.Join(root, "r.txt"), "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true}, nil)
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}
	select {
	case p := <-events:
		if p != filepath.Join(root, "r.json") {
			t.Errorf("event = %s", p)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no initial event")
	}
	cancel()
	for range events {
	}

	if _, _, err := StartWatcher(context.Background(), WatchConfig{}, nil); err == nil {
		t.Error("no roots accepted")
	}
}
