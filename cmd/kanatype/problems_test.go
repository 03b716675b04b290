package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/kanatype/internal/model"
	"github.com/verte-zerg/kanatype/internal/store"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.ntq")
	bad := filepath.Join(dir, "bad.ntq")
	writeFile(t, good, "#title (猫/ねこ)\nねこ/です\n")
	writeFile(t, bad, "#title t\n(猫ねこ)\n")

	line, ok := checkFile(good)
	if !ok || !strings.Contains(line, "2 words") {
		t.Fatalf("unexpected check output %q ok=%v", line, ok)
	}
	line, ok = checkFile(bad)
	if ok || !strings.HasPrefix(line, bad+":2:1: ") {
		t.Fatalf("unexpected check output %q ok=%v", line, ok)
	}
}

func TestSuggestName(t *testing.T) {
	known := []string{"basic", "hyakunin", "katakana"}
	if got := suggestName("hyakunim", known); got != "hyakunin" {
		t.Fatalf("expected hyakunin, got %q", got)
	}
	if got := suggestName("zzz", known); got != "" {
		t.Fatalf("expected no suggestion, got %q", got)
	}
}

func TestIndexDir(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	st, err := store.Open(filepath.Join(root, "catalog.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			t.Fatalf("close: %v", cerr)
		}
	}()

	dir := filepath.Join(root, "problems")
	writeFile(t, filepath.Join(dir, "animals.ntq"), "#title どうぶつ\nねこ\nいぬ\n")
	writeFile(t, filepath.Join(dir, "nested", "broken.ntq"), "no title\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	now := time.Unix(1700000000, 0)
	summary, err := indexDir(ctx, st, dir, now)
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if summary.files != 2 || summary.parsed != 2 || summary.removed != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	files, err := st.ListProblemFiles(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(files))
	}
	if files[0].Name != "animals" || files[0].Problems != 2 || !files[0].Valid() {
		t.Fatalf("unexpected entry %+v", files[0])
	}
	if files[1].Name != "broken" || files[1].Valid() {
		t.Fatalf("expected broken entry with parse error, got %+v", files[1])
	}

	summary, err = indexDir(ctx, st, dir, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if summary.parsed != 0 {
		t.Fatalf("expected unchanged files to be skipped, got %+v", summary)
	}

	if err := os.Remove(filepath.Join(dir, "nested", "broken.ntq")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	summary, err = indexDir(ctx, st, dir, now)
	if err != nil {
		t.Fatalf("reindex: %v", err)
	}
	if summary.removed != 1 {
		t.Fatalf("expected one pruned entry, got %+v", summary)
	}
}

func TestWriteProblemList(t *testing.T) {
	var buf bytes.Buffer
	files := []model.ProblemFile{
		{Name: "animals", Title: "どうぶつ", Problems: 2, Words: 2, Path: "/p/animals.ntq"},
		{Name: "broken", ParseErr: "line 1, column 1: missing #title line", Path: "/p/broken.ntq"},
	}
	if err := writeProblemList(&buf, []string{"basic"}, files); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Name", "basic", "builtin", "どうぶつ", "/p/animals.ntq", "(invalid: line 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestIndexDirPrunesRelativeDirs(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	st, err := store.Open(filepath.Join(root, "catalog.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			t.Fatalf("close: %v", cerr)
		}
	}()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(root); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	for _, dir := range []string{"./probs", filepath.Join(root, ".", "probs"), "."} {
		t.Run(dir, func(t *testing.T) {
			path := filepath.Join(root, "probs", "a.ntq")
			writeFile(t, path, "#title a\nあ\n")
			now := time.Unix(1700000000, 0)
			if _, err := indexDir(ctx, st, dir, now); err != nil {
				t.Fatalf("index: %v", err)
			}
			if err := os.Remove(path); err != nil {
				t.Fatalf("remove: %v", err)
			}
			summary, err := indexDir(ctx, st, dir, now)
			if err != nil {
				t.Fatalf("reindex: %v", err)
			}
			if summary.removed != 1 {
				t.Fatalf("expected one pruned entry, got %+v", summary)
			}
			files, err := st.ListProblemFiles(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(files) != 0 {
				t.Fatalf("expected empty catalog, got %+v", files)
			}
		})
	}
}
