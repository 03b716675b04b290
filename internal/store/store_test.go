package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/kanatype/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "data", "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestUpsertAndList(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	mod := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	files := []model.ProblemFile{
		{Path: "/p/b.ntq", Name: "b", Title: "B", Problems: 2, Words: 5, ModTime: mod, IndexedAt: mod},
		{Path: "/p/a.ntq", Name: "a", Title: "A", Problems: 1, Words: 3, ModTime: mod, IndexedAt: mod},
	}
	if err := st.UpsertProblemFiles(ctx, files); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	list, err := st.ListProblemFiles(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].Name != "a" || list[1].Name != "b" {
		t.Fatalf("unexpected list %+v", list)
	}
	if !list[0].ModTime.Equal(mod) || list[0].Words != 3 || !list[0].Valid() {
		t.Fatalf("unexpected entry %+v", list[0])
	}

	files[0].ParseErr = "line 2, column 1: unbalanced annotation"
	files[0].Problems = 0
	if err := st.UpsertProblemFiles(ctx, files[:1]); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	got, ok, err := st.GetProblemFile(ctx, "/p/b.ntq")
	if err != nil || !ok {
		t.Fatalf("get: %v %v", ok, err)
	}
	if got.Valid() || got.Problems != 0 {
		t.Fatalf("expected updated invalid entry, got %+v", got)
	}
	if _, ok, err := st.GetProblemFile(ctx, "/p/missing.ntq"); err != nil || ok {
		t.Fatalf("expected missing entry, got %v %v", ok, err)
	}
}

func TestFindByName(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	if err := st.UpsertProblemFiles(ctx, []model.ProblemFile{
		{Path: "/p/x/poems.ntq", Name: "poems", ModTime: now, IndexedAt: now},
		{Path: "/p/y/poems.ntq", Name: "poems", ModTime: now, IndexedAt: now},
		{Path: "/p/other.ntq", Name: "other", ModTime: now, IndexedAt: now},
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	found, err := st.FindByName(ctx, "poems")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(found) != 2 || found[0].Path != "/p/x/poems.ntq" {
		t.Fatalf("unexpected matches %+v", found)
	}
}

func TestPruneMissing(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	dir := filepath.Join(string(filepath.Separator), "p")
	keep := filepath.Join(dir, "keep.ntq")
	gone := filepath.Join(dir, "gone.ntq")
	outside := filepath.Join(string(filepath.Separator), "q", "other.ntq")
	if err := st.UpsertProblemFiles(ctx, []model.ProblemFile{
		{Path: keep, Name: "keep", ModTime: now, IndexedAt: now},
		{Path: gone, Name: "gone", ModTime: now, IndexedAt: now},
		{Path: outside, Name: "other", ModTime: now, IndexedAt: now},
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	n, err := st.PruneMissing(ctx, dir, []string{keep})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 pruned row, got %d", n)
	}
	list, err := st.ListProblemFiles(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 remaining entries, got %+v", list)
	}
}

func TestPruneMissingUncleanDir(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	sep := string(filepath.Separator)
	dir := filepath.Join(sep, "p")
	keep := filepath.Join(dir, "keep.ntq")
	gone := filepath.Join(dir, "gone.ntq")
	if err := st.UpsertProblemFiles(ctx, []model.ProblemFile{
		{Path: keep, Name: "keep", ModTime: now, IndexedAt: now},
		{Path: gone, Name: "gone", ModTime: now, IndexedAt: now},
	}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	unclean := sep + "p" + sep + "." + sep + "sub" + sep + ".." + sep
	n, err := st.PruneMissing(ctx, unclean, []string{sep + "p" + sep + "." + sep + "keep.ntq"})
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 pruned row, got %d", n)
	}
	if _, ok, err := st.GetProblemFile(ctx, keep); err != nil || !ok {
		t.Fatalf("expected %s to stay, ok=%v err=%v", keep, ok, err)
	}
}
