package problemfile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/verte-zerg/kanatype/internal/problem"
	"github.com/verte-zerg/kanatype/internal/session"
)

func TestBuiltinsParse(t *testing.T) {
	names := Builtins()
	if len(names) == 0 {
		t.Fatalf("expected built-in problem sets")
	}
	for _, name := range names {
		raw, err := LoadBuiltin(name)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		set, err := problem.Parse(raw)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		if set.Title == "" || len(set.Problems) == 0 {
			t.Fatalf("%s: expected title and problems", name)
		}
	}
}

func TestLoadBuiltinUnknown(t *testing.T) {
	if _, err := LoadBuiltin("nope"); err == nil {
		t.Fatalf("expected error for unknown set")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.ntq")
	if err := os.WriteFile(p, []byte("#title a\nあ\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "#title a\nあ\n" {
		t.Fatalf("unexpected contents %q", got)
	}
	empty := filepath.Join(dir, "empty.ntq")
	if err := os.WriteFile(empty, []byte("\n  \n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(empty); err == nil {
		t.Fatalf("expected error for empty file")
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	for _, rel := range []string{"b.ntq", "a.NTQ", "notes.txt", "sub/c.ntq", ".hidden/d.ntq"} {
		p := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte("#title x\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	got, err := Discover(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.NTQ"),
		filepath.Join(dir, "b.ntq"),
		filepath.Join(dir, "sub", "c.ntq"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	missing, err := Discover(filepath.Join(dir, "missing"))
	if err != nil || len(missing) != 0 {
		t.Fatalf("expected no files for missing dir, got %v, %v", missing, err)
	}
}

func TestName(t *testing.T) {
	if got := Name("/x/y/hyakunin.ntq"); got != "hyakunin" {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestBuiltinsAreTypeable(t *testing.T) {
	for _, name := range Builtins() {
		raw, err := LoadBuiltin(name)
		if err != nil {
			t.Fatalf("load %s: %v", name, err)
		}
		set, err := problem.Parse(raw)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		s := session.New()
		now := time.Unix(0, 0)
		if err := s.Start(set.Problems, now); err != nil {
			t.Fatalf("start %s: %v", name, err)
		}
		for s.State() == session.InProgress {
			guide := s.Snapshot().Guide
			if guide == "" {
				t.Fatalf("%s: empty guide at %+v", name, s.Cursor())
			}
			now = now.Add(100 * time.Millisecond)
			if _, err := s.OnKey([]rune(guide)[0], now); err != nil {
				t.Fatalf("%s: %v", name, err)
			}
		}
		if n := len(s.Mistakes()); n != 0 {
			t.Fatalf("%s: expected no mistakes following the guide, got %d", name, n)
		}
	}
}
