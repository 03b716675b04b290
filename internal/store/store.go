// Package store keeps the SQLite catalog of problem files.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/kanatype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for the problem catalog.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS problem_files (
			path TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			title TEXT NOT NULL,
			problems INTEGER NOT NULL,
			words INTEGER NOT NULL,
			mod_time TEXT NOT NULL,
			indexed_at TEXT NOT NULL,
			parse_error TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_problem_files_name ON problem_files(name);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// UpsertProblemFiles stores catalog entries, replacing existing rows for the same path.
func (s *Store) UpsertProblemFiles(ctx context.Context, files []model.ProblemFile) (err error) {
	if len(files) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO problem_files (path, name, title, problems, words, mod_time, indexed_at, parse_error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			name = excluded.name,
			title = excluded.title,
			problems = excluded.problems,
			words = excluded.words,
			mod_time = excluded.mod_time,
			indexed_at = excluded.indexed_at,
			parse_error = excluded.parse_error`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, f := range files {
		if _, err = stmt.ExecContext(ctx,
			f.Path,
			f.Name,
			f.Title,
			f.Problems,
			f.Words,
			f.ModTime.UTC().Format(time.RFC3339Nano),
			f.IndexedAt.UTC().Format(time.RFC3339Nano),
			f.ParseErr,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetProblemFile returns the entry for path. The bool is false when the
// path is not indexed.
func (s *Store) GetProblemFile(ctx context.Context, path string) (model.ProblemFile, bool, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE path = ?`, path)
	f, err := scanProblemFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ProblemFile{}, false, nil
	}
	if err != nil {
		return model.ProblemFile{}, false, err
	}
	return f, true, nil
}

// ListProblemFiles returns every catalog entry ordered by name.
func (s *Store) ListProblemFiles(ctx context.Context) ([]model.ProblemFile, error) {
	return s.query(ctx, selectColumns+` ORDER BY name ASC, path ASC`)
}

// FindByName returns entries whose name matches exactly.
func (s *Store) FindByName(ctx context.Context, name string) ([]model.ProblemFile, error) {
	return s.query(ctx, selectColumns+` WHERE name = ? ORDER BY path ASC`, name)
}

// PruneMissing deletes entries under dir whose path is not in keep.
// Relative paths are resolved against the working directory.
func (s *Store) PruneMissing(ctx context.Context, dir string, keep []string) (int64, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	prefix := strings.TrimSuffix(abs, string(filepath.Separator)) + string(filepath.Separator)
	clauses := []string{"substr(path, 1, ?) = ?"}
	args := []any{utf8.RuneCountInString(prefix), prefix}
	if len(keep) > 0 {
		placeholders := make([]string, len(keep))
		for i, p := range keep {
			if kp, err := filepath.Abs(p); err == nil {
				p = kp
			}
			placeholders[i] = "?"
			args = append(args, p)
		}
		clauses = append(clauses, fmt.Sprintf("path NOT IN (%s)", strings.Join(placeholders, ",")))
	}
	query := fmt.Sprintf(`DELETE FROM problem_files WHERE %s`, strings.Join(clauses, " AND "))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const selectColumns = `SELECT path, name, title, problems, words, mod_time, indexed_at, parse_error FROM problem_files`

type scanner interface {
	Scan(dest ...any) error
}

func scanProblemFile(row scanner) (model.ProblemFile, error) {
	var f model.ProblemFile
	var modTime, indexedAt string
	if err := row.Scan(&f.Path, &f.Name, &f.Title, &f.Problems, &f.Words, &modTime, &indexedAt, &f.ParseErr); err != nil {
		return model.ProblemFile{}, err
	}
	var err error
	if f.ModTime, err = time.Parse(time.RFC3339Nano, modTime); err != nil {
		return model.ProblemFile{}, err
	}
	if f.IndexedAt, err = time.Parse(time.RFC3339Nano, indexedAt); err != nil {
		return model.ProblemFile{}, err
	}
	return f, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]model.ProblemFile, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var files []model.ProblemFile
	for rows.Next() {
		f, err := scanProblemFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return files, nil
}
