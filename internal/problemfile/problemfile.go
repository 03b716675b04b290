// Package problemfile loads problem files from disk and the built-in set.
package problemfile

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Ext is the problem file extension.
const Ext = ".ntq"

//go:embed builtin/*.ntq
var builtinFS embed.FS

// Load reads a problem file as a single string.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", fmt.Errorf("problem file is empty: %s", path)
	}
	return string(data), nil
}

// Name derives a problem set name from a file path.
func Name(p string) string {
	base := filepath.Base(p)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Builtins lists the names of the embedded problem sets.
func Builtins() []string {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), Ext))
	}
	sort.Strings(names)
	return names
}

// LoadBuiltin returns the contents of an embedded problem set.
func LoadBuiltin(name string) (string, error) {
	data, err := builtinFS.ReadFile(path.Join("builtin", name+Ext))
	if err != nil {
		return "", fmt.Errorf("unknown built-in problem set %q", name)
	}
	return string(data), nil
}

// Discover walks dir and returns every problem file below it, sorted. A
// missing dir yields no files.
func Discover(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir && os.IsNotExist(err) {
				return fs.SkipDir
			}
			return err
		}
		if d.IsDir() {
			if p != dir && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(p), Ext) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
