package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/antzucaro/matchr"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/kanatype/internal/config"
	"github.com/verte-zerg/kanatype/internal/model"
	"github.com/verte-zerg/kanatype/internal/problem"
	"github.com/verte-zerg/kanatype/internal/problemfile"
	"github.com/verte-zerg/kanatype/internal/stats"
	"github.com/verte-zerg/kanatype/internal/store"
)

// suggestThreshold is the Jaro-Winkler score above which an unknown name
// gets a "did you mean" hint.
const suggestThreshold = 0.8

type problemSource struct {
	name string
	raw  string
}

// resolveProblemSet finds the problem text for arg: a file path, then a
// built-in set, then a catalog entry with that name.
func resolveProblemSet(ctx context.Context, arg, problemsDir string) (problemSource, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		raw, err := problemfile.Load(arg)
		if err != nil {
			return problemSource{}, fmt.Errorf("failed to load problem file: %w", err)
		}
		return problemSource{name: arg, raw: raw}, nil
	}
	if raw, err := problemfile.LoadBuiltin(arg); err == nil {
		return problemSource{name: arg, raw: raw}, nil
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return problemSource{}, fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	entries, err := st.FindByName(ctx, arg)
	if err != nil {
		return problemSource{}, fmt.Errorf("failed to query catalog: %w", err)
	}
	if len(entries) == 0 {
		// The catalog may be stale; index once before giving up.
		if _, err := indexDir(ctx, st, problemsDir, time.Now()); err != nil {
			logErrf("failed to index %s: %v\n", problemsDir, err)
		}
		if entries, err = st.FindByName(ctx, arg); err != nil {
			return problemSource{}, fmt.Errorf("failed to query catalog: %w", err)
		}
	}
	for _, entry := range entries {
		if !entry.Valid() {
			logErrf("skipping %s: %s\n", entry.Path, entry.ParseErr)
			continue
		}
		raw, err := problemfile.Load(entry.Path)
		if err != nil {
			logErrf("skipping %s: %v\n", entry.Path, err)
			continue
		}
		if len(entries) > 1 {
			logErrf("%d problem sets named %q; using %s\n", len(entries), arg, entry.Path)
		}
		return problemSource{name: entry.Path, raw: raw}, nil
	}

	known := problemfile.Builtins()
	if all, err := st.ListProblemFiles(ctx); err == nil {
		for _, f := range all {
			known = append(known, f.Name)
		}
	}
	if hint := suggestName(arg, known); hint != "" {
		return problemSource{}, fmt.Errorf("unknown problem set %q (did you mean %q?)", arg, hint)
	}
	return problemSource{}, fmt.Errorf("unknown problem set %q (run: kanatype problems)", arg)
}

// suggestName returns the known name closest to name, or "" when nothing
// is close enough.
func suggestName(name string, known []string) string {
	best := ""
	bestScore := 0.0
	for _, k := range known {
		score := matchr.JaroWinkler(strings.ToLower(name), strings.ToLower(k), false)
		if score > bestScore || (score == bestScore && k < best) {
			best = k
			bestScore = score
		}
	}
	if bestScore < suggestThreshold {
		return ""
	}
	return best
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>...",
		Short: "Validate problem files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheckCmd,
	}
}

func runCheckCmd(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		line, ok := checkFile(path)
		if !ok {
			failed++
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}

// checkFile reports one line per file in a compiler-like format.
func checkFile(path string) (string, bool) {
	raw, err := problemfile.Load(path)
	if err != nil {
		return fmt.Sprintf("%s: %v", path, err), false
	}
	set, err := problem.Parse(raw)
	if err != nil {
		var perr *problem.ParseError
		if errors.As(err, &perr) {
			return fmt.Sprintf("%s:%d:%d: %v", path, perr.Line, perr.Column, perr.Kind), false
		}
		return fmt.Sprintf("%s: %v", path, err), false
	}
	return fmt.Sprintf("%s: ok %q (%d problems, %d words)", path, set.Title, len(set.Problems), set.WordCount()), true
}

func newProblemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "problems",
		Short: "Index and list available problem sets",
		Args:  cobra.NoArgs,
		RunE:  runProblemsCmd,
	}
	cmd.Flags().StringSliceVar(&problemsIndex, "index", nil, "directories to index (default: problems-dir)")
	return cmd
}

func runProblemsCmd(cmd *cobra.Command, _ []string) error {
	dirs := problemsIndex
	if len(dirs) == 0 {
		dir, err := problemsDir(cmd)
		if err != nil {
			return err
		}
		dirs = []string{dir}
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := cmd.Context()
	now := time.Now()
	for _, dir := range dirs {
		summary, err := indexDir(ctx, st, dir, now)
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", dir, err)
		}
		if summary.files == 0 {
			logErrln("No problem files found in", dir)
			continue
		}
		logErrf("Indexed %s: %d files, %d parsed, %d removed\n", dir, summary.files, summary.parsed, summary.removed)
	}

	files, err := st.ListProblemFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list catalog: %w", err)
	}
	return writeProblemList(cmd.OutOrStdout(), problemfile.Builtins(), files)
}

func problemsDir(cmd *cobra.Command) (string, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "problems-dir", &practiceProblemsDir, fileCfg.Practice.ProblemsDir)
	if practiceProblemsDir == "" {
		return config.DefaultProblemsDir(), nil
	}
	return practiceProblemsDir, nil
}

func writeProblemList(w io.Writer, builtins []string, files []model.ProblemFile) error {
	headers := []string{"Name", "Title", "Problems", "Words", "Source"}
	rows := make([][]string, 0, len(builtins)+len(files))
	for _, name := range builtins {
		row := []string{name, "-", "-", "-", "builtin"}
		if raw, err := problemfile.LoadBuiltin(name); err == nil {
			if set, err := problem.Parse(raw); err == nil {
				row[1] = set.Title
				row[2] = fmt.Sprint(len(set.Problems))
				row[3] = fmt.Sprint(set.WordCount())
			}
		}
		rows = append(rows, row)
	}
	for _, f := range files {
		if f.Valid() {
			rows = append(rows, []string{f.Name, f.Title, fmt.Sprint(f.Problems), fmt.Sprint(f.Words), f.Path})
			continue
		}
		rows = append(rows, []string{f.Name, "(invalid: " + f.ParseErr + ")", "-", "-", f.Path})
	}
	rightAlign := map[int]bool{2: true, 3: true}
	for _, line := range stats.FormatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, strings.TrimRight(line, " ")); err != nil {
			return err
		}
	}
	return nil
}

type indexStats struct {
	files   int
	parsed  int
	removed int64
}

// indexDir refreshes the catalog entries for every problem file under dir.
// Files whose modification time is unchanged keep their entry. Entries are
// keyed by absolute path.
func indexDir(ctx context.Context, st *store.Store, dir string, now time.Time) (indexStats, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return indexStats{}, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	dir = abs
	paths, err := problemfile.Discover(dir)
	if err != nil {
		return indexStats{}, err
	}
	entries := make([]model.ProblemFile, len(paths))
	fresh := make([]bool, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			prev, ok, err := st.GetProblemFile(gctx, path)
			if err != nil {
				return err
			}
			if ok && prev.ModTime.Equal(info.ModTime()) {
				entries[i] = prev
				return nil
			}
			entries[i] = describeFile(path, info.ModTime(), now)
			fresh[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return indexStats{}, err
	}

	summary := indexStats{files: len(paths)}
	changed := make([]model.ProblemFile, 0, len(entries))
	for i, entry := range entries {
		if fresh[i] {
			changed = append(changed, entry)
			summary.parsed++
		}
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].Path < changed[j].Path })
	if err := st.UpsertProblemFiles(ctx, changed); err != nil {
		return indexStats{}, fmt.Errorf("failed to save catalog: %w", err)
	}
	removed, err := st.PruneMissing(ctx, dir, paths)
	if err != nil {
		return indexStats{}, fmt.Errorf("failed to prune catalog: %w", err)
	}
	summary.removed = removed
	return summary, nil
}

func describeFile(path string, modTime, now time.Time) model.ProblemFile {
	entry := model.ProblemFile{
		Path:      path,
		Name:      problemfile.Name(path),
		ModTime:   modTime,
		IndexedAt: now,
	}
	raw, err := problemfile.Load(path)
	if err != nil {
		entry.ParseErr = err.Error()
		return entry
	}
	set, err := problem.Parse(raw)
	if err != nil {
		entry.ParseErr = err.Error()
		return entry
	}
	entry.Title = set.Title
	entry.Problems = len(set.Problems)
	entry.Words = set.WordCount()
	return entry
}
