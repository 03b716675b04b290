// Package main provides the CLI entrypoint for kanatype.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/kanatype/internal/config"
	"github.com/verte-zerg/kanatype/internal/generator"
	"github.com/verte-zerg/kanatype/internal/model"
	"github.com/verte-zerg/kanatype/internal/problem"
	"github.com/verte-zerg/kanatype/internal/stats"
	"github.com/verte-zerg/kanatype/internal/tui"
)

const (
	defaultSet         = "basic"
	defaultCount       = 0
	defaultWeakTop     = 8
	defaultWeakFactor  = 2.0
	defaultCurveWindow = 5
)

var (
	practiceCount       int
	practiceShuffle     bool
	practiceSeed        int64
	practiceShowReading bool
	practiceShowGuide   bool
	practiceFocusWeak   bool
	practiceWeakTop     int
	practiceWeakFactor  float64
	practiceProblemsDir string

	problemsIndex []string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "kanatype [file-or-name]",
		Short:         "Romaji typing trainer for Japanese text",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().IntVar(&practiceCount, "count", defaultCount, "number of problems per run (0 = all)")
	rootCmd.Flags().BoolVar(&practiceShuffle, "shuffle", false, "shuffle problem order")
	rootCmd.Flags().Int64Var(&practiceSeed, "seed", 0, "random seed (0 = time based)")
	rootCmd.Flags().BoolVar(&practiceShowReading, "show-reading", true, "show the kana reading under the text")
	rootCmd.Flags().BoolVar(&practiceShowGuide, "show-guide", true, "show the suggested romaji keystrokes")
	rootCmd.Flags().BoolVar(&practiceFocusWeak, "focus-weak", false, "bias repeated runs toward missed kana")
	rootCmd.Flags().IntVar(&practiceWeakTop, "weak-top", defaultWeakTop, "number of weak kana to focus on")
	rootCmd.Flags().Float64Var(&practiceWeakFactor, "weak-factor", defaultWeakFactor, "weight factor for weak kana")
	rootCmd.PersistentFlags().StringVar(&practiceProblemsDir, "problems-dir", "", "directory scanned for problem files")

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newProblemsCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := practiceConfig(cmd)
	if err != nil {
		return err
	}

	arg := defaultSet
	if len(args) == 1 {
		arg = args[0]
	}
	src, err := resolveProblemSet(cmd.Context(), arg, cfg.ProblemsDir)
	if err != nil {
		return err
	}
	set, err := problem.Parse(src.raw)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", src.name, err)
	}

	gen := generator.New()
	if cfg.Seed != 0 {
		gen = generator.NewWithSeed(cfg.Seed)
	}
	m, err := tui.NewModel(cfg, set, gen)
	if err != nil {
		return fmt.Errorf("failed to start practice: %w", err)
	}
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	result, ok := m.Result()
	if !ok {
		return nil
	}
	out := cmd.OutOrStdout()
	if !isTerminal(os.Stdout) {
		_, err := fmt.Fprintln(out, stats.Summary(result))
		return err
	}
	topChars := terminalHeight() - 16
	if topChars < 5 {
		topChars = 5
	}
	if err := stats.RenderResult(out, result, defaultCurveWindow, topChars); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func practiceConfig(cmd *cobra.Command) (model.Config, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	p := fileCfg.Practice
	applyIntConfig(cmd, "count", &practiceCount, p.Count)
	applyBoolConfig(cmd, "shuffle", &practiceShuffle, p.Shuffle)
	applyInt64Config(cmd, "seed", &practiceSeed, p.Seed)
	applyBoolConfig(cmd, "show-reading", &practiceShowReading, p.ShowReading)
	applyBoolConfig(cmd, "show-guide", &practiceShowGuide, p.ShowGuide)
	applyBoolConfig(cmd, "focus-weak", &practiceFocusWeak, p.FocusWeak)
	applyIntConfig(cmd, "weak-top", &practiceWeakTop, p.WeakTop)
	applyFloatConfig(cmd, "weak-factor", &practiceWeakFactor, p.WeakFactor)
	applyStringConfig(cmd, "problems-dir", &practiceProblemsDir, p.ProblemsDir)

	cfg := model.Config{
		Count:       practiceCount,
		Shuffle:     practiceShuffle,
		Seed:        practiceSeed,
		ShowReading: practiceShowReading,
		ShowGuide:   practiceShowGuide,
		ProblemsDir: practiceProblemsDir,
		FocusWeak:   practiceFocusWeak,
		WeakTop:     practiceWeakTop,
		WeakFactor:  practiceWeakFactor,
	}
	if cfg.ProblemsDir == "" {
		cfg.ProblemsDir = config.DefaultProblemsDir()
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# kanatype configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# count = %d               # Problems per run (0 = all)
# shuffle = false         # Shuffle problem order
# seed = 0                # Random seed (0 = time based)
# show-reading = true     # Show the kana reading under the text
# show-guide = true       # Show the suggested romaji keystrokes
# problems-dir = %q
# focus-weak = false      # Bias repeated runs toward missed kana
# weak-top = %d            # Number of weak kana to focus on
# weak-factor = %.1f       # Weight factor for weak kana
`,
		defaultCount,
		config.DefaultProblemsDir(),
		defaultWeakTop,
		defaultWeakFactor,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Count < 0 {
		return fmt.Errorf("--count must be >= 0")
	}
	if cfg.WeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if cfg.WeakFactor < 0 {
		return fmt.Errorf("--weak-factor must be >= 0")
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func terminalHeight() int {
	_, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || height <= 0 {
		return 24
	}
	return height
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
