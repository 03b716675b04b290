// Package tui provides the Bubble Tea typing interface.
package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/kanatype/internal/generator"
	"github.com/verte-zerg/kanatype/internal/model"
	"github.com/verte-zerg/kanatype/internal/problem"
	"github.com/verte-zerg/kanatype/internal/session"
	statsPkg "github.com/verte-zerg/kanatype/internal/stats"
)

const tickInterval = 100 * time.Millisecond

type tickMsg time.Time

// Model implements the Bubble Tea typing UI.
type Model struct {
	config  model.Config
	gen     *generator.Generator
	set     problem.Set
	session *session.Session
	now     func() time.Time

	problems   []problem.Problem
	totalWords int
	started    bool

	width  int
	height int

	keys      keyMap
	help      help.Model
	charTable table.Model

	result    statsPkg.Result
	hasResult bool
	weakSet   map[string]struct{}
	notice    string
}

var (
	correctStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	currentWordStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	cursorStyle      = currentWordStyle.Copy().Underline(true)
	footerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#C0C0C0")).Bold(true)
	guideStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A7FA8"))
)

// NewModel constructs a typing TUI model and starts the first run.
func NewModel(cfg model.Config, set problem.Set, gen *generator.Generator) (*Model, error) {
	m := &Model{
		config:  cfg,
		gen:     gen,
		set:     set,
		session: session.New(),
		now:     time.Now,
		keys:    keys,
		help:    help.New(),
		weakSet: map[string]struct{}{},
	}
	if err := m.startRun(); err != nil {
		return nil, err
	}
	return m, nil
}

// Result returns the report of the last finished or aborted run.
func (m *Model) Result() (statsPkg.Result, bool) {
	return m.result, m.hasResult
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.hasResult {
			m.resizeCharTable()
		}
		return m, nil
	case tickMsg:
		if m.hasResult {
			return m, nil
		}
		return m, tick()
	case tea.KeyMsg:
		if m.hasResult {
			return m.updateResult(msg)
		}
		return m.updatePractice(msg)
	default:
		return m, nil
	}
}

func (m *Model) updatePractice(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := m.now()
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.started {
			m.abort(now)
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Abort):
		if !m.started {
			return m, tea.Quit
		}
		m.abort(now)
		return m, nil
	case key.Matches(msg, m.keys.Skip):
		m.begin(now)
		if err := m.session.SkipWord(now); err != nil {
			logErrf("failed to skip word: %v\n", err)
		}
		m.checkFinished()
		return m, nil
	case key.Matches(msg, m.keys.Backspace):
		m.ignoreState(m.session.Backspace(now))
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.ignoreState(m.session.ClearPending(now))
		return m, nil
	}
	switch msg.Type {
	case tea.KeySpace:
		m.handleRunes([]rune{' '}, now)
	case tea.KeyRunes:
		m.handleRunes(msg.Runes, now)
	}
	return m, nil
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Leave):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Restart):
		if err := m.startRun(); err != nil {
			logErrf("failed to restart: %v\n", err)
			return m, nil
		}
		return m, tick()
	case key.Matches(msg, m.keys.Copy):
		if err := clipboard.WriteAll(statsPkg.Summary(m.result)); err != nil {
			m.notice = "Clipboard unavailable."
			return m, nil
		}
		m.notice = "Summary copied to clipboard."
		return m, nil
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		var cmd tea.Cmd
		m.charTable, cmd = m.charTable.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var content, footer string
	if m.hasResult {
		content = m.renderResult()
		footer = m.help.View(m.keys.forResult(true))
	} else {
		content = m.renderPractice()
		footer = lipgloss.JoinVertical(lipgloss.Center, m.renderFooter(), m.help.View(m.keys.forResult(false)))
	}
	if m.width == 0 || m.height == 0 {
		return content + "\n\n" + footer
	}
	footerHeight := lipgloss.Height(footer)
	if m.height <= footerHeight+1 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-footerHeight, lipgloss.Center, lipgloss.Center, content)
	footerBlock := lipgloss.Place(m.width, footerHeight, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerBlock
}

func (m *Model) renderPractice() string {
	snap := m.session.Snapshot()
	width := m.contentWidth()
	header := titleStyle.Render(snap.Title)
	if snap.ProblemCount > 1 {
		header += footerStyle.Render(fmt.Sprintf("  %d/%d", snap.ProblemIndex+1, snap.ProblemCount))
	}
	text := renderLines(wrapCells(buildCells(snap.Words, m.config.ShowReading), width), m.config.ShowReading)
	blocks := []string{header, "", text}
	if m.config.ShowGuide && snap.State == session.InProgress {
		blocks = append(blocks, "", renderGuide(snap.Pending, snap.Guide, width))
	}
	return lipgloss.NewStyle().Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

func renderGuide(pending, guide string, width int) string {
	if width <= 0 {
		return correctStyle.Render(pending) + guideStyle.Render(guide)
	}
	rest := width - runewidth.StringWidth(pending)
	if rest < 0 {
		rest = 0
	}
	return correctStyle.Render(pending) + guideStyle.Render(runewidth.Truncate(guide, rest, "…"))
}

func (m *Model) renderFooter() string {
	metrics := m.session.LiveMetrics(m.now())
	if !m.started {
		metrics = session.Metrics{}
	}
	done := metrics.WordsCompleted + metrics.WordsSkipped
	progress := 0
	if m.totalWords > 0 {
		progress = done * 100 / m.totalWords
	}
	segments := []string{
		fmt.Sprintf("Progress %d%%", progress),
		fmt.Sprintf("%.1f WPM · %.1f%%", metrics.WPM, metrics.Accuracy*100),
		statsPkg.FormatElapsed(metrics.Elapsed),
	}
	if metrics.Incorrect > 0 {
		segments = append(segments, fmt.Sprintf("%d missed", metrics.Incorrect))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderResult() string {
	lines := resultLines(m.result, m.config.WeakTop)
	if m.notice != "" {
		lines = append(lines, "", footerStyle.Render(m.notice))
	}
	lines = append(lines, "", m.charTable.View())
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	return contentWidth
}

func (m *Model) handleRunes(runes []rune, now time.Time) {
	for _, r := range runes {
		m.begin(now)
		if _, err := m.session.OnKey(r, now); err != nil {
			break
		}
	}
	m.checkFinished()
}

// begin restarts the run on the first key so the clock starts with typing.
func (m *Model) begin(now time.Time) {
	if m.started {
		return
	}
	if err := m.session.Start(m.problems, now); err != nil {
		logErrf("failed to start session: %v\n", err)
		return
	}
	m.started = true
}

func (m *Model) abort(now time.Time) {
	if err := m.session.Abort(now); err != nil {
		logErrf("failed to abort session: %v\n", err)
		return
	}
	m.finish()
}

func (m *Model) checkFinished() {
	if m.session.State() == session.Completed {
		m.finish()
	}
}

func (m *Model) finish() {
	m.result = m.session.Report()
	m.hasResult = true
	m.notice = ""
	m.resizeCharTable()
	if m.config.FocusWeak {
		m.refreshWeakSet()
	}
}

func (m *Model) resizeCharTable() {
	height := m.height - 14
	if m.height == 0 {
		height = len(m.result.Chars)
	}
	m.charTable = buildCharTable(m.result.Chars, m.contentWidth(), height)
}

func (m *Model) refreshWeakSet() {
	weak := statsPkg.WeakestChars(m.result.Chars, m.config.WeakTop)
	m.weakSet = make(map[string]struct{}, len(weak))
	for _, ch := range weak {
		m.weakSet[ch] = struct{}{}
	}
	if len(weak) == 0 {
		m.notice = "No missed kana yet; next run uses normal selection."
	}
}

func (m *Model) startRun() error {
	if m.config.FocusWeak && len(m.weakSet) > 0 {
		m.problems = m.gen.SelectWeighted(m.set.Problems, m.config.Count, m.weakSet, m.config.WeakFactor)
	} else {
		m.problems = m.gen.Select(m.set.Problems, m.config.Count, m.config.Shuffle)
	}
	if err := m.session.Start(m.problems, m.now()); err != nil {
		return err
	}
	m.totalWords = 0
	for pi, p := range m.problems {
		for wi := range p.Words {
			if m.session.Target(pi, wi) != "" {
				m.totalWords++
			}
		}
	}
	m.started = false
	m.hasResult = false
	m.notice = ""
	return nil
}

func (m *Model) ignoreState(err error) {
	if err != nil && !errors.Is(err, session.ErrInvalidState) {
		logErrf("session error: %v\n", err)
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
