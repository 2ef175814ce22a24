// internal/tui/app.go
//
// Live watch view for a refinery run. It uses bubbletea, which follows The
// Elm Architecture: the App model holds state, Update reacts to messages,
// and View renders a string. The view refreshes from the persisted run
// snapshot on a timer and whenever the state directory changes on disk.

package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/yourusername/refinery/internal/config"
	"github.com/yourusername/refinery/internal/engine"
	"github.com/yourusername/refinery/internal/journal"
)

const (
	defaultRefreshInterval = 2 * time.Second
	journalTailLines       = 200
	fitnessWindow          = 10
	operatorWindow         = 5
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

type tickMsg time.Time

type stateChangedMsg struct{}

type refreshDoneMsg struct {
	snapshot engine.Snapshot
	hasRun   bool
	tail     []string
	err      error
}

// SnapshotLoader reads the persisted run snapshot.
type SnapshotLoader interface {
	Load() (engine.Snapshot, error)
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithRefreshInterval overrides the poll interval.
func WithRefreshInterval(interval time.Duration) AppOption {
	return func(a *App) {
		if interval > 0 {
			a.refreshEvery = interval
		}
	}
}

// WithSnapshotLoader injects a custom snapshot source (primarily for tests).
func WithSnapshotLoader(loader SnapshotLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loader = loader
		}
	}
}

// App is the watch view model.
type App struct {
	loader       SnapshotLoader
	book         *journal.Journal
	stateDir     string
	refreshEvery time.Duration

	snapshot engine.Snapshot
	hasRun   bool
	lastErr  error

	journalView viewport.Model
	watch       *watcher
	width       int
	height      int
	ready       bool
}

// NewApp builds the watch view for an initialized project.
func NewApp(cfg *config.Config, opts ...AppOption) (*App, error) {
	book, err := journal.New(cfg.JournalPath())
	if err != nil {
		return nil, fmt.Errorf("tui: open journal: %w", err)
	}
	app := &App{
		loader:       engine.NewRepository(cfg.StateDir()),
		book:         book,
		stateDir:     cfg.StateDir(),
		refreshEvery: defaultRefreshInterval,
		journalView:  viewport.New(0, 0),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app, nil
}

// Init starts the refresh timer and the state directory watcher.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.refreshCmd(), a.tickCmd()}
	if watch, err := newWatcher(a.stateDir); err == nil {
		a.watch = watch
		cmds = append(cmds, a.watch.waitCmd())
	}
	return tea.Batch(cmds...)
}

// Update reacts to messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if a.watch != nil {
				a.watch.close()
			}
			return a, tea.Quit
		case "r":
			return a, a.refreshCmd()
		}
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resizeJournal()
		a.ready = true
	case tickMsg:
		return a, tea.Batch(a.refreshCmd(), a.tickCmd())
	case stateChangedMsg:
		cmds := []tea.Cmd{a.refreshCmd()}
		if a.watch != nil {
			cmds = append(cmds, a.watch.waitCmd())
		}
		return a, tea.Batch(cmds...)
	case refreshDoneMsg:
		a.applyRefresh(msg)
	}
	var cmd tea.Cmd
	a.journalView, cmd = a.journalView.Update(msg)
	return a, cmd
}

func (a *App) applyRefresh(msg refreshDoneMsg) {
	a.lastErr = msg.err
	a.hasRun = msg.hasRun
	if msg.hasRun {
		a.snapshot = msg.snapshot
	}
	a.journalView.SetContent(strings.Join(msg.tail, "\n"))
	a.journalView.GotoBottom()
}

func (a *App) resizeJournal() {
	width := a.width - 4
	if width < 10 {
		width = 10
	}
	height := a.height - 14
	if height < 3 {
		height = 3
	}
	a.journalView.Width = width
	a.journalView.Height = height
}

func (a *App) refreshCmd() tea.Cmd {
	loader := a.loader
	book := a.book
	return func() tea.Msg {
		msg := refreshDoneMsg{}
		snap, err := loader.Load()
		switch {
		case err == nil:
			msg.snapshot = snap
			msg.hasRun = true
		case errors.Is(err, engine.ErrStateNotFound):
		default:
			msg.err = err
		}
		msg.tail, _ = book.Tail(journalTailLines)
		return msg
	}
}

func (a *App) tickCmd() tea.Cmd {
	return tea.Tick(a.refreshEvery, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// View renders the watch screen.
func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("refinery watch"))
	b.WriteString("\n\n")
	b.WriteString(a.renderSummary())
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(a.journalView.View()))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("r refresh · q quit"))
	return b.String()
}

func (a *App) renderSummary() string {
	if a.lastErr != nil {
		return failedStyle.Render(fmt.Sprintf("error: %v", a.lastErr)) + "\n"
	}
	if !a.hasRun {
		return labelStyle.Render("no run yet — use `refinery run` to start one") + "\n"
	}
	snap := a.snapshot
	lines := []string{
		summaryLine("run", snap.RunID),
		summaryLine("status", a.renderStatus()),
		summaryLine("cycles", fmt.Sprintf("%d", snap.Cycles)),
		summaryLine("state", fmt.Sprintf("%v", snap.State)),
		summaryLine("fitness", renderFitness(snap.Fitness)),
		summaryLine("operators", renderOperators(snap.Operators)),
		summaryLine("updated", snap.UpdatedAt.Format(time.RFC3339)),
	}
	return strings.Join(lines, "\n") + "\n"
}

func (a *App) renderStatus() string {
	if a.snapshot.Status == engine.StatusFailed {
		reason := a.snapshot.StatusReason
		if reason == "" {
			reason = "unknown"
		}
		return failedStyle.Render(fmt.Sprintf("failed (%s)", reason))
	}
	return string(a.snapshot.Status)
}

func summaryLine(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-10s", label)) + valueStyle.Render(value)
}

func renderFitness(history []float64) string {
	if len(history) == 0 {
		return "-"
	}
	start := len(history) - fitnessWindow
	if start < 0 {
		start = 0
	}
	parts := make([]string, 0, len(history)-start)
	for _, f := range history[start:] {
		parts = append(parts, fmt.Sprintf("%.3g", f))
	}
	return strings.Join(parts, " ")
}

func renderOperators(ops []engine.OperatorRecord) string {
	if len(ops) == 0 {
		return "0"
	}
	start := len(ops) - operatorWindow
	if start < 0 {
		start = 0
	}
	ids := make([]string, 0, len(ops)-start)
	for _, op := range ops[start:] {
		ids = append(ids, op.ID)
	}
	return fmt.Sprintf("%d (%s)", len(ops), strings.Join(ids, ", "))
}
