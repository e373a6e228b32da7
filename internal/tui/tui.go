// Package tui provides a Bubble Tea terminal user interface for geodata-downloader.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/geodata-downloader/internal/config"
	"github.com/handiism/geodata-downloader/internal/dataset"
	"github.com/handiism/geodata-downloader/internal/download"
	"github.com/handiism/geodata-downloader/internal/report"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateFetching
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// logBuffer collects progress events from fetch goroutines until the next tick.
type logBuffer struct {
	mu      sync.Mutex
	pending []LogEntry
}

func (l *logBuffer) add(e download.ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, LogEntry{Message: e.Message, Level: e.Level})
}

func (l *logBuffer) drain() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := l.pending
	l.pending = nil
	return out
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	presets   []string
	presetIdx int
	logs      []LogEntry
	buffer    *logBuffer
	inputErr  error
	err       error
	report    *report.Report

	// Fetch context
	ctx    context.Context
	cancel context.CancelFunc

	manager *download.Manager

	// Fetch progress
	totalFiles    int32
	doneFiles     int32
	failedFiles   int32
	receivedBytes int64

	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model fetching with settings.
func NewModel(settings *config.Settings) Model {
	ti := textinput.New()
	ti.Placeholder = "1948-1950,1965"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60
	if len(settings.Tokens) > 0 {
		ti.SetValue(strings.Join(settings.Tokens, ","))
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ECDC4"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		presets:   append([]string{""}, dataset.PresetNames()...),
		buffer:    &logBuffer{},
		ctx:       ctx,
		cancel:    cancel,
	}
	for i, name := range m.presets {
		if name == settings.Preset {
			m.presetIdx = i
		}
	}
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// FetchDoneMsg is sent when the batch completes.
	FetchDoneMsg struct {
		Report *report.Report
		Err    error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateFetching {
				m.cancel()
			}

		case "enter":
			if m.state == StateInput {
				return m.start()
			}

		case "tab":
			if m.state == StateInput {
				m.presetIdx = (m.presetIdx + 1) % len(m.presets)
				return m, nil
			}

		case "ctrl+e":
			if m.state == StateInput {
				m.settings.SkipExisting = !m.settings.SkipExisting
				return m, nil
			}

		case "ctrl+b":
			if m.state == StateInput {
				m.verbose = !m.verbose
				return m, nil
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, nil
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case FetchDoneMsg:
		m.appendLogs(m.buffer.drain())
		m.report = msg.Report
		m.syncProgress()
		switch {
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = errors.New("cancelled by user")
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.state == StateFetching {
			m.appendLogs(m.buffer.drain())
			m.syncProgress()

			var percent float64
			if m.totalFiles > 0 {
				percent = float64(m.doneFiles+m.failedFiles) / float64(m.totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// start validates the input and launches the batch.
func (m Model) start() (tea.Model, tea.Cmd) {
	tokens, err := dataset.ParseTokens(m.textInput.Value())
	if err == nil && len(tokens) == 0 {
		err = errors.New("enter at least one token")
	}
	if err == nil && !m.settings.AllowDuplicateTokens {
		if dups := dataset.Duplicates(tokens); len(dups) > 0 {
			err = fmt.Errorf("duplicate tokens: %s", strings.Join(dups, ", "))
		}
	}

	settings := *m.settings
	settings.Preset = m.presets[m.presetIdx]
	if err == nil {
		err = settings.ApplyPreset()
	}
	if err == nil {
		err = settings.Validate()
	}
	if err != nil {
		m.inputErr = err
		return m, nil
	}

	m.inputErr = nil
	m.state = StateFetching
	buffer, verbose := m.buffer, m.verbose
	m.manager = download.NewManager(&settings, func(e download.ProgressEvent) {
		if e.Level != download.LevelVerbose || verbose {
			buffer.add(e)
		}
	})

	return m, tea.Batch(startFetch(m.ctx, m.manager, &settings, tokens), tickProgress(), m.spinner.Tick)
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.buffer.drain()
	m.err = nil
	m.inputErr = nil
	m.report = nil
	m.manager = nil
	m.doneFiles, m.failedFiles, m.totalFiles, m.receivedBytes = 0, 0, 0, 0
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.Focus()
}

func (m *Model) syncProgress() {
	if m.manager == nil {
		return
	}
	m.receivedBytes, m.doneFiles, m.failedFiles, m.totalFiles = m.manager.GetProgress()
}

func (m *Model) appendLogs(entries []LogEntry) {
	m.logs = append(m.logs, entries...)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// tickProgress returns a command to tick progress updates.
func tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// startFetch runs the batch in the background and lists the destination.
func startFetch(ctx context.Context, mgr *download.Manager, settings *config.Settings, tokens []string) tea.Cmd {
	return func() tea.Msg {
		rep := report.New(mgr.DestDir(), time.Now())
		tmpl := settings.Template
		rep.Template = &tmpl

		results, err := mgr.FetchTemplate(ctx, tmpl, tokens)
		rep.Results = results
		rep.Finished = time.Now()
		if err != nil {
			return FetchDoneMsg{Report: rep, Err: err}
		}

		rep.Listing, err = mgr.List()
		return FetchDoneMsg{Report: rep, Err: err}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Geodata Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Fetch dataset files from public geodatabases"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateFetching:
		b.WriteString(m.viewFetching())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.helpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	preset := m.presets[m.presetIdx]
	tmpl := m.settings.Template
	if preset != "" {
		if t, err := dataset.Preset(preset); err == nil {
			tmpl = t
		}
	} else {
		preset = "custom"
	}

	b.WriteString(subtitleStyle.Render("Tokens (years or ranges):"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")
	if m.inputErr != nil {
		b.WriteString(errorStyle.Render("✗ " + m.inputErr.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString(infoStyle.Render(fmt.Sprintf("Dataset: %s (tab)", preset)))
	b.WriteString("\n")
	b.WriteString(urlStyle.Render("  " + tmpl.URL("{token}")))
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Skip existing files (ctrl+e)\n", check(m.settings.SkipExisting)))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+b)\n", check(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.settings.DownloadsPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewFetching() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Fetching into " + m.manager.DestDir()))
	b.WriteString("\n\n")

	var percent float64
	if m.totalFiles > 0 {
		percent = float64(m.doneFiles+m.failedFiles) / float64(m.totalFiles)
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Files: %d/%d | Failed: %d | Downloaded: %s",
		m.doneFiles+m.failedFiles,
		m.totalFiles,
		m.failedFiles,
		report.FormatBytes(m.receivedBytes),
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	s := m.report.Summary()
	title := "✓ Batch complete"
	if s.Failed > 0 {
		title = "! Batch finished with failures"
	}
	b.WriteString(boxStyle.Render(fmt.Sprintf(
		"%s\n\n"+
			"Fetched: %d\n"+
			"Skipped: %d\n"+
			"Failed: %d\n"+
			"Size: %s",
		title, s.Fetched, s.Skipped, s.Failed, report.FormatBytes(s.Bytes),
	)))
	b.WriteString("\n\n")

	for _, res := range m.report.Failed() {
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s (%s)", res.LocalName, res.Kind)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("✗ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
		b.WriteString("\n\n")
	}
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) helpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: dataset • ctrl+e: skip existing • ctrl+b: verbose • esc: quit"
	case StateFetching:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new batch • q: quit"
	}
	return ""
}

func check(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
