// Package tui provides a Bubble Tea terminal user interface for judge-a-book.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/judgeabook/judge-a-book/internal/config"
	"github.com/judgeabook/judge-a-book/internal/download"
	"github.com/judgeabook/judge-a-book/internal/model"
	"go.uber.org/zap"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
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

	fileStyle = lipgloss.NewStyle().
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

// Input field indices.
const (
	fieldCollection = iota
	fieldOutDir
	fieldCount
	fieldTotal
)

// errCancelled is shown when the user aborts a run.
var errCancelled = errors.New("cancelled by user")

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state      State
	inputs     []textinput.Model
	focus      int
	resolution model.Resolution
	spinner    spinner.Model
	progress   progress.Model
	settings   *config.Settings
	log        *zap.Logger
	logs       []LogEntry
	files      []string
	err        error

	// Run context
	ctx    context.Context
	cancel context.CancelFunc

	pipeline *download.Pipeline
	runID    string
	events   chan download.ProgressEvent
	stats    download.Stats

	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model. log may be nil.
func NewModel(settings *config.Settings, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}

	inputs := make([]textinput.Model, fieldTotal)
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 200
		ti.Width = 60
		switch i {
		case fieldCollection:
			ti.Placeholder = "collection policy id"
			ti.Focus()
		case fieldOutDir:
			ti.Placeholder = "covers"
			ti.SetValue("covers")
		case fieldCount:
			ti.Placeholder = "10"
			ti.SetValue("10")
			ti.CharLimit = 6
		}
		inputs[i] = ti
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:      StateInput,
		inputs:     inputs,
		resolution: model.High,
		spinner:    sp,
		progress:   prog,
		settings:   settings,
		log:        log,
		logs:       make([]LogEntry, 0),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Message types
type (
	// ProgressMsg is sent when the pipeline reports progress.
	ProgressMsg struct {
		RunID string
		Event download.ProgressEvent
	}

	// FetchDoneMsg is sent when the run finishes.
	FetchDoneMsg struct {
		RunID string
		Files []string
		Stats download.Stats
		Err   error
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
				m.state = StateError
				m.err = errCancelled
			}

		case "enter":
			if m.state == StateInput {
				req, err := m.request()
				if err != nil {
					m.addLog(LogEntry{Message: err.Error(), Level: download.LevelError})
					return m, nil
				}
				m.state = StateFetching
				m.events = make(chan download.ProgressEvent, 64)
				m.runID = uuid.NewString()
				log := m.log.With(zap.String("run_id", m.runID))
				m.pipeline = download.New(m.settings, log, m.forward(m.events))
				return m, tea.Batch(m.startFetch(req), waitForEvent(m.runID, m.events), m.spinner.Tick, m.tickProgress())
			}

		case "tab", "down":
			if m.state == StateInput {
				m.setFocus((m.focus + 1) % fieldTotal)
				return m, nil
			}

		case "shift+tab", "up":
			if m.state == StateInput {
				m.setFocus((m.focus + fieldTotal - 1) % fieldTotal)
				return m, nil
			}

		case "ctrl+r":
			if m.state == StateInput {
				m.resolution = toggle(m.resolution)
				return m, nil
			}

		case "ctrl+v":
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
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		if msg.RunID != m.runID {
			// A cancelled run still draining its events.
			return m, nil
		}
		if msg.Event.Level != download.LevelVerbose || m.verbose {
			m.addLog(LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
		}
		if m.state == StateFetching {
			cmds = append(cmds, waitForEvent(m.runID, m.events))
		}

	case FetchDoneMsg:
		if m.state != StateFetching || msg.RunID != m.runID {
			// Cancelled from the keyboard; the error is already shown.
			return m, nil
		}
		m.stats = msg.Stats
		m.files = msg.Files
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.state = StateComplete
		}

	case TickMsg:
		if m.pipeline != nil && m.state == StateFetching {
			m.stats = m.pipeline.Progress()
			cmds = append(cmds, m.progress.SetPercent(percent(m.stats)), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// request validates the form and builds a pipeline request from it.
func (m Model) request() (download.Request, error) {
	collection := strings.TrimSpace(m.inputs[fieldCollection].Value())
	if collection == "" {
		return download.Request{}, errors.New("collection id is required")
	}

	outDir := strings.TrimSpace(m.inputs[fieldOutDir].Value())
	if outDir == "" {
		outDir = "."
	}

	count, err := strconv.Atoi(strings.TrimSpace(m.inputs[fieldCount].Value()))
	if err != nil || count < 0 {
		return download.Request{}, fmt.Errorf("count must be a non-negative number, got %q", m.inputs[fieldCount].Value())
	}

	return download.Request{
		CollectionID: collection,
		OutDir:       outDir,
		Count:        count,
		Resolution:   m.resolution,
	}, nil
}

func (m *Model) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

func (m *Model) addLog(entry LogEntry) {
	m.logs = append(m.logs, entry)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// reset prepares the model for another run, keeping the form values.
func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.files = nil
	m.err = nil
	m.stats = download.Stats{}
	m.pipeline = nil
	m.runID = ""
	m.events = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.setFocus(fieldCollection)
}

func toggle(r model.Resolution) model.Resolution {
	if r == model.High {
		return model.Low
	}
	return model.High
}

func percent(s download.Stats) float64 {
	if s.CoversSelected == 0 {
		return 0
	}
	return float64(s.CoversWritten) / float64(s.CoversSelected)
}

// forward returns a progress callback that hands events to the UI without
// blocking the pipeline. Events are dropped when the UI falls behind.
func (m Model) forward(events chan<- download.ProgressEvent) func(download.ProgressEvent) {
	return func(event download.ProgressEvent) {
		select {
		case events <- event:
		default:
		}
	}
}

func waitForEvent(runID string, events <-chan download.ProgressEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return ProgressMsg{RunID: runID, Event: event}
	}
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// startFetch runs the pipeline in the background.
func (m Model) startFetch(req download.Request) tea.Cmd {
	ctx, pipeline, events, runID := m.ctx, m.pipeline, m.events, m.runID
	return func() tea.Msg {
		files, err := pipeline.Fetch(ctx, req)
		close(events)
		if ctx.Err() != nil {
			err = errCancelled
		}
		return FetchDoneMsg{RunID: runID, Files: files, Stats: pipeline.Progress(), Err: err}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("📚 Judge a Book"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Fetch book cover images from a collection"))
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

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	labels := [fieldTotal]string{"Collection:", "Output directory:", "Count:"}
	for i, input := range m.inputs {
		b.WriteString(subtitleStyle.Render(labels[i]))
		b.WriteString("\n")
		b.WriteString(input.View())
		b.WriteString("\n\n")
	}

	verboseCheck := "[ ]"
	if m.verbose {
		verboseCheck = "[×]"
	}

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Resolution: %s (ctrl+r)\n", m.resolution))
	b.WriteString(fmt.Sprintf("  %s Verbose output (ctrl+v)\n", verboseCheck))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Registry: %s | Gateway: %s", m.settings.ChainBaseURL, m.settings.AssetBaseURL)))
	b.WriteString("\n")

	if len(m.logs) > 0 {
		b.WriteString("\n")
		b.WriteString(m.renderLogs())
	}

	return b.String()
}

func (m Model) viewFetching() string {
	var b strings.Builder

	if m.stats.CoversSelected == 0 {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render(fmt.Sprintf(
			"Resolving covers... %d/%d assets",
			m.stats.AssetsResolved,
			m.stats.AssetsTotal,
		)))
		b.WriteString("\n\n")
	} else {
		b.WriteString(m.progress.ViewAs(percent(m.stats)))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf(
			"Covers: %d/%d | Downloaded: %.2f MB",
			m.stats.CoversWritten,
			m.stats.CoversSelected,
			float64(m.stats.BytesReceived)/1024/1024,
		)))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Fetch Complete!\n\n"+
			"Covers: %d\n"+
			"Size: %.2f MB",
		len(m.files),
		float64(m.stats.BytesReceived)/1024/1024,
	))
	b.WriteString(box)
	b.WriteString("\n\n")

	for _, file := range m.files {
		b.WriteString(fileStyle.Render("  " + file))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}
	if len(m.files) > 0 {
		b.WriteString("\n\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("Written before the failure (%d):", len(m.files))))
		b.WriteString("\n")
		for _, file := range m.files {
			b.WriteString(fileStyle.Render("  " + file))
			b.WriteString("\n")
		}
	}

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

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • tab: next field • ctrl+r: resolution • ctrl+v: verbose • esc: quit"
	case StateFetching:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new fetch • q: quit"
	}
	return ""
}

// Run starts the TUI application.
func Run(settings *config.Settings, log *zap.Logger) error {
	p := tea.NewProgram(NewModel(settings, log), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
