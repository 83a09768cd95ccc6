package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/config"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/migrate"
	runprogress "github.com/Krysto-nc-dev/robot-nc-api-V2/internal/progress"
)

type MigrateState int

const (
	MigrateInputState MigrateState = iota
	MigrateProgressState
	MigrateResultState
)

type MigrateModel struct {
	cfg          *config.Config
	state        MigrateState
	sitesInput   textinput.Model
	workersInput textinput.Model
	focusedInput int
	bar          progress.Model
	label        string
	current      int
	total        int
	running      bool
	summary      *migrate.Summary
	runErr       error
	events       chan tea.Msg
	width        int
	height       int
}

// migrateProgressMsg carries one load's progress out of the runner
// goroutine and into the event loop.
type migrateProgressMsg struct {
	label   string
	current int
	total   int
}

type migrateDoneMsg struct {
	summary *migrate.Summary
	err     error
}

func NewMigrateModel(cfg *config.Config) *MigrateModel {
	sitesInput := textinput.New()
	sitesInput.Placeholder = "all bound sites"
	sitesInput.Focus()

	workersInput := textinput.New()
	workersInput.Placeholder = "1"

	return &MigrateModel{
		cfg:          cfg,
		state:        MigrateInputState,
		sitesInput:   sitesInput,
		workersInput: workersInput,
		bar:          progress.New(progress.WithSolidFill("#00aadd")),
	}
}

func (m *MigrateModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *MigrateModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *MigrateModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case MigrateInputState:
			return m.updateInputState(msg)
		case MigrateProgressState:
			// A run in flight cannot be interrupted from here; killing
			// the process mid-pair leaves that pair deleted but not
			// reinserted and it must be re-run.
			return m, nil
		case MigrateResultState:
			if msg.String() == "enter" || msg.String() == " " {
				m.reset()
				return m, nil
			}
		}

	case migrateProgressMsg:
		m.label = msg.label
		m.current = msg.current
		m.total = msg.total
		return m, m.waitForEvent()

	case migrateDoneMsg:
		m.summary = msg.summary
		m.runErr = msg.err
		m.running = false
		m.state = MigrateResultState
		return m, nil
	}

	return m, cmd
}

func (m *MigrateModel) updateInputState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "tab", "down", "shift+tab", "up":
		m.focusedInput = (m.focusedInput + 1) % 2
		m.updateInputFocus()
	case "enter":
		return m.startMigration()
	}

	switch m.focusedInput {
	case 0:
		m.sitesInput, cmd = m.sitesInput.Update(msg)
	case 1:
		m.workersInput, cmd = m.workersInput.Update(msg)
	}

	return m, cmd
}

func (m *MigrateModel) updateInputFocus() {
	inputs := []*textinput.Model{&m.sitesInput, &m.workersInput}
	for i, input := range inputs {
		if i == m.focusedInput {
			input.Focus()
		} else {
			input.Blur()
		}
	}
}

func (m *MigrateModel) startMigration() (tea.Model, tea.Cmd) {
	cfg := *m.cfg
	cfg.NoProgress = true // terminal bars would fight the TUI

	if sites := strings.TrimSpace(m.sitesInput.Value()); sites != "" {
		cfg.Sites = nil
		for _, s := range strings.Split(sites, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Sites = append(cfg.Sites, s)
			}
		}
	}
	if workers := strings.TrimSpace(m.workersInput.Value()); workers != "" {
		n, err := strconv.Atoi(workers)
		if err != nil || n < 1 {
			return m, ShowError(fmt.Errorf("workers must be a positive number, got %q", workers))
		}
		cfg.Workers = n
	}

	m.state = MigrateProgressState
	m.running = true
	m.label, m.current, m.total = "", 0, 0
	m.events = make(chan tea.Msg, 64)

	go func(events chan tea.Msg) {
		summary, err := migrate.RunWith(context.Background(), &cfg, zap.NewNop(),
			func(label string) runprogress.Reporter {
				return &channelReporter{events: events, label: label}
			})
		events <- migrateDoneMsg{summary: summary, err: err}
	}(m.events)

	return m, m.waitForEvent()
}

func (m *MigrateModel) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return <-events
	}
}

func (m *MigrateModel) reset() {
	m.state = MigrateInputState
	m.running = false
	m.summary = nil
	m.runErr = nil
	m.sitesInput.SetValue("")
	m.workersInput.SetValue("")
	m.focusedInput = 0
	m.updateInputFocus()
}

func (m *MigrateModel) View() string {
	switch m.state {
	case MigrateInputState:
		return m.renderInputForm()
	case MigrateProgressState:
		return m.renderProgress()
	case MigrateResultState:
		return m.renderResult()
	}
	return ""
}

func (m *MigrateModel) renderInputForm() string {
	titleStyle, formStyle, helpStyle := adaptiveStyles(m.width, m.height)

	title := titleStyle.Render("Run Gestmag migration")

	form := formStyle.Render(
		labelStyle.Render("Sites (comma-separated, empty for all):") + "\n" + m.sitesInput.View() + "\n\n" +
			labelStyle.Render("Workers:") + "\n" + m.workersInput.View(),
	)

	help := helpStyle.Render("Tab: Navigate • Enter: Start migration • Esc: Back to menu")

	content := lipgloss.JoinVertical(lipgloss.Left, title, form, help)
	if m.width > 0 && m.height > 0 {
		content = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, content)
	}
	return content
}

func (m *MigrateModel) renderProgress() string {
	titleStyle, _, helpStyle := adaptiveStyles(m.width, m.height)

	title := titleStyle.Render("Migrating...")

	barWidth := m.width - 10
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 80 {
		barWidth = 80
	}

	var ratio float64
	if m.total > 0 {
		ratio = float64(m.current) / float64(m.total)
	}
	bar := lipgloss.NewStyle().Width(barWidth).Render(m.bar.ViewAs(ratio))

	status := "resolving bindings..."
	if m.label != "" {
		status = fmt.Sprintf("%s: %d/%d records", m.label, m.current, m.total)
	}

	content := progressStyle.Render(bar + "\n" + status)
	help := helpStyle.Render("Please wait while archives are migrated...")

	result := lipgloss.JoinVertical(lipgloss.Left, title, content, help)
	if m.width > 0 && m.height > 0 {
		result = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, result)
	}
	return result
}

func (m *MigrateModel) renderResult() string {
	titleStyle, _, helpStyle := adaptiveStyles(m.width, m.height)

	title := titleStyle.Render("Migration complete")

	if m.runErr != nil {
		status := errorStyle.Render(fmt.Sprintf("Migration aborted: %v", m.runErr))
		help := helpStyle.Render("Enter: Try again • Esc: Back to menu")
		return lipgloss.JoinVertical(lipgloss.Left, title, status, help)
	}

	status := successStyle.Render(fmt.Sprintf(
		"Migrated %d of %d records across %d pairs in %s",
		m.summary.TotalInserted(),
		m.summary.TotalSource(),
		len(m.summary.Outcomes),
		m.summary.Elapsed.Round(time.Millisecond),
	))

	var lines string
	for _, o := range m.summary.Outcomes {
		line := fmt.Sprintf("%s/%s: %d/%d", o.Site, o.Kind, o.Inserted, o.SourceCount)
		if o.Failed() {
			line = warningStyle.Render(line)
		}
		lines += line + "\n"
	}
	for _, skip := range m.summary.Skips {
		lines += warningStyle.Render(skip.Reason) + "\n"
	}

	help := helpStyle.Render("Enter: Run another migration • Esc: Back to menu")

	return lipgloss.JoinVertical(lipgloss.Left, title, status, lines, help)
}

// channelReporter forwards load progress into the TUI event loop.
type channelReporter struct {
	events chan tea.Msg
	label  string
	total  int
}

func (r *channelReporter) Start(total int) {
	r.total = total
	r.send(0)
}

func (r *channelReporter) Update(current int) {
	r.send(current)
}

func (r *channelReporter) Stop() {}

func (r *channelReporter) send(current int) {
	select {
	case r.events <- migrateProgressMsg{label: r.label, current: current, total: r.total}:
	default:
		// Never block a load on a slow UI.
	}
}
