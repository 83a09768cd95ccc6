package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/backup"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/binder"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/config"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/database"
)

type BackupState int

const (
	BackupInputState BackupState = iota
	BackupRunningState
	BackupResultState
)

type BackupModel struct {
	cfg          *config.Config
	state        BackupState
	siteInput    textinput.Model
	dirInput     textinput.Model
	formatInput  textinput.Model
	focusedInput int
	files        []string
	runErr       error
	width        int
	height       int
}

type backupDoneMsg struct {
	files []string
	err   error
}

func NewBackupModel(cfg *config.Config) *BackupModel {
	siteInput := textinput.New()
	siteInput.Placeholder = "AVB"
	siteInput.Focus()

	dirInput := textinput.New()
	dirInput.Placeholder = "./backups"
	dirInput.SetValue("./backups")

	formatInput := textinput.New()
	formatInput.Placeholder = "bson"
	formatInput.SetValue("bson")

	return &BackupModel{
		cfg:         cfg,
		state:       BackupInputState,
		siteInput:   siteInput,
		dirInput:    dirInput,
		formatInput: formatInput,
	}
}

func (m *BackupModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *BackupModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *BackupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case BackupInputState:
			switch msg.String() {
			case "tab", "down", "shift+tab", "up":
				m.focusedInput = (m.focusedInput + 1) % 3
				m.updateInputFocus()
				return m, nil
			case "enter":
				return m.startBackup()
			}
			switch m.focusedInput {
			case 0:
				m.siteInput, cmd = m.siteInput.Update(msg)
			case 1:
				m.dirInput, cmd = m.dirInput.Update(msg)
			case 2:
				m.formatInput, cmd = m.formatInput.Update(msg)
			}
			return m, cmd
		case BackupRunningState:
			return m, nil
		case BackupResultState:
			if msg.String() == "enter" || msg.String() == " " {
				m.state = BackupInputState
				m.files = nil
				m.runErr = nil
				return m, nil
			}
		}

	case backupDoneMsg:
		m.files = msg.files
		m.runErr = msg.err
		m.state = BackupResultState
		return m, nil
	}

	return m, cmd
}

func (m *BackupModel) updateInputFocus() {
	inputs := []*textinput.Model{&m.siteInput, &m.dirInput, &m.formatInput}
	for i, input := range inputs {
		if i == m.focusedInput {
			input.Focus()
		} else {
			input.Blur()
		}
	}
}

func (m *BackupModel) startBackup() (tea.Model, tea.Cmd) {
	site := strings.TrimSpace(m.siteInput.Value())
	dir := strings.TrimSpace(m.dirInput.Value())
	format := strings.TrimSpace(m.formatInput.Value())

	if site == "" {
		return m, ShowError(fmt.Errorf("site code is required"))
	}
	if format != "bson" && format != "json" {
		return m, ShowError(fmt.Errorf("format must be bson or json, got %q", format))
	}

	cfg := m.cfg
	m.state = BackupRunningState

	return m, func() tea.Msg {
		ctx := context.Background()

		registry, err := binder.Load(cfg.BindingsDir, nil)
		if err != nil {
			return backupDoneMsg{err: err}
		}

		db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return backupDoneMsg{err: err}
		}
		defer db.Close()

		files, err := backup.NewService(db).DumpSite(ctx, registry, site, dir, format)
		return backupDoneMsg{files: files, err: err}
	}
}

func (m *BackupModel) View() string {
	titleStyle, formStyle, helpStyle := adaptiveStyles(m.width, m.height)

	switch m.state {
	case BackupRunningState:
		title := titleStyle.Render("Dumping collections...")
		help := helpStyle.Render("Please wait...")
		return lipgloss.JoinVertical(lipgloss.Left, title, help)

	case BackupResultState:
		title := titleStyle.Render("Backup complete")
		var status string
		if m.runErr != nil {
			status = errorStyle.Render(fmt.Sprintf("Backup failed: %v", m.runErr))
		} else {
			var list string
			for _, file := range m.files {
				list += "  " + file + "\n"
			}
			status = successStyle.Render(fmt.Sprintf("Wrote %d dump file(s):", len(m.files))) + "\n" + list
		}
		help := helpStyle.Render("Enter: Back to form • Esc: Back to menu")
		return lipgloss.JoinVertical(lipgloss.Left, title, status, help)

	default:
		title := titleStyle.Render("Backup site collections")
		form := formStyle.Render(
			labelStyle.Render("Site:") + "\n" + m.siteInput.View() + "\n\n" +
				labelStyle.Render("Output directory:") + "\n" + m.dirInput.View() + "\n\n" +
				labelStyle.Render("Format (bson/json):") + "\n" + m.formatInput.View(),
		)
		help := helpStyle.Render("Tab: Navigate • Enter: Dump • Esc: Back to menu")

		content := lipgloss.JoinVertical(lipgloss.Left, title, form, help)
		if m.width > 0 && m.height > 0 {
			content = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Top, content)
		}
		return content
	}
}
