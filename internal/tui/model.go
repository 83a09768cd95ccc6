// Package tui is the interactive mode: a menu over the migration runner and
// the pre-migration backup service, with live progress while a run is in
// flight.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/config"
)

type Screen int

const (
	MenuScreen Screen = iota
	MigrateScreen
	BackupScreen
)

type Model struct {
	cfg           *config.Config
	currentScreen Screen
	menuModel     *MenuModel
	migrateModel  *MigrateModel
	backupModel   *BackupModel
	err           error
	quitting      bool
	width         int
	height        int
}

func NewModel(cfg *config.Config) Model {
	return Model{
		cfg:           cfg,
		currentScreen: MenuScreen,
		menuModel:     NewMenuModel(),
		migrateModel:  NewMigrateModel(cfg),
		backupModel:   NewBackupModel(cfg),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menuModel.SetSize(msg.Width, msg.Height)
		m.migrateModel.SetSize(msg.Width, msg.Height)
		m.backupModel.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "q":
			// q quits only from the menu; screens use it for input.
			if m.currentScreen == MenuScreen {
				m.quitting = true
				return m, tea.Quit
			}
		case "esc":
			if m.currentScreen != MenuScreen && !m.migrateModel.running {
				m.currentScreen = MenuScreen
				return m, nil
			}
		}

	case ScreenChangeMsg:
		m.currentScreen = msg.Screen
		return m, nil

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	switch m.currentScreen {
	case MenuScreen:
		newMenu, cmd := m.menuModel.Update(msg)
		m.menuModel = newMenu.(*MenuModel)
		return m, cmd
	case MigrateScreen:
		newMigrate, cmd := m.migrateModel.Update(msg)
		m.migrateModel = newMigrate.(*MigrateModel)
		return m, cmd
	case BackupScreen:
		newBackup, cmd := m.backupModel.Update(msg)
		m.backupModel = newBackup.(*BackupModel)
		return m, cmd
	}

	return m, cmd
}

func (m Model) View() string {
	if m.quitting {
		return "Migration console closed.\n"
	}

	var content string
	switch m.currentScreen {
	case MenuScreen:
		content = m.menuModel.View()
	case MigrateScreen:
		content = m.migrateModel.View()
	case BackupScreen:
		content = m.backupModel.View()
	}

	if m.err != nil {
		errStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true).
			Margin(1, 0)
		content += errStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return content
}

type ScreenChangeMsg struct {
	Screen Screen
}

type ErrorMsg struct {
	Err error
}

func ChangeScreen(screen Screen) tea.Cmd {
	return func() tea.Msg {
		return ScreenChangeMsg{Screen: screen}
	}
}

func ShowError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}
