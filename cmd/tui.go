package cmd

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/config"
	"github.com/Krysto-nc-dev/robot-nc-api-V2/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive migration console",
	Long: `Start the Terminal User Interface for Gestmag migrations. This
provides an interactive interface for running site migrations with live
progress, and for dumping destination collections before a run.`,
	RunE: runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	model := tui.NewModel(cfg)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running TUI: %v", err)
	}

	return nil
}
