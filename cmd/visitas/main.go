package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/porteria/visitas-app/internal/api"
	"github.com/porteria/visitas-app/internal/config"
	"github.com/porteria/visitas-app/internal/logger"
	"github.com/porteria/visitas-app/internal/tui"
)

func main() {
	cfg := config.Load()

	out, closeLog, err := logger.Output(cfg.LogFile)
	if err != nil {
		slog.Error("opening log file", "path", cfg.LogFile, "error", err)
		os.Exit(1)
	}
	defer closeLog()

	log := logger.New(out, cfg.Level())
	slog.SetDefault(log)

	client := api.New(cfg, log)
	app := tui.NewApp(cfg, log, client)

	log.Info("starting", "api", cfg.APIBaseURL)
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		log.Error("running UI", "error", err)
		os.Exit(1)
	}
}
