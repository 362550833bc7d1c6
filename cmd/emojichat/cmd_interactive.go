package main

import (
	"context"
	"fmt"

	"emojichat/cmd/emojichat/chat"
	"emojichat/internal/config"
	"emojichat/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// runInteractiveChat launches the TUI. File logging goes under the config
// directory and config edits are applied live.
func runInteractiveChat(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path := resolveConfigPath()
	if err := logging.Initialize(config.Dir(path), cfg.LoggingOptions()); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logging.CloseAll()
	logging.Boot("starting interactive chat against %s", cfg.API.BaseURL)
	logging.BootDebug("config=%s timeout=%s theme=%s", path, cfg.GetAPITimeout(), cfg.UI.Theme)

	model := chat.New(chat.Options{
		Backend: newClient(cfg),
		Config:  cfg,
	})
	defer model.Shutdown()

	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher, err := config.NewWatcher(path, func(c *config.Config) {
		p.Send(chat.ConfigReloadedMsg{Config: c})
	})
	if err != nil {
		logging.Get(logging.CategoryBoot).Warn("config watcher unavailable: %v", err)
	} else {
		defer watcher.Stop()
		if err := watcher.Start(ctx); err != nil {
			logging.Get(logging.CategoryBoot).Warn("config watcher failed to start: %v", err)
		}
	}

	_, err = p.Run()
	logging.Boot("interactive chat exited")
	return err
}
