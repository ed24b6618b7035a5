package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/j-veylop/openai-costs-tui/internal/app"
	"github.com/j-veylop/openai-costs-tui/internal/config"
	"github.com/j-veylop/openai-costs-tui/internal/logger"
	"github.com/j-veylop/openai-costs-tui/internal/models"
	"github.com/j-veylop/openai-costs-tui/internal/services"
	"github.com/j-veylop/openai-costs-tui/internal/ui/login"
	"github.com/j-veylop/openai-costs-tui/internal/ui/tabs/directory"
	"github.com/j-veylop/openai-costs-tui/internal/ui/tabs/info"
	"github.com/j-veylop/openai-costs-tui/internal/ui/tabs/overview"
	"github.com/j-veylop/openai-costs-tui/internal/ui/tabs/projects"
	"github.com/j-veylop/openai-costs-tui/internal/version"
)

const rootLong = `oct shows what an OpenAI organization spends, per project and per model.

Keyboard Shortcuts:
  1-4             Switch tabs (Overview, Projects, Directory, Info)
  Tab/Shift+Tab   Navigate between tabs
  t               Cycle the date range
  r               Refresh, bypassing the response cache
  L               Log out
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  OPENAI_ADMIN_KEY       Admin API key (OPENAI_API_KEY is used as fallback)
  OPENAI_ORG_ID          Organization header
  DATABASE_PATH          SQLite user database path
  SESSION_PATH           Persisted login session
  CACHE_TTL              Response cache lifetime (default: 1h)
  COST_ALERT_THRESHOLD   Desktop alert when the total crosses this amount

Configuration:
  .env files are read from the current directory, ~/.config/oct/.env
  and the two parent directories, first match wins.`

func newRootCmd() *cobra.Command {
	var rangeSlug string

	cmd := &cobra.Command{
		Use:           version.Name,
		Short:         "Terminal dashboard for OpenAI organization costs",
		Long:          rootLong,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			preset, err := parsePreset(rangeSlug)
			if err != nil {
				return err
			}
			return runTUI(preset)
		},
	}
	cmd.SetVersionTemplate(version.Info() + "\n")
	cmd.Flags().StringVar(&rangeSlug, "range", models.RangeThisMonth.Slug(), "initial date range ("+presetSlugs()+")")

	cmd.AddCommand(newReportCmd(), newUserCmd(), newVersionCmd())
	return cmd
}

// runTUI wires configuration, services and tabs and blocks until the
// program exits.
func runTUI(preset models.DateRangePreset) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logCloser, err := logger.Init(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logCloser.Close()

	logger.Info("starting", "version", version.GetVersion(), "range", preset.Slug())

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	state := model.GetState()
	state.SetPreset(preset)

	overviewTab := overview.New(state)
	overviewTab.SetAlertThreshold(cfg.CostAlertThreshold)

	model.SetTabs([]app.Tab{
		overviewTab,
		projects.New(state),
		directory.New(state),
		info.New(state, cfg),
	})
	model.SetLoginView(login.New())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	logger.Info("exiting")
	return nil
}
