package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joebot/nightslayer-bot/internal/cli"
	"github.com/joebot/nightslayer-bot/internal/command"
	"github.com/joebot/nightslayer-bot/internal/config"
	"github.com/joebot/nightslayer-bot/internal/logging"
)

func newConsoleCommand(envFile *string) *cobra.Command {
	var (
		message string
		logFile string
	)

	cmd := &cobra.Command{
		Use:     "console",
		Aliases: []string{"c"},
		Short:   "Talk to the bot locally without Discord",
		Example: `nightslayer-bot console -m "!ping"`,
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(*envFile)
			if cfg == nil {
				return err
			}
			if err := cfg.ValidateOffline(); err != nil {
				return err
			}
			return runConsole(cfg, message, logFile)
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Send a single message and exit")
	cmd.Flags().StringVar(&logFile, "log-file", "", "Write logs here instead of discarding them")
	return cmd
}

func runConsole(cfg *config.Config, message, logFile string) error {
	// Logs would tear the TUI, so they go to a file or nowhere.
	var w io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	logging.Setup(w, cfg.Log.SlogLevel(), logging.FormatText)

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := context.Background()
	if message != "" {
		return cli.RunSingleMessage(os.Stdout, a.bot, ctx, message)
	}
	return cli.RunChat(a.bot, ctx, cli.ChatConfig{
		Model:    a.model,
		Database: cfg.Database.Path,
		Commands: helpLines(a.commands),
	})
}

func helpLines(r *command.Registry) []cli.HelpLine {
	var lines []cli.HelpLine
	for _, c := range r.Commands() {
		lines = append(lines, cli.HelpLine{Usage: c.Usage(), Description: c.Description()})
	}
	return lines
}
