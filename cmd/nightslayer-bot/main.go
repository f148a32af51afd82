package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joebot/nightslayer-bot/internal/cli"
	"github.com/joebot/nightslayer-bot/internal/config"
	"github.com/joebot/nightslayer-bot/internal/cron"
)

func newRootCommand() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "nightslayer-bot",
		Short:         fmt.Sprintf("%s nightslayer-bot - Discord bot for the Nightslayer guild v%s", cli.Logo, cli.Version),
		Example:       "nightslayer-bot run --env-file /etc/nightslayer-bot.env",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "Env file sourced before reading the environment")

	cmd.AddCommand(
		newRunCommand(&envFile),
		newConsoleCommand(&envFile),
		newStatusCommand(&envFile),
		newVersionCommand(),
	)
	return cmd
}

func newStatusCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			cfg, err := config.Load(*envFile)
			var jobs []cron.Job
			if cfg != nil && err == nil {
				if s, schedErr := newScheduler(cfg, nil, nil); schedErr == nil {
					jobs = s.ListJobs()
				}
			}
			cli.RunStatus(cfg, *envFile, err, jobs)
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Show version",
		Args:    cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(cli.TitleStyle.Render(
				fmt.Sprintf("  %s %s v%s", cli.Logo, cli.Name, cli.Version),
			))
		},
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
