package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/joebot/nightslayer-bot/internal/bus"
	"github.com/joebot/nightslayer-bot/internal/channel"
	"github.com/joebot/nightslayer-bot/internal/cli"
	"github.com/joebot/nightslayer-bot/internal/config"
	"github.com/joebot/nightslayer-bot/internal/cron"
	"github.com/joebot/nightslayer-bot/internal/heartbeat"
	"github.com/joebot/nightslayer-bot/internal/logging"
)

func newRunCommand(envFile *string) *cobra.Command {
	var debug bool

	cmd := &cobra.Command{
		Use:     "run",
		Aliases: []string{"gateway"},
		Short:   "Connect to Discord and serve messages",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(*envFile)
			if err != nil {
				return err
			}
			if debug {
				cfg.Log.Level = "debug"
			}
			return runGateway(cfg)
		},
	}
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	return cmd
}

func runGateway(cfg *config.Config) error {
	logging.Setup(os.Stderr, cfg.Log.SlogLevel(), logging.Format(cfg.Log.Format))

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	discord := channel.NewDiscord(cfg.Discord, a.bus)
	a.bus.Subscribe(discord.Name(), func(ctx context.Context, msg *bus.OutboundMessage) error {
		return discord.Send(ctx, msg)
	})

	fmt.Println()
	fmt.Println(cli.TitleStyle.Render(fmt.Sprintf("  %s %s", cli.Logo, cli.Name)))
	fmt.Println()
	fmt.Printf("  %s Discord\n", cli.StatusBadge(true))
	fmt.Printf("  %s Model %s\n", cli.StatusBadge(a.model != ""), cli.DimStyle.Render(a.model))
	fmt.Printf("  %s Battle.net\n", cli.StatusBadge(cfg.BattleNet.Enabled()))

	scheduler, err := newScheduler(cfg, a.bus, func(ctx context.Context, _ *cron.Job) (string, error) {
		return a.levelCheck(ctx)
	})
	if err != nil {
		return err
	}
	jobs := scheduler.ListJobs()
	if len(jobs) == 0 {
		fmt.Printf("  %s Level check\n", cli.StatusBadge(false))
	}
	for _, job := range jobs {
		fmt.Printf("  %s Level check %s\n", cli.StatusBadge(true), cli.DimStyle.Render("next "+job.State.NextRunAt.Format(time.RFC1123)))
	}
	fmt.Println()

	watchdog := heartbeat.NewService(discord.Name(), cfg.Heartbeat.Interval, discord.Connected)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { a.bus.DispatchOutbound(ctx); return nil })
	g.Go(func() error { a.bot.Run(ctx); return nil })
	g.Go(func() error { scheduler.Run(ctx); return nil })
	g.Go(func() error { watchdog.Run(ctx); return nil })
	g.Go(func() error { return discord.Start(ctx) })

	fmt.Println(cli.DimStyle.Render("  Press Ctrl+C to stop"))
	err = g.Wait()
	fmt.Println("\n  Shutting down...")
	if stopErr := discord.Stop(); stopErr != nil {
		slog.Warn("Discord close failed", "err", stopErr)
	}
	return err
}
