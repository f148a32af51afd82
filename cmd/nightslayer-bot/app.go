package main

import (
	"context"
	"fmt"

	"github.com/joebot/nightslayer-bot/internal/bot"
	"github.com/joebot/nightslayer-bot/internal/bus"
	"github.com/joebot/nightslayer-bot/internal/chat"
	"github.com/joebot/nightslayer-bot/internal/command"
	"github.com/joebot/nightslayer-bot/internal/config"
	"github.com/joebot/nightslayer-bot/internal/llm"
	"github.com/joebot/nightslayer-bot/internal/store"
	"github.com/joebot/nightslayer-bot/internal/wow"
)

// app holds the components shared by the gateway and the console.
type app struct {
	cfg      *config.Config
	store    *store.Store
	bus      *bus.MessageBus
	commands *command.Registry
	bot      *bot.Bot
	reporter *command.LevelReporter
	model    string
}

func newApp(cfg *config.Config) (*app, error) {
	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	provider, err := llm.New(cfg.LLM)
	if err != nil {
		st.Close()
		return nil, err
	}

	// Leave the interfaces nil rather than holding a nil *chat.Service.
	var (
		asker  bot.Asker
		oracle command.Oracle
		model  string
	)
	if provider != nil {
		svc := chat.NewService(provider, st, chat.Options{
			HistoryLimit: cfg.Bot.HistoryLimit,
			Temperature:  cfg.LLM.Temperature,
			MaxTokens:    cfg.LLM.MaxTokens,
		})
		asker, oracle = svc, svc
		model = cfg.LLM.Provider
		if m := provider.DefaultModel(); m != "" {
			model += " " + m
		}
	}

	armory, err := wow.New(cfg.BattleNet, wow.WithFanout(cfg.BattleNet.Fanout))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("battle.net client: %w", err)
	}

	commands := command.NewRegistry()
	command.RegisterBuiltins(commands, command.Deps{
		Store:    st,
		Armory:   armory,
		Oracle:   oracle,
		Greeting: cfg.Bot.Greeting,
	})

	msgBus := bus.NewMessageBus()
	return &app{
		cfg:      cfg,
		store:    st,
		bus:      msgBus,
		commands: commands,
		bot: bot.New(bot.Config{
			Bus:      msgBus,
			Commands: commands,
			Chat:     asker,
			Modes:    st,
			Greeting: cfg.Bot.Greeting,
			Workers:  cfg.Bot.Workers,
		}),
		reporter: command.NewLevelReporter(st, armory, oracle),
		model:    model,
	}, nil
}

// levelCheck renders the scheduled report.
func (a *app) levelCheck(ctx context.Context) (string, error) {
	return a.reporter.Report(ctx, !a.cfg.LevelCheck.Raw, nil)
}

func (a *app) Close() error {
	return a.store.Close()
}
