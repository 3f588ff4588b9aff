package main

import (
	"context"
	"os"
	"os/signal"
	"pbpbot/internal/adapters/account"
	"pbpbot/internal/adapters/discord"
	"pbpbot/internal/adapters/handler"
	"pbpbot/internal/adapters/shortener"
	"pbpbot/internal/config"
	"pbpbot/internal/core/domain/command"
	"pbpbot/internal/core/port"
	"pbpbot/internal/core/service"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	os.Exit(run())
}

func run() int {
	log.Info().Msg("starting pbpbot...")

	cfg, err := config.Load(".")
	if err != nil {
		log.Error().Err(err).Msg("could not load config")
		return 1
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.PrettyLogs {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bot, err := discord.NewBot(cfg.Token)
	if err != nil {
		log.Error().Err(err).Msg("failed initializing discord session")
		return 1
	}
	platform := discord.NewPlatform(bot.Session)

	cooldown := service.NewCooldown(cfg.ShortURLCooldown)

	purger := service.NewPurger(platform)
	purger.PageDelay = cfg.Purge.PageDelay
	purger.SingleDelay = cfg.Purge.SingleDelay
	purger.OldAtBoundary = cfg.Purge.OldAtBoundary

	uclear := command.NewUClear(platform, purger)
	uclear.SharedBudget = cfg.Purge.SharedBudget

	commandRegistry := &command.Registry{}
	commands := []port.Command{
		command.NewPing(platform),
		command.NewShortURL(shortener.NewTinyURL(cfg.ShortURLEndpoint), cooldown, cfg.ShortURLRetry),
		uclear,
		command.NewUnbanAll(platform, cfg.Unban),
		command.NewUserInfo(platform, platform),
		command.NewAPIDetails(account.NewHTTPFetcher(cfg.AccountTimeout), cfg.AccountRetry),
	}
	for _, c := range commands {
		if err := commandRegistry.Register(c); err != nil {
			log.Error().Err(err).Msg("failed registering command")
			return 1
		}
	}

	if err := discord.RegisterCommands(ctx, bot.Session, cfg.ClientID, commandRegistry.Schemas()); err != nil {
		log.Error().Err(err).Msg("failed registering application commands")
		return 1
	}

	auth, err := service.NewAuthorizer()
	if err != nil {
		log.Error().Err(err).Msg("failed initializing authorizer")
		return 1
	}

	dispatcher := handler.NewInteraction(commandRegistry, auth, cfg.HandlerTimeout)
	if err := bot.Start(ctx, dispatcher); err != nil {
		log.Error().Err(err).Msg("failed connecting to gateway")
		return 1
	}

	log.Info().Strs("commands", commandRegistry.ListCommands()).Msg("bot listening")
	<-ctx.Done()

	log.Info().Msg("shutting down")
	if err := bot.Close(); err != nil {
		log.Warn().Err(err).Msg("failed closing gateway session")
	}
	dispatcher.Wait()

	return 0
}
