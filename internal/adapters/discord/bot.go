package discord

import (
	"context"
	"fmt"
	"pbpbot/internal/core/domain"
	"pbpbot/internal/core/port"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const (
	intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildPresences |
		discordgo.IntentsGuildMessages

	presenceName = "PBP"
)

type Dispatcher interface {
	Handle(ctx context.Context, inv *domain.Invocation, responder port.Responder) error
}

// Bot owns the gateway session and forwards slash command events to the dispatcher.
type Bot struct {
	Session *discordgo.Session
	ctx     context.Context
}

func NewBot(token string) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = intents

	return &Bot{Session: s, ctx: context.Background()}, nil
}

// Start installs the event handlers and opens the gateway. Commands run under ctx.
func (b *Bot) Start(ctx context.Context, dispatcher Dispatcher) error {
	b.ctx = ctx

	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		log.Info().Str("user", r.User.String()).Int("guilds", len(r.Guilds)).Msg("connected to gateway")

		err := s.UpdateStatusComplex(discordgo.UpdateStatusData{
			Status:     string(discordgo.StatusDoNotDisturb),
			Activities: []*discordgo.Activity{{Name: presenceName, Type: discordgo.ActivityTypeWatching}},
		})
		if err != nil {
			log.Warn().Err(err).Msg("failed to set presence")
		}
	})

	b.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		inv, ok := toInvocation(i)
		if !ok {
			return
		}

		log.Debug().Str("command", inv.CommandName).Str("interactionId", inv.ID).Msg("received command")

		if err := dispatcher.Handle(b.ctx, inv, NewResponder(s, i.Interaction)); err != nil {
			log.Debug().Err(err).Str("command", inv.CommandName).Msg("dropped interaction")
		}
	})

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}
	return nil
}

func (b *Bot) Close() error {
	return b.Session.Close()
}
