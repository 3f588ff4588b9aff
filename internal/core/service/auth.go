package service

import (
	"context"
	"errors"
	"pbpbot/internal/core/domain"
	"pbpbot/internal/core/port"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Authorizer interface {
	IsAuthorized(ctx context.Context, interaction port.Interaction) bool
}

// GuildAuthorizer restricts the bot to an allowlist of guilds. An empty allowlist admits every guild.
// Direct messages are always admitted.
type GuildAuthorizer struct {
	allowlist []string
}

func NewAuthorizer() (*GuildAuthorizer, error) {
	var list []string

	err := viper.UnmarshalKey("discord.allowed_guild_ids", &list)
	if err != nil {
		return nil, errors.New("failed to load allowed guild IDs")
	}

	return &GuildAuthorizer{
		allowlist: list,
	}, nil
}

const forbidden = "This bot is not enabled for this server."

func (a *GuildAuthorizer) IsAuthorized(ctx context.Context, interaction port.Interaction) bool {
	inv := interaction.Invocation()
	if len(a.allowlist) == 0 || inv.Origin() == domain.Direct || slices.Contains(a.allowlist, inv.GuildID) {
		return true
	}

	err := interaction.Reply(ctx, domain.TextReply(forbidden))
	if err != nil {
		log.Err(err).Str("guildId", inv.GuildID).Msg("failed to send unauthorized warning")
	}

	return false
}
