package discord

import (
	"context"
	"fmt"
	"pbpbot/internal/core/domain"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

var optionTypes = map[domain.OptionType]discordgo.ApplicationCommandOptionType{
	domain.OptionSubcommand: discordgo.ApplicationCommandOptionSubCommand,
	domain.OptionString:     discordgo.ApplicationCommandOptionString,
	domain.OptionInteger:    discordgo.ApplicationCommandOptionInteger,
	domain.OptionBoolean:    discordgo.ApplicationCommandOptionBoolean,
	domain.OptionUser:       discordgo.ApplicationCommandOptionUser,
}

func toApplicationCommand(s domain.CommandSchema) *discordgo.ApplicationCommand {
	cmd := &discordgo.ApplicationCommand{
		Name:        s.Name,
		Description: s.Description,
		Options:     toOptions(s.Options),
	}

	if s.DefaultMemberPermissions != nil {
		perms := int64(*s.DefaultMemberPermissions)
		cmd.DefaultMemberPermissions = &perms
	}

	return cmd
}

func toOptions(opts []domain.OptionSchema) []*discordgo.ApplicationCommandOption {
	if len(opts) == 0 {
		return nil
	}

	out := make([]*discordgo.ApplicationCommandOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, &discordgo.ApplicationCommandOption{
			Type:        optionTypes[o.Type],
			Name:        o.Name,
			Description: o.Description,
			Required:    o.Required,
			MinLength:   o.MinLength,
			MaxLength:   o.MaxLength,
			MinValue:    o.MinValue,
			MaxValue:    o.MaxValue,
			Options:     toOptions(o.Options),
		})
	}
	return out
}

type commandOverwriter interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand,
		options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// RegisterCommands replaces the whole global command set of the application with schemas.
func RegisterCommands(ctx context.Context, s commandOverwriter, appID string, schemas []domain.CommandSchema) error {
	cmds := make([]*discordgo.ApplicationCommand, len(schemas))
	for i, schema := range schemas {
		cmds[i] = toApplicationCommand(schema)
	}

	registered, err := s.ApplicationCommandBulkOverwrite(appID, "", cmds, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	log.Info().Int("commands", len(registered)).Str("appId", appID).Msg("registered application commands")
	return nil
}
