package discord

import (
	"pbpbot/internal/core/domain"
	"time"

	"github.com/bwmarrin/discordgo"
)

const avatarSize = "512"

// toInvocation converts a slash command event. It reports false for every other interaction type.
func toInvocation(i *discordgo.InteractionCreate) (*domain.Invocation, bool) {
	if i == nil || i.Interaction == nil || i.Type != discordgo.InteractionApplicationCommand {
		return nil, false
	}

	data := i.ApplicationCommandData()
	inv := &domain.Invocation{
		ID:             i.ID,
		CommandName:    data.Name,
		GuildID:        i.GuildID,
		ChannelID:      i.ChannelID,
		AppPermissions: domain.Permission(i.AppPermissions),
		Options:        make(map[string]domain.OptionValue),
	}

	switch {
	case i.Member != nil && i.Member.User != nil:
		inv.Invoker = toUser(i.Member.User)
		inv.Member = toMember(i.Member, i.GuildID)
	case i.User != nil:
		inv.Invoker = toUser(i.User)
	}

	opts := data.Options
	if len(opts) == 1 && opts[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		inv.Subcommand = opts[0].Name
		opts = opts[0].Options
	}

	var resolved map[string]*discordgo.User
	if data.Resolved != nil {
		resolved = data.Resolved.Users
	}

	for _, o := range opts {
		if v, ok := toOptionValue(o, resolved); ok {
			inv.Options[o.Name] = v
		}
	}

	return inv, true
}

func toOptionValue(o *discordgo.ApplicationCommandInteractionDataOption, users map[string]*discordgo.User) (domain.OptionValue, bool) {
	switch o.Type {
	case discordgo.ApplicationCommandOptionString:
		return domain.OptionValue{Type: domain.OptionString, String: o.StringValue()}, true
	case discordgo.ApplicationCommandOptionInteger:
		return domain.OptionValue{Type: domain.OptionInteger, Int: o.IntValue()}, true
	case discordgo.ApplicationCommandOptionBoolean:
		return domain.OptionValue{Type: domain.OptionBoolean, Bool: o.BoolValue()}, true
	case discordgo.ApplicationCommandOptionUser:
		id, _ := o.Value.(string)
		u := &domain.User{ID: id}
		if du, ok := users[id]; ok && du != nil {
			converted := toUser(du)
			u = &converted
		}
		return domain.OptionValue{Type: domain.OptionUser, User: u}, true
	default:
		return domain.OptionValue{}, false
	}
}

func toUser(u *discordgo.User) domain.User {
	created, err := discordgo.SnowflakeTimestamp(u.ID)
	if err != nil {
		created = time.Time{}
	}

	return domain.User{
		ID:        u.ID,
		Username:  u.Username,
		Tag:       u.String(),
		AvatarURL: u.AvatarURL(avatarSize),
		Bot:       u.Bot,
		CreatedAt: created,
	}
}

func toMember(m *discordgo.Member, guildID string) *domain.Member {
	if m.GuildID != "" {
		guildID = m.GuildID
	}

	member := &domain.Member{
		GuildID:     guildID,
		JoinedAt:    m.JoinedAt,
		Roles:       m.Roles,
		Permissions: domain.Permission(m.Permissions),
	}
	if m.User != nil {
		member.User = toUser(m.User)
	}
	return member
}
