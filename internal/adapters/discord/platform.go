package discord

import (
	"context"
	"fmt"
	"pbpbot/internal/core/domain"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

const banPageSize = 1000

// restClient is the part of the REST session the platform adapter calls.
type restClient interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string,
		options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	GuildBans(guildID string, limit int, beforeID, afterID string,
		options ...discordgo.RequestOption) ([]*discordgo.GuildBan, error)
	GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildInvites(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Invite, error)
	GuildChannels(guildID string, options ...discordgo.RequestOption) ([]*discordgo.Channel, error)
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
}

// Platform exposes the guild data and moderation calls the commands need.
type Platform struct {
	rest    restClient
	state   *discordgo.State
	botID   func() string
	latency func() time.Duration
}

func NewPlatform(s *discordgo.Session) *Platform {
	return &Platform{
		rest:  s,
		state: s.State,
		botID: func() string {
			if s.State == nil || s.State.User == nil {
				return ""
			}
			return s.State.User.ID
		},
		latency: s.HeartbeatLatency,
	}
}

func (p *Platform) Latency() time.Duration {
	return p.latency()
}

func (p *Platform) FetchMessages(ctx context.Context, channelID string, limit int, before string) ([]domain.Message, error) {
	msgs, err := p.rest.ChannelMessages(channelID, limit, before, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	out := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		msg := domain.Message{ID: m.ID, ChannelID: m.ChannelID, CreatedAt: m.Timestamp}
		if m.Author != nil {
			msg.AuthorID = m.Author.ID
		}
		out = append(out, msg)
	}
	return out, nil
}

func (p *Platform) DeleteBulk(ctx context.Context, channelID string, messageIDs []string) error {
	if err := p.rest.ChannelMessagesBulkDelete(channelID, messageIDs, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to bulk delete %d messages: %w", len(messageIDs), err)
	}
	return nil
}

func (p *Platform) DeleteOne(ctx context.Context, channelID, messageID string) error {
	if err := p.rest.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to delete message %s: %w", messageID, err)
	}
	return nil
}

// FetchBans pages through the ban list in user id order.
func (p *Platform) FetchBans(ctx context.Context, guildID string) ([]domain.Ban, error) {
	var out []domain.Ban
	after := ""

	for {
		page, err := p.rest.GuildBans(guildID, banPageSize, "", after, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch bans: %w", err)
		}

		for _, b := range page {
			if b.User == nil {
				continue
			}
			out = append(out, domain.Ban{UserID: b.User.ID, Reason: b.Reason})
			after = b.User.ID
		}

		if len(page) < banPageSize {
			break
		}
	}

	log.Debug().Str("guildId", guildID).Int("bans", len(out)).Msg("fetched bans")
	return out, nil
}

func (p *Platform) Unban(ctx context.Context, guildID, userID, reason string) error {
	err := p.rest.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return fmt.Errorf("failed to unban %s: %w", userID, err)
	}
	return nil
}

func (p *Platform) Member(ctx context.Context, guildID, userID string) (*domain.Member, error) {
	if p.state != nil {
		if m, err := p.state.Member(guildID, userID); err == nil {
			return toMember(m, guildID), nil
		}
	}

	m, err := p.rest.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch member %s: %w", userID, err)
	}
	return toMember(m, guildID), nil
}

func (p *Platform) Invites(ctx context.Context, guildID string) ([]domain.Invite, error) {
	invites, err := p.rest.GuildInvites(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invites: %w", err)
	}

	out := make([]domain.Invite, 0, len(invites))
	for _, inv := range invites {
		i := domain.Invite{Code: inv.Code, Uses: inv.Uses}
		if inv.Inviter != nil {
			i.InviterID = inv.Inviter.ID
		}
		out = append(out, i)
	}
	return out, nil
}

// Channels keeps the text channels where the bot holds every permission in need, in guild order.
func (p *Platform) Channels(ctx context.Context, guildID string, need domain.Permission) ([]domain.Channel, error) {
	channels, err := p.rest.GuildChannels(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channels: %w", err)
	}

	botID := p.botID()
	var out []domain.Channel
	for _, ch := range channels {
		if !isTextChannel(ch.Type) {
			continue
		}

		perms, err := p.rest.UserChannelPermissions(botID, ch.ID, discordgo.WithContext(ctx))
		if err != nil {
			log.Debug().Err(err).Str("channelId", ch.ID).Msg("failed to resolve channel permissions")
			continue
		}
		if !domain.Permission(perms).Has(need) {
			continue
		}

		out = append(out, domain.Channel{ID: ch.ID, Name: ch.Name, Text: true})
	}
	return out, nil
}

func (p *Platform) Presence(_ context.Context, guildID, userID string) *domain.Presence {
	if p.state == nil {
		return nil
	}

	pr, err := p.state.Presence(guildID, userID)
	if err != nil || pr == nil {
		return nil
	}

	return toPresence(pr)
}

func toPresence(pr *discordgo.Presence) *domain.Presence {
	status := domain.Offline
	switch pr.Status {
	case discordgo.StatusOnline:
		status = domain.Online
	case discordgo.StatusIdle:
		status = domain.Idle
	case discordgo.StatusDoNotDisturb:
		status = domain.DND
	}

	return &domain.Presence{
		Status:  status,
		Desktop: pr.ClientStatus.Desktop != "" && pr.ClientStatus.Desktop != discordgo.StatusOffline,
		Mobile:  pr.ClientStatus.Mobile != "" && pr.ClientStatus.Mobile != discordgo.StatusOffline,
		Web:     pr.ClientStatus.Web != "" && pr.ClientStatus.Web != discordgo.StatusOffline,
	}
}

func isTextChannel(t discordgo.ChannelType) bool {
	return t == discordgo.ChannelTypeGuildText || t == discordgo.ChannelTypeGuildNews
}
