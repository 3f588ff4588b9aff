package command

import (
	"context"
	"pbpbot/internal/core/domain"
	"pbpbot/internal/core/port"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/iter"
)

const (
	colorOnline  = 0x43B581
	colorIdle    = 0xFAA61A
	colorDND     = 0xF04747
	colorOffline = 0x747F8D

	dateLayout          = "02/01/2006"
	countedChannels     = 5
	msgUserLookupFailed = "حدث خطأ أثناء جلب المعلومات"
)

var statusColors = map[domain.Status]int{
	domain.Online:  colorOnline,
	domain.Idle:    colorIdle,
	domain.DND:     colorDND,
	domain.Offline: colorOffline,
}

type UserInfo struct {
	directory port.GuildDirectory
	messages  port.MessageStore
}

func NewUserInfo(directory port.GuildDirectory, messages port.MessageStore) *UserInfo {
	return &UserInfo{directory: directory, messages: messages}
}

func (u *UserInfo) GetCommand() string {
	return "user"
}

func (u *UserInfo) ErrorMessage() string {
	return msgUserLookupFailed
}

func (u *UserInfo) Schema() domain.CommandSchema {
	return domain.CommandSchema{
		Name:        u.GetCommand(),
		Description: "عرض معلومات المستخدم",
		Options: []domain.OptionSchema{
			{
				Type:        domain.OptionUser,
				Name:        "user",
				Description: "المستخدم المراد عرض معلوماته",
			},
		},
	}
}

func (u *UserInfo) Respond(ctx context.Context, interaction port.Interaction) error {
	if err := interaction.Defer(ctx, false); err != nil {
		return err
	}

	inv := interaction.Invocation()
	target := &inv.Invoker
	if user, ok := interaction.User("user"); ok {
		target = user
	}

	embed := domain.Embed{
		Author:       target.Tag,
		ThumbnailURL: target.AvatarURL,
		Color:        colorOffline,
		Fields: []domain.EmbedField{
			{Name: "تاريخ الإنشاء", Value: target.CreatedAt.UTC().Format(dateLayout), Inline: true},
		},
	}

	if inv.Origin() == domain.Group {
		u.addGuildFields(ctx, inv, target, &embed)
	}

	return interaction.EditFinal(ctx, domain.EmbedReply(embed))
}

func (u *UserInfo) addGuildFields(ctx context.Context, inv *domain.Invocation, target *domain.User, embed *domain.Embed) {
	l := log.With().
		Str("interactionId", inv.ID).
		Str("guildId", inv.GuildID).
		Str("targetId", target.ID).
		Str("command", u.GetCommand()).
		Logger()

	member, err := u.directory.Member(ctx, inv.GuildID, target.ID)
	if err != nil {
		l.Debug().Err(err).Msg("target is not a guild member")
	}

	presence := u.directory.Presence(ctx, inv.GuildID, target.ID)

	if member != nil {
		roles := 0
		for _, id := range member.Roles {
			if id != inv.GuildID {
				roles++
			}
		}

		embed.Fields = append(embed.Fields,
			domain.EmbedField{Name: "تاريخ الانضمام", Value: member.JoinedAt.UTC().Format(dateLayout), Inline: true},
			domain.EmbedField{Name: "الرتب", Value: strconv.Itoa(roles), Inline: true},
		)

		if inv.AppPermissions.Has(domain.PermissionManageGuild) {
			if invites, err := u.directory.Invites(ctx, inv.GuildID); err != nil {
				l.Debug().Err(err).Msg("failed to fetch invites")
			} else {
				embed.Fields = append(embed.Fields,
					domain.EmbedField{Name: "الدعوات", Value: strconv.Itoa(inviteUses(invites, target.ID)), Inline: true})
			}
		}

		if inv.AppPermissions.Has(domain.PermissionReadMessageHistory) {
			if count := u.countMessages(ctx, inv.GuildID, target.ID); count > 0 {
				embed.Fields = append(embed.Fields,
					domain.EmbedField{Name: "الرسائل", Value: strconv.Itoa(count), Inline: true})
			}
		}
	}

	if presence != nil {
		if platforms := presencePlatforms(presence); platforms != "" {
			embed.Fields = append(embed.Fields, domain.EmbedField{Name: "المنصة", Value: platforms, Inline: true})
		}
	}

	if member != nil && presence != nil {
		if color, ok := statusColors[presence.Status]; ok {
			embed.Color = color
		}
	}
}

func inviteUses(invites []domain.Invite, userID string) int {
	total := 0
	for _, inv := range invites {
		if inv.InviterID == userID {
			total += inv.Uses
		}
	}
	return total
}

func presencePlatforms(p *domain.Presence) string {
	var platforms []string
	if p.Desktop {
		platforms = append(platforms, "كمبيوتر")
	}
	if p.Mobile {
		platforms = append(platforms, "جوال")
	}
	if p.Web {
		platforms = append(platforms, "متصفح")
	}
	return strings.Join(platforms, ", ")
}

// countMessages counts the target's messages in the latest page of the first readable channels. A
// channel that cannot be read counts as zero.
func (u *UserInfo) countMessages(ctx context.Context, guildID, userID string) int {
	channels, err := u.directory.Channels(ctx, guildID, domain.PermissionViewChannel|domain.PermissionReadMessageHistory)
	if err != nil {
		log.Debug().Err(err).Str("guildId", guildID).Msg("failed to list channels")
		return 0
	}
	if len(channels) > countedChannels {
		channels = channels[:countedChannels]
	}

	counts := iter.Map(channels, func(ch *domain.Channel) int {
		page, err := u.messages.FetchMessages(ctx, ch.ID, 100, "")
		if err != nil {
			return 0
		}
		n := 0
		for _, m := range page {
			if m.AuthorID == userID {
				n++
			}
		}
		return n
	})

	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}
