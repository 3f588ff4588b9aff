package command

import (
	"context"
	"fmt"
	"pbpbot/internal/core/domain"
	"pbpbot/internal/core/port"
	"pbpbot/internal/core/service"

	"github.com/rs/zerolog/log"
)

const (
	maxPurgeChannels     = 50
	purgeProgressEvery   = 5
	defaultPurgeCount    = 100
	defaultPurgeReason   = "غير محدد"
	msgGuildOnly         = "هذا الأمر متاح داخل السيرفرات فقط"
	msgNoPurgePermission = "ليس لديك صلاحية لمسح رسائل الآخرين"
	msgBotCannotPurge    = "البوت لا يملك صلاحية مسح الرسائل"
	msgPurgeProgress     = "جاري المسح... تم مسح %d رسالة من %d قناة"
	msgPurgedSelf        = "تم مسح %d رسالة من رسائلك"
	msgPurgedOther       = "تم مسح %d رسالة من %s\nالسبب: %s"
	msgPurgeError        = "حدث خطأ أثناء مسح الرسائل"
)

// purgeChannelPermissions are the bot permissions needed to scan and clean a channel.
const purgeChannelPermissions = domain.PermissionViewChannel |
	domain.PermissionReadMessageHistory |
	domain.PermissionManageMessages

type UClear struct {
	directory port.GuildDirectory
	purger    *service.Purger

	// SharedBudget spends count once across all channels. By default every channel gets the full count.
	SharedBudget bool
}

func NewUClear(directory port.GuildDirectory, purger *service.Purger) *UClear {
	return &UClear{directory: directory, purger: purger}
}

func (u *UClear) GetCommand() string {
	return "uclear"
}

func (u *UClear) ErrorMessage() string {
	return msgPurgeError
}

func (u *UClear) Schema() domain.CommandSchema {
	return domain.CommandSchema{
		Name:        u.GetCommand(),
		Description: "مسح رسائل المستخدم",
		Options: []domain.OptionSchema{
			{
				Type:        domain.OptionInteger,
				Name:        "count",
				Description: "عدد الرسائل المراد مسحها",
				Required:    true,
				MinValue:    domain.FloatPtr(1),
			},
			{
				Type:        domain.OptionUser,
				Name:        "user",
				Description: "المستخدم المراد مسح رسائله",
			},
			{
				Type:        domain.OptionString,
				Name:        "reason",
				Description: "سبب المسح",
			},
		},
	}
}

func (u *UClear) Respond(ctx context.Context, interaction port.Interaction) error {
	inv := interaction.Invocation()
	if inv.Origin() != domain.Group {
		return interaction.Reply(ctx, domain.TextReply(msgGuildOnly))
	}

	target := &inv.Invoker
	if user, ok := interaction.User("user"); ok {
		target = user
	}
	reason, ok := interaction.String("reason")
	if !ok || reason == "" {
		reason = defaultPurgeReason
	}
	count, ok := interaction.Int("count")
	if !ok || count < 1 {
		count = defaultPurgeCount
	}

	l := log.With().
		Str("interactionId", inv.ID).
		Str("guildId", inv.GuildID).
		Str("userId", inv.Invoker.ID).
		Str("targetId", target.ID).
		Int64("count", count).
		Str("command", u.GetCommand()).
		Logger()

	isSelf := target.ID == inv.Invoker.ID
	var callerPerms domain.Permission
	if inv.Member != nil {
		callerPerms = inv.Member.Permissions
	}

	if !isSelf && !callerPerms.Has(domain.PermissionManageMessages) {
		return domain.NewPermissionError(msgNoPurgePermission)
	}
	if !inv.AppPermissions.Has(domain.PermissionManageMessages) {
		return domain.NewPermissionError(msgBotCannotPurge)
	}

	if err := interaction.Defer(ctx, true); err != nil {
		return err
	}

	channels, err := u.directory.Channels(ctx, inv.GuildID, purgeChannelPermissions)
	if err != nil {
		return fmt.Errorf("failed to list channels: %w", err)
	}
	if len(channels) > maxPurgeChannels {
		channels = channels[:maxPurgeChannels]
	}

	l.Info().Int("channels", len(channels)).Msg("purging messages")

	deleted, processed := 0, 0
	for _, ch := range channels {
		if ctx.Err() != nil {
			break
		}
		remaining := int(count)
		if u.SharedBudget {
			remaining -= deleted
			if remaining <= 0 {
				break
			}
		}
		processed++

		res, err := u.purger.Purge(ctx, ch.ID, target.ID, remaining)
		deleted += res.Deleted
		if err != nil {
			l.Warn().Err(err).Str("channelId", ch.ID).Msg("failed to purge channel")
		}

		if processed%purgeProgressEvery == 0 {
			interaction.Progress(ctx, domain.TextReply(fmt.Sprintf(msgPurgeProgress, deleted, processed)))
		}
	}

	l.Info().Int("deleted", deleted).Int("channels", processed).Msg("purge finished")

	if isSelf {
		return interaction.EditFinal(ctx, domain.TextReply(fmt.Sprintf(msgPurgedSelf, deleted)))
	}
	return interaction.EditFinal(ctx, domain.TextReply(fmt.Sprintf(msgPurgedOther, deleted, target.Tag, reason)))
}
