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
	unbanReason        = "Bulk unban command"
	msgBotCannotUnban  = "البوت لا يملك صلاحية إلغاء الحظر"
	msgFetchBansFailed = "فشل في جلب قائمة المحظورين"
	msgNoBans          = "لا يوجد مستخدمين محظورين"
	msgUnbanProgress   = "جاري إلغاء الحظر... (%d/%d)"
	msgUnbanned        = "تم إلغاء الحظر عن %d مستخدم"
	msgUnbanFailed     = "\n فشل في إلغاء الحظر عن %d مستخدم"
	msgUnbanError      = " حدث خطأ أثناء تنفيذ الأمر"
)

type UnbanAll struct {
	bans     port.BanStore
	executor service.BatchExecutor
}

func NewUnbanAll(bans port.BanStore, executor service.BatchExecutor) *UnbanAll {
	return &UnbanAll{bans: bans, executor: executor}
}

func (u *UnbanAll) GetCommand() string {
	return "unban"
}

func (u *UnbanAll) ErrorMessage() string {
	return msgUnbanError
}

func (u *UnbanAll) Schema() domain.CommandSchema {
	return domain.CommandSchema{
		Name:                     u.GetCommand(),
		Description:              "Unban all users",
		DefaultMemberPermissions: domain.PermissionPtr(domain.PermissionBanMembers),
		Options: []domain.OptionSchema{
			{
				Type:        domain.OptionSubcommand,
				Name:        "all",
				Description: "Unban all users",
			},
		},
	}
}

func (u *UnbanAll) Respond(ctx context.Context, interaction port.Interaction) error {
	inv := interaction.Invocation()
	if inv.Origin() != domain.Group {
		return interaction.Reply(ctx, domain.TextReply(msgGuildOnly))
	}
	if inv.Subcommand != "all" {
		return domain.NewValidationError(fmt.Sprintf("unknown subcommand %q", inv.Subcommand))
	}

	l := log.With().
		Str("interactionId", inv.ID).
		Str("guildId", inv.GuildID).
		Str("userId", inv.Invoker.ID).
		Str("command", u.GetCommand()).
		Logger()

	if err := interaction.Defer(ctx, true); err != nil {
		return err
	}

	if !inv.AppPermissions.Has(domain.PermissionBanMembers) {
		return domain.NewPermissionError(msgBotCannotUnban)
	}

	bans, err := u.bans.FetchBans(ctx, inv.GuildID)
	if err != nil {
		return domain.NewTransportError(msgFetchBansFailed, err)
	}

	if len(bans) == 0 {
		return interaction.EditFinal(ctx, domain.TextReply(msgNoBans))
	}

	l.Info().Int("bans", len(bans)).Msg("lifting bans")

	result := service.RunBatches(ctx, u.executor, bans,
		func(ctx context.Context, ban domain.Ban) error {
			if err := u.bans.Unban(ctx, inv.GuildID, ban.UserID, unbanReason); err != nil {
				return fmt.Errorf("failed to unban %s: %w", ban.UserID, err)
			}
			return nil
		},
		func(ctx context.Context, r service.BatchResult) error {
			interaction.Progress(ctx, domain.TextReply(fmt.Sprintf(msgUnbanProgress, r.Processed, r.Total)))
			return nil
		})

	l.Info().
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Int("batches", result.Batches).
		Msg("bulk unban finished")

	content := fmt.Sprintf(msgUnbanned, result.Succeeded)
	if result.Failed > 0 {
		content += fmt.Sprintf(msgUnbanFailed, result.Failed)
	}

	return interaction.EditFinal(ctx, domain.TextReply(content))
}
