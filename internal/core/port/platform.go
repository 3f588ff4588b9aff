package port

import (
	"context"
	"pbpbot/internal/core/domain"
	"time"
)

type MessageStore interface {
	// FetchMessages returns up to limit messages of a channel, newest first, older than before when set.
	FetchMessages(ctx context.Context, channelID string, limit int, before string) ([]domain.Message, error)
	// DeleteBulk removes several recent messages in one call.
	DeleteBulk(ctx context.Context, channelID string, messageIDs []string) error
	// DeleteOne removes a single message.
	DeleteOne(ctx context.Context, channelID, messageID string) error
}

type BanStore interface {
	// FetchBans returns every ban of a guild.
	FetchBans(ctx context.Context, guildID string) ([]domain.Ban, error)
	// Unban lifts the ban of a single user with an audit log reason.
	Unban(ctx context.Context, guildID, userID, reason string) error
}

type GuildDirectory interface {
	// Member returns the member record of a user, or an error when the user is not in the guild.
	Member(ctx context.Context, guildID, userID string) (*domain.Member, error)
	// Invites lists the active invites of a guild.
	Invites(ctx context.Context, guildID string) ([]domain.Invite, error)
	// Channels lists the text channels where the bot holds all the given permissions.
	Channels(ctx context.Context, guildID string, need domain.Permission) ([]domain.Channel, error)
	// Presence returns the cached presence of a member, nil when unknown.
	Presence(ctx context.Context, guildID, userID string) *domain.Presence
}

type Gateway interface {
	// Latency is the last measured heartbeat round trip.
	Latency() time.Duration
}
