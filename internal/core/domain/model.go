package domain

import "time"

type User struct {
	ID        string
	Username  string
	Tag       string
	AvatarURL string
	Bot       bool
	CreatedAt time.Time
}

type Member struct {
	User        User
	GuildID     string
	JoinedAt    time.Time
	Roles       []string
	Permissions Permission
}

type Origin string

const (
	Direct Origin = "direct"
	Group  Origin = "group"
)

type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	CreatedAt time.Time
}

type Ban struct {
	UserID string
	Reason string
}

type Invite struct {
	Code      string
	InviterID string
	Uses      int
}

type Channel struct {
	ID   string
	Name string
	// Text is true for channels holding a message history.
	Text bool
}

type Status string

const (
	Online  Status = "online"
	Idle    Status = "idle"
	DND     Status = "dnd"
	Offline Status = "offline"
)

type Presence struct {
	Status  Status
	Desktop bool
	Mobile  bool
	Web     bool
}

// Permission mirrors the platform permission bit set.
type Permission int64

const (
	PermissionBanMembers         Permission = 1 << 2
	PermissionAdministrator      Permission = 1 << 3
	PermissionManageGuild        Permission = 1 << 5
	PermissionViewChannel        Permission = 1 << 10
	PermissionManageMessages     Permission = 1 << 13
	PermissionReadMessageHistory Permission = 1 << 16
)

// Has reports whether all bits of want are set. Administrator implies every permission.
func (p Permission) Has(want Permission) bool {
	if p&PermissionAdministrator != 0 {
		return true
	}
	return p&want == want
}

type OptionValue struct {
	Type   OptionType
	String string
	Int    int64
	Bool   bool
	User   *User
}

// Invocation is a single command event as delivered by the gateway.
type Invocation struct {
	ID string
	// TraceID correlates the log lines of one invocation across components.
	TraceID     string
	CommandName string
	Subcommand  string
	Options     map[string]OptionValue
	Invoker     User
	Member      *Member
	GuildID     string
	ChannelID   string
	// AppPermissions are the permissions the bot holds where the command was invoked.
	AppPermissions Permission
}

func (i *Invocation) Origin() Origin {
	if i.GuildID == "" {
		return Direct
	}
	return Group
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

type Embed struct {
	Title        string
	Author       string
	ThumbnailURL string
	Color        int
	Timestamp    *time.Time
	Fields       []EmbedField
	Footer       string
}

// Reply is either plain text content or a set of embeds.
type Reply struct {
	Content   string
	Embeds    []Embed
	Ephemeral bool
}

func TextReply(content string) Reply {
	return Reply{Content: content, Ephemeral: true}
}

func EmbedReply(embeds ...Embed) Reply {
	return Reply{Embeds: embeds}
}
