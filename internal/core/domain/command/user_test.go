package command

import (
	"pbpbot/internal/core/domain"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	created = time.Date(2019, 3, 7, 15, 0, 0, 0, time.UTC)
	joined  = time.Date(2022, 11, 30, 8, 0, 0, 0, time.UTC)
)

func fieldMap(e domain.Embed) map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Name] = f.Value
	}
	return out
}

func TestUserInfoDirectMessage(t *testing.T) {
	u := NewUserInfo(&MockDirectory{}, newMockMessages())
	i, r := newTestInteraction(&domain.Invocation{
		CommandName: "user",
		Invoker:     domain.User{ID: "u1", Tag: "alice", AvatarURL: "https://cdn/a.png?size=512", CreatedAt: created},
	})

	require.NoError(t, u.Respond(t.Context(), i))

	assert.Equal(t, []string{"defer", "edit"}, r.kinds())
	assert.False(t, r.ephemeral)

	embeds := r.last().Embeds
	require.Len(t, embeds, 1)
	assert.Equal(t, "alice", embeds[0].Author)
	assert.Equal(t, "https://cdn/a.png?size=512", embeds[0].ThumbnailURL)
	assert.Equal(t, colorOffline, embeds[0].Color)
	assert.Equal(t, map[string]string{"تاريخ الإنشاء": "07/03/2019"}, fieldMap(embeds[0]))
}

func TestUserInfoGuildMember(t *testing.T) {
	store := newMockMessages()
	store.fill("c1", "u2", 3)
	store.fill("c2", "u2", 2)
	store.fill("c6", "u2", 9)
	store.fetchErrs["c3"] = assert.AnError

	dir := &MockDirectory{
		members: map[string]*domain.Member{
			"u2": {User: domain.User{ID: "u2"}, JoinedAt: joined, Roles: []string{"g1", "r1", "r2"}},
		},
		invites: []domain.Invite{
			{Code: "a", InviterID: "u2", Uses: 4},
			{Code: "b", InviterID: "u9", Uses: 10},
			{Code: "c", InviterID: "u2", Uses: 1},
		},
		channels: []domain.Channel{{ID: "c1"}, {ID: "c2"}, {ID: "c3"}, {ID: "c4"}, {ID: "c5"}, {ID: "c6"}},
		presences: map[string]*domain.Presence{
			"u2": {Status: domain.DND, Desktop: true, Web: true},
		},
	}

	u := NewUserInfo(dir, store)
	i, r := newTestInteraction(&domain.Invocation{
		CommandName:    "user",
		GuildID:        "g1",
		Invoker:        domain.User{ID: "u1"},
		AppPermissions: domain.PermissionManageGuild | domain.PermissionReadMessageHistory,
		Options: map[string]domain.OptionValue{
			"user": userOpt(domain.User{ID: "u2", Tag: "bob", CreatedAt: created}),
		},
	})

	require.NoError(t, u.Respond(t.Context(), i))

	embed := r.last().Embeds[0]
	assert.Equal(t, "bob", embed.Author)
	assert.Equal(t, colorDND, embed.Color)
	assert.Equal(t, map[string]string{
		"تاريخ الإنشاء":  "07/03/2019",
		"تاريخ الانضمام": "30/11/2022",
		"الرتب":          "2",
		"الدعوات":        "5",
		"الرسائل":        "5",
		"المنصة":         "كمبيوتر, متصفح",
	}, fieldMap(embed))
}

func TestUserInfoGuildWithoutPermissions(t *testing.T) {
	dir := &MockDirectory{
		members: map[string]*domain.Member{
			"u1": {User: domain.User{ID: "u1"}, JoinedAt: joined},
		},
	}

	u := NewUserInfo(dir, newMockMessages())
	i, r := newTestInteraction(&domain.Invocation{
		CommandName: "user",
		GuildID:     "g1",
		Invoker:     domain.User{ID: "u1", Tag: "alice", CreatedAt: created},
	})

	require.NoError(t, u.Respond(t.Context(), i))

	embed := r.last().Embeds[0]
	assert.Equal(t, colorOffline, embed.Color, "members without presence show as offline")
	fields := fieldMap(embed)
	assert.Len(t, fields, 3)
	assert.Equal(t, "0", fields["الرتب"])
	assert.NotContains(t, fields, "الدعوات")
	assert.NotContains(t, fields, "الرسائل")
}
