package service

import (
	"errors"
	"testing"

	"pbpbot/internal/core/domain"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewAuthorizer(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		wantErr  bool
		expected []string
	}{
		{
			name: "loads allowed guild IDs",
			setup: func() {
				viper.Set("discord.allowed_guild_ids", []string{"1", "2", "3"})
			},
			wantErr:  false,
			expected: []string{"1", "2", "3"},
		},
		{
			name: "invalid type returns error",
			setup: func() {
				viper.Set("discord.allowed_guild_ids", map[string]int{"a": 1})
			},
			wantErr: true,
		},
		{
			name:     "unset list admits everyone",
			setup:    func() {},
			wantErr:  false,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper between tests
			viper.Reset()
			tt.setup()
			auth, err := NewAuthorizer()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, auth)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, auth)
				assert.Equal(t, tt.expected, auth.allowlist)
			}
		})
	}
	viper.Reset()
}

func TestGuildAuthorizer_IsAuthorized(t *testing.T) {
	tests := []struct {
		name       string
		allowlist  []string
		guildID    string
		sendErr    error
		want       bool
		expectSend bool
	}{
		{
			name:      "empty allowlist admits any guild",
			allowlist: nil,
			guildID:   "123",
			want:      true,
		},
		{
			name:      "guild is allowed",
			allowlist: []string{"123", "456"},
			guildID:   "123",
			want:      true,
		},
		{
			name:      "direct messages are allowed",
			allowlist: []string{"123"},
			guildID:   "",
			want:      true,
		},
		{
			name:       "guild not allowed sends message",
			allowlist:  []string{"111", "222"},
			guildID:    "333",
			want:       false,
			expectSend: true,
		},
		{
			name:       "send failure still denies",
			allowlist:  []string{"999"},
			guildID:    "888",
			sendErr:    errors.New("send failed"),
			want:       false,
			expectSend: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := new(MockResponder)
			if tt.expectSend {
				r.On("Reply", mock.Anything, domain.TextReply(forbidden)).Return(tt.sendErr).Once()
			}
			i := NewInteraction(&domain.Invocation{ID: "1", CommandName: "ping", GuildID: tt.guildID}, r)

			a := &GuildAuthorizer{allowlist: tt.allowlist}
			got := a.IsAuthorized(t.Context(), i)

			assert.Equal(t, tt.want, got)
			r.AssertExpectations(t)
			if !tt.expectSend {
				r.AssertNotCalled(t, "Reply", mock.Anything, mock.Anything)
			}
		})
	}
}
