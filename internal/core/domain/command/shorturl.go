package command

import (
	"context"
	"errors"
	"fmt"
	"math"
	"pbpbot/internal/core/domain"
	"pbpbot/internal/core/port"
	"pbpbot/internal/core/service"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

var urlPattern = regexp.MustCompile(
	`^https?://(www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b([-a-zA-Z0-9()@:%_+.~#?&/=]*)$`)

var nsfwDomains = []string{
	"pornhub.com", "xvideos.com", "xnxx.com", "redtube.com", "youporn.com",
	"tube8.com", "spankbang.com", "xhamster.com", "beeg.com", "sex.com",
	"porn.com", "xxx.com", "adult.com", "chaturbate.com", "cam4.com",
	"livejasmin.com", "stripchat.com", "bongacams.com", "camsoda.com",
	"onlyfans.com", "manyvids.com", "clips4sale.com",
}

var nsfwKeywords = []string{
	"porn", "xxx", "sex", "nude", "naked", "adult", "nsfw", "erotic", "hotgirl", "pussy",
}

const (
	msgInvalidURL         = "Invalid URL format"
	msgNSFW               = "NSFW content not allowed"
	msgCooldown           = "Cooldown active. %d minutes remaining"
	msgServiceUnavailable = "Service unavailable"
	msgServiceError       = "Service error"
)

var errShortenerRejected = errors.New("shortener rejected the url")

type ShortURL struct {
	shortener port.URLShortener
	cooldown  *service.Cooldown
	policy    service.RetryPolicy
}

func NewShortURL(shortener port.URLShortener, cooldown *service.Cooldown, policy service.RetryPolicy) *ShortURL {
	return &ShortURL{
		shortener: shortener,
		cooldown:  cooldown,
		policy:    policy,
	}
}

func (s *ShortURL) GetCommand() string {
	return "shorturl"
}

func (s *ShortURL) ErrorMessage() string {
	return msgServiceError
}

func (s *ShortURL) Schema() domain.CommandSchema {
	return domain.CommandSchema{
		Name:        s.GetCommand(),
		Description: "Make ur url link short",
		Options: []domain.OptionSchema{
			{
				Type:        domain.OptionString,
				Name:        "url",
				Description: "put ur url",
				Required:    true,
				MinLength:   domain.IntPtr(3),
				MaxLength:   400,
			},
			{
				Type:        domain.OptionString,
				Name:        "alias",
				Description: "put the alias",
				MinLength:   domain.IntPtr(3),
				MaxLength:   80,
			},
		},
	}
}

func ValidURL(url string) bool {
	return urlPattern.MatchString(url)
}

// IsNSFW matches the lowercased url against the blocked domains and keywords as plain substrings.
func IsNSFW(url string) bool {
	lower := strings.ToLower(url)
	for _, d := range nsfwDomains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	for _, k := range nsfwKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func (s *ShortURL) Respond(ctx context.Context, interaction port.Interaction) error {
	inv := interaction.Invocation()
	l := log.With().
		Str("interactionId", inv.ID).
		Str("userId", inv.Invoker.ID).
		Str("command", s.GetCommand()).
		Logger()

	url, _ := interaction.String("url")
	alias, _ := interaction.String("alias")

	if url == "" || !ValidURL(url) {
		return interaction.Reply(ctx, domain.TextReply(msgInvalidURL))
	}

	if IsNSFW(url) {
		l.Info().Msg("blocked nsfw url")
		return interaction.Reply(ctx, domain.TextReply(msgNSFW))
	}

	s.cooldown.Sweep()
	status, release := s.cooldown.Reserve(inv.Invoker.ID)
	if release == nil {
		minutes := int(math.Ceil(status.Remaining.Minutes()))
		return interaction.Reply(ctx, domain.TextReply(fmt.Sprintf(msgCooldown, minutes)))
	}

	succeeded := false
	defer func() { release(succeeded) }()

	if err := interaction.Defer(ctx, true); err != nil {
		return err
	}

	short, err := service.Call(ctx, s.policy, func(ctx context.Context) (string, error) {
		result, err := s.shortener.Shorten(ctx, url, alias)
		if err != nil {
			return "", err
		}
		if strings.Contains(strings.ToLower(result), "error") {
			return "", service.Permanent(fmt.Errorf("%w: %s", errShortenerRejected, result))
		}
		return result, nil
	})
	if err != nil {
		return domain.NewTransportError(msgServiceUnavailable, err)
	}

	succeeded = true
	l.Info().Str("short", short).Msg("shortened url")

	return interaction.EditFinal(ctx, domain.TextReply(short))
}
