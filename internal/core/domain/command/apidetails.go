package command

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"pbpbot/internal/core/domain"
	"pbpbot/internal/core/port"
	"pbpbot/internal/core/service"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	msgCredentialsRequired = "API URL and key required"
	msgInvalidAPIKey       = "Invalid API key format"
	msgAuthentication      = "Authentication None"
	msgRequestTimeout      = "Request timeout"
	msgInvalidResponse     = "Invalid response format"
	msgServiceMissing      = "Service not executed/exist"

	accountTitle  = "API Account Details"
	accountColor  = 0x2F3136
	accountFooter = "Bot team is not responsible for any misuse or privacy violations. No data is stored."

	minAPIKeyLength = 8
	notAvailable    = "N/A"
)

type valueFormat int

const (
	formatText valueFormat = iota
	formatCurrency
	formatNumber
	formatDate
)

// accountField reads the first truthy key of the account document. Providers name the same figure
// differently, so every field lists the spellings seen in the wild.
type accountField struct {
	name     string
	keys     []string
	format   valueFormat
	fallback any
}

var accountFields = []accountField{
	{name: "Budget", keys: []string{"budget", "balance", "credit"}, format: formatCurrency},
	{name: "Limit", keys: []string{"limit", "quota", "max_requests"}, format: formatNumber},
	{name: "Used", keys: []string{"used", "usage", "requests_made"}, format: formatNumber},
	{name: "Remaining", keys: []string{"remaining", "left"}, format: formatNumber},
	{name: "Reset Date", keys: []string{"reset_date", "renewal_date", "expires"}, format: formatDate},
	{name: "Status", keys: []string{"status", "state"}, format: formatText, fallback: "Active"},
	{name: "Plan", keys: []string{"plan", "tier"}, format: formatText},
}

var printer = message.NewPrinter(language.English)

type APIDetails struct {
	fetcher port.AccountFetcher
	policy  service.RetryPolicy
	now     func() time.Time
}

func NewAPIDetails(fetcher port.AccountFetcher, policy service.RetryPolicy) *APIDetails {
	return &APIDetails{fetcher: fetcher, policy: policy, now: time.Now}
}

func (a *APIDetails) GetCommand() string {
	return "apidetails"
}

func (a *APIDetails) ErrorMessage() string {
	return msgServiceMissing
}

func (a *APIDetails) Schema() domain.CommandSchema {
	return domain.CommandSchema{
		Name:        a.GetCommand(),
		Description: "Display API account details",
		Options: []domain.OptionSchema{
			{Type: domain.OptionString, Name: "url", Description: "API endpoint URL", Required: true},
			{Type: domain.OptionString, Name: "key", Description: "API key", Required: true},
		},
	}
}

func validateCredentials(apiURL, apiKey string) error {
	if apiURL == "" || apiKey == "" {
		return domain.NewValidationError(msgCredentialsRequired)
	}

	u, err := url.Parse(apiURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.NewValidationError(msgInvalidURL)
	}

	if len(apiKey) < minAPIKeyLength {
		return domain.NewValidationError(msgInvalidAPIKey)
	}

	return nil
}

func (a *APIDetails) Respond(ctx context.Context, interaction port.Interaction) error {
	inv := interaction.Invocation()
	l := log.With().
		Str("interactionId", inv.ID).
		Str("userId", inv.Invoker.ID).
		Str("command", a.GetCommand()).
		Logger()

	apiURL, _ := interaction.String("url")
	apiKey, _ := interaction.String("key")

	if err := validateCredentials(apiURL, apiKey); err != nil {
		return interaction.Reply(ctx, domain.TextReply(domain.UserMessage(err, msgServiceMissing)))
	}

	if err := interaction.Defer(ctx, true); err != nil {
		return err
	}

	account, err := service.Call(ctx, a.policy, func(ctx context.Context) (map[string]any, error) {
		return a.fetcher.FetchAccount(ctx, apiURL, apiKey)
	})
	if err != nil {
		// the key is never logged
		l.Warn().Err(err).Msg("failed to fetch account details")
		return interaction.EditFinal(ctx, domain.TextReply(accountErrorMessage(ctx, err)))
	}

	return interaction.EditFinal(ctx, domain.EmbedReply(a.accountEmbed(account)))
}

func accountErrorMessage(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, domain.ErrUnexpectedStatus):
		return msgAuthentication
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return msgRequestTimeout
	case errors.Is(err, domain.ErrInvalidResponse):
		return msgInvalidResponse
	default:
		return msgServiceMissing
	}
}

func (a *APIDetails) accountEmbed(account map[string]any) domain.Embed {
	now := a.now()
	embed := domain.Embed{
		Title:     accountTitle,
		Color:     accountColor,
		Timestamp: &now,
		Footer:    accountFooter,
	}

	for _, f := range accountFields {
		v := firstTruthy(account, f.keys)
		if v == nil {
			v = f.fallback
		}

		value := formatAccountValue(v, f.format)
		if value == notAvailable {
			continue
		}
		embed.Fields = append(embed.Fields, domain.EmbedField{Name: f.name, Value: value, Inline: true})
	}

	return embed
}

// firstTruthy returns the first value that is neither absent, null, false, zero nor empty.
func firstTruthy(doc map[string]any, keys []string) any {
	for _, k := range keys {
		switch v := doc[k].(type) {
		case nil:
			continue
		case bool:
			if v {
				return v
			}
		case float64:
			if v != 0 {
				return v
			}
		case string:
			if v != "" {
				return v
			}
		default:
			return v
		}
	}
	return nil
}

func formatAccountValue(v any, format valueFormat) string {
	if v == nil {
		return notAvailable
	}

	n, isNumber := v.(float64)

	switch format {
	case formatCurrency:
		if isNumber {
			return fmt.Sprintf("$%.2f", n)
		}
	case formatNumber:
		if isNumber {
			return printer.Sprint(number.Decimal(n, number.MaxFractionDigits(3)))
		}
	case formatDate:
		if t, ok := parseAccountDate(v); ok {
			return t.UTC().Format("1/2/2006")
		}
	}

	return fmt.Sprint(v)
}

var accountDateLayouts = []string{time.RFC3339Nano, time.DateTime, time.DateOnly}

// parseAccountDate accepts the common string layouts and millisecond epoch numbers.
func parseAccountDate(v any) (time.Time, bool) {
	switch d := v.(type) {
	case float64:
		return time.UnixMilli(int64(d)), true
	case string:
		for _, layout := range accountDateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
