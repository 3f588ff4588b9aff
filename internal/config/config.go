package config

import (
	"errors"
	"fmt"
	"pbpbot/internal/core/service"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var ErrMissingSecret = errors.New("missing required secret")

type Config struct {
	Token    string
	ClientID string

	LogLevel   zerolog.Level
	PrettyLogs bool

	HandlerTimeout time.Duration

	ShortURLEndpoint string
	ShortURLCooldown time.Duration
	ShortURLRetry    service.RetryPolicy

	AccountTimeout time.Duration
	AccountRetry   service.RetryPolicy

	Unban service.BatchExecutor
	Purge Purge
}

type Purge struct {
	PageDelay     time.Duration
	SingleDelay   time.Duration
	OldAtBoundary bool
	SharedBudget  bool
}

func setDefaults() {
	viper.SetDefault("bot.log_level", "info")
	viper.SetDefault("bot.pretty_logs", false)

	viper.SetDefault("handler.timeout", "15m")

	viper.SetDefault("shorturl.endpoint", "https://tinyurl.com/api-create.php")
	viper.SetDefault("shorturl.cooldown", "3m")
	viper.SetDefault("shorturl.timeout", "10s")
	viper.SetDefault("shorturl.attempts", 3)
	viper.SetDefault("shorturl.retry_delay", "1s")

	viper.SetDefault("apidetails.timeout", "10s")
	viper.SetDefault("apidetails.attempts", 2)
	viper.SetDefault("apidetails.retry_delay", "1s")

	viper.SetDefault("unban.batch_size", 5)
	viper.SetDefault("unban.batch_delay", "1s")
	viper.SetDefault("unban.progress_every", 2)

	viper.SetDefault("purge.page_delay", "500ms")
	viper.SetDefault("purge.single_delay", "1s")
	viper.SetDefault("purge.old_at_boundary", true)
	viper.SetDefault("purge.shared_budget", false)
}

// Load reads .env, then an optional config.toml from dir, then the environment. The bot token and
// client id are required.
func Load(dir string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	viper.AddConfigPath(dir)
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	setDefaults()

	if err := viper.BindEnv("discord.token", "TOKEN"); err != nil {
		return nil, err
	}
	if err := viper.BindEnv("discord.client_id", "CLIENTID"); err != nil {
		return nil, err
	}

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
		log.Info().Msg("no config file found, using defaults")
	}

	cfg := &Config{
		Token:      viper.GetString("discord.token"),
		ClientID:   viper.GetString("discord.client_id"),
		LogLevel:   logLevel(viper.GetString("bot.log_level")),
		PrettyLogs: viper.GetBool("bot.pretty_logs"),

		HandlerTimeout: viper.GetDuration("handler.timeout"),

		ShortURLEndpoint: viper.GetString("shorturl.endpoint"),
		ShortURLCooldown: viper.GetDuration("shorturl.cooldown"),
		ShortURLRetry: service.RetryPolicy{
			Timeout:     viper.GetDuration("shorturl.timeout"),
			MaxAttempts: viper.GetInt("shorturl.attempts"),
			Delay:       viper.GetDuration("shorturl.retry_delay"),
			Linear:      true,
		},

		AccountTimeout: viper.GetDuration("apidetails.timeout"),
		AccountRetry: service.RetryPolicy{
			Timeout:     viper.GetDuration("apidetails.timeout"),
			MaxAttempts: viper.GetInt("apidetails.attempts"),
			Delay:       viper.GetDuration("apidetails.retry_delay"),
		},

		Unban: service.BatchExecutor{
			BatchSize:     viper.GetInt("unban.batch_size"),
			Delay:         viper.GetDuration("unban.batch_delay"),
			ProgressEvery: viper.GetInt("unban.progress_every"),
		},
		Purge: Purge{
			PageDelay:     viper.GetDuration("purge.page_delay"),
			SingleDelay:   viper.GetDuration("purge.single_delay"),
			OldAtBoundary: viper.GetBool("purge.old_at_boundary"),
			SharedBudget:  viper.GetBool("purge.shared_budget"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Token == "" {
		return fmt.Errorf("%w: TOKEN", ErrMissingSecret)
	}
	if c.ClientID == "" {
		return fmt.Errorf("%w: CLIENTID", ErrMissingSecret)
	}
	if c.HandlerTimeout <= 0 {
		return errors.New("handler.timeout must be positive")
	}
	if c.Unban.BatchSize < 1 {
		return errors.New("unban.batch_size must be at least 1")
	}
	return nil
}

func logLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
