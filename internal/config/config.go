package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"

	"github.com/bingbr/league-timeline/internal/notify"
	"github.com/bingbr/league-timeline/internal/riot"
)

const (
	riotAPIKeyLength    = 42
	riotAPIKeyPattern   = `^RGAPI-[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`
	defaultPlatform     = "na1"
	defaultDumpDir      = "riot_dump"
	defaultRateLimitCfg = "config.toml"
	defaultMonsterCfg   = "monsters.toml"
)

var (
	riotAPIKeyRegex = regexp.MustCompile(riotAPIKeyPattern)

	ErrMissingRiotAPIKey = errors.New("RIOT_API_KEY is not set")
)

type Config struct {
	RiotAPIKey        string
	Platform          string
	DumpDir           string
	DatabaseURL       string
	DiscordWebhookURL string
	RateLimitCfg      string
	MonsterCfg        string
	LogFile           string
	IsDev             bool
	LogLevel          slog.Level
}

// LoadDotEnv loads the first .env file found. Variables already present in
// the environment win. It reports the file that was loaded, if any.
func LoadDotEnv(paths ...string) string {
	if len(paths) == 0 {
		paths = []string{".env", "../.env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err == nil {
			return path
		}
	}
	return ""
}

// Parse reads the environment. RIOT_API_KEY is optional here so offline
// commands work without one; RequireRiotAPIKey enforces it.
func Parse() (Config, error) {
	env := strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))

	riotAPIKey := strings.TrimSpace(os.Getenv("RIOT_API_KEY"))
	if riotAPIKey != "" {
		if err := validateRiotAPIKey(riotAPIKey); err != nil {
			return Config{}, err
		}
	}

	platform := envOr("RIOT_PLATFORM", defaultPlatform)
	if riot.NormalizePlatformRegion(platform) == "" {
		return Config{}, fmt.Errorf("RIOT_PLATFORM %q is not a known platform", platform)
	}

	webhookURL := strings.TrimSpace(os.Getenv("DISCORD_WEBHOOK_URL"))
	if webhookURL != "" {
		if err := validateDiscordWebhookURL(webhookURL); err != nil {
			return Config{}, err
		}
	}

	return Config{
		RiotAPIKey:        riotAPIKey,
		Platform:          riot.NormalizePlatformRegion(platform),
		DumpDir:           envOr("DUMP_DIR", defaultDumpDir),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DiscordWebhookURL: webhookURL,
		RateLimitCfg:      envOr("RIOT_RATE_LIMIT_CONFIG", defaultRateLimitCfg),
		MonsterCfg:        envOr("MONSTER_CONFIG", defaultMonsterCfg),
		LogFile:           strings.TrimSpace(os.Getenv("LOG_FILE")),
		IsDev:             env == "dev",
		LogLevel:          inferLogLevel(env),
	}, nil
}

func (c Config) RequireRiotAPIKey() error {
	if c.RiotAPIKey == "" {
		return ErrMissingRiotAPIKey
	}
	return nil
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func inferLogLevel(appEnv string) slog.Level {
	if appEnv == "debug" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func validateRiotAPIKey(key string) error {
	if len(key) != riotAPIKeyLength {
		return fmt.Errorf("RIOT_API_KEY has invalid length %d", len(key))
	}
	if !riotAPIKeyRegex.MatchString(key) {
		return fmt.Errorf("RIOT_API_KEY format is invalid")
	}
	return nil
}

func validateDiscordWebhookURL(raw string) error {
	if _, _, err := notify.ParseWebhookURL(raw); err != nil {
		return fmt.Errorf("DISCORD_WEBHOOK_URL: %w", err)
	}
	return nil
}
