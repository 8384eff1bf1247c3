package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DatabaseDSN string `env:"DATABASE_URI"`
	AuthSecret  string `env:"AUTH_SECRET"`
	RedisURL    string `env:"REDIS_URL"`

	// Flagging: пороги по умолчанию и TTL кэша списка
	FlaggedCacheTTL      time.Duration `env:"FLAGGED_CACHE_TTL"`
	FlagMinVotes         int           `env:"FLAG_MIN_VOTES"`
	FlagMinDownvoteRatio float64       `env:"FLAG_MIN_DOWNVOTE_RATIO"`
	FlagDaysBack         int           `env:"FLAG_DAYS_BACK"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL string `env:"-"`
	TokenFile string `env:"TOKEN_FILE"`
	Version   bool   `env:"-"` // show client version and exit (flag only)
}

// DevAuthSecret — секрет для локальной разработки. С ним любой может выпустить
// токен модератора, поэтому сервер предупреждает о нём при старте.
const DevAuthSecret = "dev-secret-key"

// значения по умолчанию для flagging
const (
	DefaultFlaggedCacheTTL      = 30 * time.Second
	DefaultFlagMinVotes         = 3
	DefaultFlagMinDownvoteRatio = 0.6
	DefaultFlagDaysBack         = 30
)

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{FlaggedCacheTTL: -1, FlagMinVotes: -1, FlagMinDownvoteRatio: -1, FlagDaysBack: -1}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (postgres:// или путь к sqlite)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "redis URL для кэша flagged-списка (пусто — кэш в памяти)")
	flag.DurationVar(&cfg.FlaggedCacheTTL, "flagged-ttl", cfg.FlaggedCacheTTL, "TTL кэша flagged-списка (0 — без кэша)")
	flag.IntVar(&cfg.FlagMinVotes, "flag-min-votes", cfg.FlagMinVotes, "минимум голосов для попадания в flagged")
	flag.Float64Var(&cfg.FlagMinDownvoteRatio, "flag-min-ratio", cfg.FlagMinDownvoteRatio, "минимальная доля downvote")
	flag.IntVar(&cfg.FlagDaysBack, "flag-days-back", cfg.FlagDaysBack, "окно свежих downvote в днях")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "address of the ModPlanner server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	// Defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = DevAuthSecret
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "modplanner.db"
	}
	if cfg.FlaggedCacheTTL < 0 {
		cfg.FlaggedCacheTTL = DefaultFlaggedCacheTTL
	}
	if cfg.FlagMinVotes < 0 {
		cfg.FlagMinVotes = DefaultFlagMinVotes
	}
	if cfg.FlagMinDownvoteRatio < 0 || cfg.FlagMinDownvoteRatio > 1 {
		cfg.FlagMinDownvoteRatio = DefaultFlagMinDownvoteRatio
	}
	if cfg.FlagDaysBack <= 0 {
		cfg.FlagDaysBack = DefaultFlagDaysBack
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	// Fill client defaults if empty
	if cfg.TokenFile == "" {
		home, _ := os.UserHomeDir()
		cfg.TokenFile = filepath.Join(home, ".mp_token")
	}

	return cfg
}

// InsecureAuthSecret сообщает, что JWT подписываются секретом разработки.
func (c *Config) InsecureAuthSecret() bool {
	return c.AuthSecret == DevAuthSecret
}
