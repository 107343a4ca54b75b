package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Port          string `env:"PORT" env-default:"8080"`
	DatabaseURL   string `env:"DATABASE_URL" env-default:"host=localhost user=postgres password=postgres dbname=readshelf port=5432 sslmode=disable"`
	SessionSecret string `env:"SESSION_SECRET" env-default:"secret_key_change_me"`
	SiteURL       string `env:"SITE_URL" env-default:"http://localhost:8080"`

	// Bootstrap admin, created at startup when both are set
	AdminUsername string `env:"ADMIN_USERNAME"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	Google Google

	DriveFolderID string `env:"DRIVE_FOLDER_ID"`
	StoryFeedURL  string `env:"STORY_FEED_URL" env-default:"https://www.royalroad.com/fiction/syndication/%s"`
	RedisURL      string `env:"REDIS_URL"`

	CoverDPI       float64       `env:"COVER_DPI" env-default:"50"`
	CoverCacheSize int           `env:"COVER_CACHE_SIZE" env-default:"200"`
	CoverCacheTTL  time.Duration `env:"COVER_CACHE_TTL" env-default:"30m"`

	SMTP SMTP
}

// Google holds Drive credentials. A service account file wins over the
// OAuth client/refresh token triple.
type Google struct {
	CredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE"`
	ClientID        string `env:"GOOGLE_CLIENT_ID"`
	ClientSecret    string `env:"GOOGLE_CLIENT_SECRET"`
	RefreshToken    string `env:"GOOGLE_REFRESH_TOKEN"`
}

type SMTP struct {
	Host     string `env:"SMTP_HOST"`
	Port     string `env:"SMTP_PORT" env-default:"587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM"`
}

// Enabled reports whether every field needed to send mail is present.
func (s SMTP) Enabled() bool {
	return s.Host != "" && s.Port != "" && s.Username != "" && s.Password != "" && s.From != ""
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading config from environment")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for binaries that cannot start without config.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot read config: %v", err)
	}
	return cfg
}
