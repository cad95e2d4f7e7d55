// Package config loads process configuration from the environment.
//
// Every package owns its settings as a plain struct with env tags; this
// package embeds them into one Config and parses it once with caarlos0/env.
// A .env file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/sunday4k/sunday4k/pkg/cache"
	"github.com/sunday4k/sunday4k/pkg/db"
	"github.com/sunday4k/sunday4k/pkg/job"
	"github.com/sunday4k/sunday4k/pkg/locale"
	"github.com/sunday4k/sunday4k/pkg/logger"
	"github.com/sunday4k/sunday4k/pkg/mailer"
	"github.com/sunday4k/sunday4k/pkg/mailer/resend"
	"github.com/sunday4k/sunday4k/pkg/ratelimit"
	"github.com/sunday4k/sunday4k/pkg/redis"
	"github.com/sunday4k/sunday4k/pkg/storage"
)

// ErrInvalid wraps every configuration error.
var ErrInvalid = errors.New("config: invalid configuration")

// App holds process-level settings.
type App struct {
	Name      string `env:"APP_NAME" envDefault:"sunday4k"`
	Env       string `env:"APP_ENV" envDefault:"development"`
	Address   string `env:"APP_ADDRESS" envDefault:":8080"`
	PublicURL string `env:"APP_URL" envDefault:"https://sunday4k.com"`
	// Locale selects number and date formatting in rendered emails.
	Locale          string        `env:"APP_LOCALE" envDefault:"en-US"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	RequestTimeout  time.Duration `env:"APP_REQUEST_TIMEOUT" envDefault:"30s"`
	// Workers runs the job workers inside the serve process.
	Workers bool `env:"APP_RUN_WORKERS" envDefault:"true"`
}

// IsProduction reports whether the app runs in production.
func (a App) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// Config is the full process configuration.
type Config struct {
	App       App
	Log       logger.Config
	Sentry    logger.SentryConfig
	DB        db.Config
	Redis     redis.Config
	Cache     cache.Config
	Mailer    mailer.Config
	Resend    resend.Config
	Storage   storage.Config
	RateLimit ratelimit.Config
	Jobs      job.Config
}

// Load reads .env (if any) and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse parses the environment without touching .env files.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.Join(ErrInvalid, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.App.PublicURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: APP_URL must be an absolute URL, got %q", ErrInvalid, c.App.PublicURL)
	}
	c.App.PublicURL = strings.TrimRight(c.App.PublicURL, "/")

	if c.App.IsProduction() && c.Resend.APIKey == "" {
		return fmt.Errorf("%w: RESEND_API_KEY is required in production", ErrInvalid)
	}
	if c.RateLimit.SendPerRecipient < 0 || c.RateLimit.SubscribePerIP < 0 {
		return fmt.Errorf("%w: rate limits cannot be negative", ErrInvalid)
	}
	return nil
}

// LocaleFormat returns the number and date format for App.Locale.
func (c *Config) LocaleFormat() *locale.Format {
	return locale.ForTag(c.App.Locale)
}
