// Package config resolves runtime settings from flags, environment, and .env.
//
// Precedence (highest first): command-line flags, environment variables,
// a .env file in the working directory, built-in defaults. Environment
// variable names match the ones the server has always used (PORT, LOG_LEVEL,
// WORDS_ANSWERS_FILE, ...).
package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shash-786/wordle-engine/internal/daily"
	"github.com/shash-786/wordle-engine/internal/words"
)

const (
	ModeRandom = "random"
	ModeDaily  = "daily"
)

// Config holds every setting the binary understands.
type Config struct {
	Port         string
	LogLevel     string
	WordLength   int
	MaxGuesses   int
	AnswersFile  string
	AllowedFile  string
	AnswersURL   string
	AllowedURL   string
	Mode         string
	DailySalt    string
	DBPath       string
	JWTSecret    string
	CookieName   string
	ClientOrigin string
	NodeEnv      string
	SessionIdle  time.Duration
}

type setting struct {
	key string
	env string
	def any
}

var settings = []setting{
	{"port", "PORT", "5175"},
	{"log_level", "LOG_LEVEL", "info"},
	{"word_length", "WORD_LENGTH", words.DefaultWordLength},
	{"max_guesses", "MAX_GUESSES", 6},
	{"answers_file", "WORDS_ANSWERS_FILE", ""},
	{"allowed_file", "WORDS_ALLOWED_FILE", ""},
	{"answers_url", "WORDS_ANSWERS_URL", ""},
	{"allowed_url", "WORDS_ALLOWED_URL", ""},
	{"mode", "GAME_MODE", ModeRandom},
	{"daily_salt", "DAILY_SALT", "local_dev_salt"},
	{"db_path", "DB_PATH", ""},
	{"jwt_secret", "JWT_SECRET", "dev_secret_change_me"},
	{"cookie_name", "COOKIE_NAME", "wordle_session"},
	{"client_origin", "CLIENT_ORIGIN", "http://localhost:5173"},
	{"node_env", "NODE_ENV", "development"},
	{"session_idle", "SESSION_IDLE_TTL", "24h"},
}

// New returns a viper instance with defaults and env bindings registered.
func New() *viper.Viper {
	v := viper.New()
	for _, s := range settings {
		v.SetDefault(s.key, s.def)
		_ = v.BindEnv(s.key, s.env)
	}
	return v
}

// FlagName maps a config key to its command-line flag (word_length -> word-length).
func FlagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

// BindFlags binds every flag in fs that names a known setting.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, s := range settings {
		if f := fs.Lookup(FlagName(s.key)); f != nil {
			if err := v.BindPFlag(s.key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", f.Name, err)
			}
		}
	}
	return nil
}

// LoadDotEnv loads .env files without overriding variables already set.
// Missing files are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:         v.GetString("port"),
		LogLevel:     v.GetString("log_level"),
		WordLength:   v.GetInt("word_length"),
		MaxGuesses:   v.GetInt("max_guesses"),
		AnswersFile:  v.GetString("answers_file"),
		AllowedFile:  v.GetString("allowed_file"),
		AnswersURL:   v.GetString("answers_url"),
		AllowedURL:   v.GetString("allowed_url"),
		Mode:         strings.ToLower(v.GetString("mode")),
		DailySalt:    v.GetString("daily_salt"),
		DBPath:       v.GetString("db_path"),
		JWTSecret:    v.GetString("jwt_secret"),
		CookieName:   v.GetString("cookie_name"),
		ClientOrigin: v.GetString("client_origin"),
		NodeEnv:      v.GetString("node_env"),
		SessionIdle:  v.GetDuration("session_idle"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.WordLength < 1 {
		errs = append(errs, fmt.Errorf("word_length must be positive, got %d", c.WordLength))
	}
	if c.MaxGuesses < 1 {
		errs = append(errs, fmt.Errorf("max_guesses must be positive, got %d", c.MaxGuesses))
	}
	if c.Mode != ModeRandom && c.Mode != ModeDaily {
		errs = append(errs, fmt.Errorf("mode must be %q or %q, got %q", ModeRandom, ModeDaily, c.Mode))
	}
	if c.SessionIdle < 0 {
		errs = append(errs, fmt.Errorf("session_idle must not be negative, got %s", c.SessionIdle))
	}
	if (c.AnswersURL == "") != (c.AllowedURL == "") {
		errs = append(errs, errors.New("answers_url and allowed_url must be set together"))
	}
	if c.Production() && c.JWTSecret == "dev_secret_change_me" {
		errs = append(errs, errors.New("jwt_secret must be changed in production"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Production reports NODE_ENV=production (secure cookies, strict secrets).
func (c *Config) Production() bool { return c.NodeEnv == "production" }

// Source returns the configured word-list source.
func (c *Config) Source() words.Source {
	return words.NewSource(words.SourceConfig{
		AnswersFile: c.AnswersFile,
		AllowedFile: c.AllowedFile,
		AnswersURL:  c.AnswersURL,
		AllowedURL:  c.AllowedURL,
	}, &http.Client{Timeout: 15 * time.Second})
}

// Selector returns how secrets are drawn for new games.
func (c *Config) Selector() words.Selector {
	if c.Mode == ModeDaily {
		return daily.Selector{Salt: c.DailySalt}
	}
	return words.RandomSelector
}
