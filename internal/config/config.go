package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Leaderboard backends.
const (
	BackendNone      = "none"
	BackendMemory    = "memory"
	BackendRedis     = "redis"
	BackendPostgres  = "postgres"
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

type Config struct {
	Env    string `yaml:"env"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Session struct {
		TTL string `yaml:"ttl"`
	} `yaml:"session"`
	Trivia struct {
		BaseURL string `yaml:"base_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"trivia"`
	Explain struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		Timeout string `yaml:"timeout"`
	} `yaml:"explain"`
	Leaderboard struct {
		Backend string `yaml:"backend"`
		TopN    int    `yaml:"top_n"`
	} `yaml:"leaderboard"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		Path string `yaml:"path"`
	} `yaml:"sqlite"`
	Firestore struct {
		ProjectID       string `yaml:"project_id"`
		CredentialsFile string `yaml:"credentials_file"`
		Collection      string `yaml:"collection"`
	} `yaml:"firestore"`
}

// Load reads YAML config from path, then applies environment overrides. A .env file in
// the working directory is loaded first when present. A missing YAML file is not an
// error: defaults plus environment are enough to run.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.validate()
}

// Default is the configuration used for anything the YAML file leaves out.
func Default() Config {
	var cfg Config
	cfg.Env = "development"
	cfg.Server.Port = "8080"
	cfg.Session.TTL = "30m"
	cfg.Trivia.BaseURL = "https://opentdb.com"
	cfg.Trivia.Timeout = "10s"
	cfg.Explain.Model = "gemini-2.0-flash"
	cfg.Explain.Timeout = "20s"
	cfg.Leaderboard.Backend = BackendMemory
	cfg.Leaderboard.TopN = 10
	cfg.Redis.Prefix = "quiz_scores"
	cfg.SQLite.Path = "quiz_scores.db"
	cfg.Firestore.Collection = "quiz_scores"
	return cfg
}

func applyEnv(cfg *Config) {
	setString(&cfg.Env, "APP_ENV")
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Explain.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Leaderboard.Backend, "LEADERBOARD_BACKEND")
	setString(&cfg.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Postgres.URL, "POSTGRES_URL")
	setString(&cfg.SQLite.Path, "SQLITE_PATH")
	setString(&cfg.Firestore.ProjectID, "FIRESTORE_PROJECT_ID")
	setString(&cfg.Firestore.CredentialsFile, "FIRESTORE_CREDENTIALS")
	if v, err := strconv.Atoi(os.Getenv("LEADERBOARD_TOP_N")); err == nil {
		cfg.Leaderboard.TopN = v
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// validate rejects configurations that cannot mean anything. A backend named without its
// connection settings is not an error here: the leaderboard runs offline instead.
func (c Config) validate() error {
	switch c.Leaderboard.Backend {
	case BackendNone, BackendMemory, BackendRedis, BackendPostgres, BackendSQLite, BackendFirestore:
	default:
		return fmt.Errorf("unknown leaderboard backend %q", c.Leaderboard.Backend)
	}
	if c.Leaderboard.TopN <= 0 {
		return fmt.Errorf("leaderboard.top_n must be positive, got %d", c.Leaderboard.TopN)
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
