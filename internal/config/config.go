package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Host            string   `yaml:"host"`
		Port            int      `yaml:"port"`
		Env             string   `yaml:"env"`
		CORSOrigins     []string `yaml:"cors_origins"`
		ShutdownTimeout int      `yaml:"shutdown_timeout"` // секунды
	} `yaml:"server"`

	Database struct {
		DSN          string `yaml:"url"`
		MaxOpenConns int    `yaml:"max_open_conns"`
		MaxIdleConns int    `yaml:"max_idle_conns"`
		AutoMigrate  bool   `yaml:"auto_migrate"`
	} `yaml:"database"`

	Supabase struct {
		URL       string `yaml:"url"`
		AnonKey   string `yaml:"anon_key"`
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"supabase"`

	Razorpay struct {
		KeyID     string `yaml:"key_id"`
		KeySecret string `yaml:"key_secret"`
		BaseURL   string `yaml:"base_url"`
		ProAmount int64  `yaml:"pro_amount"` // пайсы
		Currency  string `yaml:"currency"`
	} `yaml:"razorpay"`

	Workers struct {
		Enabled          bool   `yaml:"enabled"`
		ReminderSchedule string `yaml:"reminder_schedule"`
		ExpirySchedule   string `yaml:"expiry_schedule"`
		CronSecret       string `yaml:"cron_secret"`
	} `yaml:"workers"`
}

var AppConfig *Config

// Default возвращает конфиг со значениями по умолчанию
func Default() *Config {
	var cfg Config
	cfg.Server.Host = ""
	cfg.Server.Port = 8080
	cfg.Server.Env = "development"
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}
	cfg.Server.ShutdownTimeout = 10

	cfg.Database.MaxOpenConns = 20
	cfg.Database.MaxIdleConns = 5
	cfg.Database.AutoMigrate = true

	cfg.Razorpay.BaseURL = "https://api.razorpay.com"
	cfg.Razorpay.ProAmount = 9900
	cfg.Razorpay.Currency = "INR"

	cfg.Workers.Enabled = true
	cfg.Workers.ReminderSchedule = "@hourly"
	cfg.Workers.ExpirySchedule = "@every 30m"
	return &cfg
}

// LoadConfig читает .env (если есть), затем YAML из CONFIG_PATH,
// затем переменные окружения поверх файла.
func LoadConfig() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	if err := loadFile(cfg, configPath); err != nil {
		return err
	}

	applyEnv(cfg)

	if cfg.Database.DSN == "" {
		return errors.New("database url is not configured (database.url or DATABASE_URL)")
	}

	AppConfig = cfg
	return nil
}

func loadFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to open config file at %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Host, "SERVER_HOST")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Server.Env, "SERVER_ENV")
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}

	setString(&cfg.Database.DSN, "DATABASE_URL")
	setBool(&cfg.Database.AutoMigrate, "DATABASE_AUTO_MIGRATE")

	setString(&cfg.Supabase.URL, "SUPABASE_URL")
	setString(&cfg.Supabase.AnonKey, "SUPABASE_ANON_KEY")
	setString(&cfg.Supabase.JWTSecret, "SUPABASE_JWT_SECRET")

	setString(&cfg.Razorpay.KeyID, "RAZORPAY_KEY_ID")
	setString(&cfg.Razorpay.KeySecret, "RAZORPAY_KEY_SECRET")

	setBool(&cfg.Workers.Enabled, "WORKERS_ENABLED")
	setString(&cfg.Workers.CronSecret, "CRON_SECRET")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// GetConfig возвращает загруженный конфиг или значения по умолчанию
func GetConfig() *Config {
	if AppConfig == nil {
		return Default()
	}
	return AppConfig
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}
