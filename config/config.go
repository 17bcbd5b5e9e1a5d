package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config представляет конфигурацию приложения
type Config struct {
	DB struct {
		Host           string `mapstructure:"host"`
		Port           int    `mapstructure:"port"`
		User           string `mapstructure:"user"`
		Password       string `mapstructure:"password"`
		DBName         string `mapstructure:"name"`
		SSLMode        string `mapstructure:"sslmode"`
		MigrationsPath string `mapstructure:"migrations_path"`
		MaxIdleConns   int    `mapstructure:"max_idle_conns"`
		MaxOpenConns   int    `mapstructure:"max_open_conns"`
	} `mapstructure:"db"`
	Redis struct {
		Addr       string        `mapstructure:"addr"`
		Password   string        `mapstructure:"password"`
		DB         int           `mapstructure:"db"`
		SummaryTTL time.Duration `mapstructure:"summary_ttl"`
	} `mapstructure:"redis"`
	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		From     string `mapstructure:"from"`
		NotifyTo string `mapstructure:"notify_to"` // почтовый ящик отдела взысканий
	} `mapstructure:"smtp"`
	Log struct {
		Level      string `mapstructure:"level"`
		Filename   string `mapstructure:"filename"`
		MaxSize    int    `mapstructure:"max_size"` // в мегабайтах
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAge     int    `mapstructure:"max_age"` // в днях
		Compress   bool   `mapstructure:"compress"`
	} `mapstructure:"log"`
	Ledger struct {
		PeriodUnit          string        `mapstructure:"period_unit"`
		PeriodEvery         int           `mapstructure:"period_every"`
		GraceLatePayments   int           `mapstructure:"grace_late_payments"`
		DefaultPendingLoans bool          `mapstructure:"default_pending_loans"`
		SweepInterval       time.Duration `mapstructure:"sweep_interval"`
	} `mapstructure:"ledger"`
	Bootstrap struct {
		AdminUsername string `mapstructure:"admin_username"`
		AdminPassword string `mapstructure:"admin_password"`
	} `mapstructure:"bootstrap"`
}

// NewConfig создает новый экземпляр конфигурации.
// Порядок: значения по умолчанию, config.yaml (или $MOTOLOANS_CONFIG), переменные окружения.
func NewConfig() (*Config, error) {
	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("MOTOLOANS_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// DB_HOST -> db.host, LEDGER_PERIOD_UNIT -> ledger.period_unit
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "motoloans")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.migrations_path", "migrations")
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.max_open_conns", 100)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.summary_ttl", 24*time.Hour)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.notify_to", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.filename", "logs/motoloans.log")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", true)

	v.SetDefault("ledger.period_unit", "month")
	v.SetDefault("ledger.period_every", 1)
	v.SetDefault("ledger.grace_late_payments", 3)
	v.SetDefault("ledger.default_pending_loans", false)
	v.SetDefault("ledger.sweep_interval", time.Hour)

	v.SetDefault("bootstrap.admin_username", "")
	v.SetDefault("bootstrap.admin_password", "")
}

// Validate проверяет значения, которые нельзя исправить по умолчанию
func (c *Config) Validate() error {
	switch c.Ledger.PeriodUnit {
	case "day", "week", "month":
	default:
		return fmt.Errorf("ledger.period_unit must be one of day, week, month; got %q", c.Ledger.PeriodUnit)
	}
	if c.Ledger.PeriodEvery <= 0 {
		return fmt.Errorf("ledger.period_every must be positive, got %d", c.Ledger.PeriodEvery)
	}
	if c.Ledger.GraceLatePayments < 1 {
		return fmt.Errorf("ledger.grace_late_payments must be at least 1, got %d", c.Ledger.GraceLatePayments)
	}
	if c.Ledger.SweepInterval <= 0 {
		return fmt.Errorf("ledger.sweep_interval must be positive, got %s", c.Ledger.SweepInterval)
	}
	if c.Bootstrap.AdminUsername != "" && c.Bootstrap.AdminPassword == "" {
		return errors.New("bootstrap.admin_password is required when bootstrap.admin_username is set")
	}
	if c.DB.Port <= 0 {
		return fmt.Errorf("db.port must be positive, got %d", c.DB.Port)
	}
	return nil
}

// DSN строка подключения gorm
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.DBName,
		c.DB.SSLMode,
	)
}

// MigrationURL строка подключения golang-migrate
func (c *Config) MigrationURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DB.User, c.DB.Password),
		Host:     net.JoinHostPort(c.DB.Host, strconv.Itoa(c.DB.Port)),
		Path:     "/" + c.DB.DBName,
		RawQuery: url.Values{"sslmode": {c.DB.SSLMode}}.Encode(),
	}
	return u.String()
}
