package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env string

	Database  DatabaseConfigs
	ApiServer ServerConfigs
	Auth      AuthConfigs
	Redis     RedisConfigs
	Storage   S3Configs
	Telegram  TelegramConfigs
	Notifier  NotifierConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string
}

type AuthConfigs struct {
	TokenSecret     string
	TokenExpiration time.Duration
}

type RedisConfigs struct {
	Addr string
}

type S3Configs struct {
	Region         string
	Endpoint       string
	PublicEndpoint string
	AccessKey      string
	SecretKey      string
	SSLDisabled    bool
	ReceiptBucket  string
}

type TelegramConfigs struct {
	Endpoint     string
	BotToken     string
	LogChannelID string
}

type NotifierConfigs struct {
	// Hour is the local wall-clock hour the daily expiry scan fires at.
	Hour     int
	Timezone string

	// ExpiringWindowDays is the inclusive upper bound, in days, of the
	// endDate-to-today distance picked up by the scan.
	ExpiringWindowDays int
}

func (n *NotifierConfigs) Location() *time.Location {
	loc, err := time.LoadLocation(n.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads the TOML file at path, then lets environment variables override
// the secrets so they never need to live in the file. The result is loaded
// once at process start and injected through xcontext; nothing reads it as a
// mutable global.
func Load(path string) (Configs, error) {
	var cfg Configs
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Configs{}, fmt.Errorf("cannot decode config file %s: %w", path, err)
		}
	}

	overrideString(&cfg.Database.Host, "DB_HOST")
	overrideString(&cfg.Database.Port, "DB_PORT")
	overrideString(&cfg.Database.Database, "DB_NAME")
	overrideString(&cfg.Database.User, "DB_USER")
	overrideString(&cfg.Database.Password, "DB_PASSWORD")
	overrideString(&cfg.ApiServer.Port, "PORT")
	overrideString(&cfg.Auth.TokenSecret, "TOKEN_SECRET")
	overrideString(&cfg.Redis.Addr, "REDIS_ADDR")
	overrideString(&cfg.Storage.AccessKey, "S3_ACCESS_KEY")
	overrideString(&cfg.Storage.SecretKey, "S3_SECRET_KEY")
	overrideString(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")

	if cfg.Auth.TokenExpiration == 0 {
		cfg.Auth.TokenExpiration = 24 * time.Hour
	}

	if cfg.Telegram.Endpoint == "" {
		cfg.Telegram.Endpoint = "https://api.telegram.org"
	}

	if cfg.Notifier.Timezone == "" {
		cfg.Notifier.Timezone = "America/Sao_Paulo"
	}

	if cfg.Notifier.Hour == 0 {
		cfg.Notifier.Hour = 6
	}

	if cfg.Notifier.ExpiringWindowDays == 0 {
		cfg.Notifier.ExpiringWindowDays = 2
	}

	return cfg, nil
}

func overrideString(dst *string, env string) {
	if value := os.Getenv(env); value != "" {
		*dst = value
	}
}
