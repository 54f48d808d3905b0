package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server struct {
		Port            int    `mapstructure:"port"`
		Mode            string `mapstructure:"mode"` // debug, release, test (режим gin)
		ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // в секундах
	} `mapstructure:"server"`
	DB struct {
		Driver   string `mapstructure:"driver"` // postgres или sqlite
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		DBName   string `mapstructure:"name"`
		Path     string `mapstructure:"path"` // файл базы для sqlite
	} `mapstructure:"db"`
	JWT struct {
		SecretKey string `mapstructure:"secret_key"`
		ExpiresIn int    `mapstructure:"expires_in"` // в часах
	} `mapstructure:"jwt"`
	Redis struct {
		Addr     string `mapstructure:"addr"` // пустой адрес - черный список токенов в памяти
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		From     string `mapstructure:"from"`
	} `mapstructure:"smtp"`
	Notify struct {
		ManagerEmail   string `mapstructure:"manager_email"`
		TelegramToken  string `mapstructure:"telegram_token"`
		TelegramChatID int64  `mapstructure:"telegram_chat_id"`
	} `mapstructure:"notify"`
	RateLimit struct {
		RPS   float64 `mapstructure:"rps"`
		Burst int     `mapstructure:"burst"`
	} `mapstructure:"ratelimit"`
	Digest struct {
		Schedule string `mapstructure:"schedule"` // cron-выражение, пустое отключает дайджест
	} `mapstructure:"digest"`
	Catalog struct {
		Path string `mapstructure:"path"` // XML-каталог кредитных продуктов
	} `mapstructure:"catalog"`
	Log struct {
		Dir string `mapstructure:"dir"` // пустой каталог - вывод в stdout/stderr
	} `mapstructure:"log"`
}

// NewConfig создает новый экземпляр конфигурации.
// Порядок: значения по умолчанию, config.yaml (если есть), .env и переменные окружения.
func NewConfig() (*Config, error) {
	// .env может отсутствовать, тогда используются переменные окружения
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults задает значения по умолчанию. Переменные окружения
// переопределяют только известные viper ключи, поэтому здесь перечислены все.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.shutdown_timeout", 10)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.name", "credit_bank")
	v.SetDefault("db.path", "credit_bank.db")

	v.SetDefault("jwt.secret_key", "your-secret-key-here")
	v.SetDefault("jwt.expires_in", 24)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")

	v.SetDefault("notify.manager_email", "")
	v.SetDefault("notify.telegram_token", "")
	v.SetDefault("notify.telegram_chat_id", 0)

	v.SetDefault("ratelimit.rps", 1.0)
	v.SetDefault("ratelimit.burst", 10)

	v.SetDefault("digest.schedule", "0 9 * * *")
	v.SetDefault("catalog.path", "")
	v.SetDefault("log.dir", "")
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("неверный порт сервера: %d", c.Server.Port)
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("неизвестный драйвер базы данных: %q", c.DB.Driver)
	}
	if c.JWT.SecretKey == "" {
		return errors.New("не задан секретный ключ JWT")
	}
	if c.JWT.ExpiresIn <= 0 {
		return fmt.Errorf("неверное время жизни JWT: %d", c.JWT.ExpiresIn)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("параметры ограничения частоты запросов должны быть положительными")
	}
	return nil
}

// DSN возвращает строку подключения к postgres для gorm
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.DBName,
	)
}

// MigrationURL возвращает URL базы данных для golang-migrate
func (c *Config) MigrationURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
	)
}
