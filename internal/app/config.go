package app

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/checkout/internal/messaging/kafka"
)

// StorageDriver выбирает реализацию хранилища заказов.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
	StorageDriverSQLite   StorageDriver = "sqlite"
)

// Переменные окружения, из которых читается Config.
const (
	EnvStorageDriver = "ORDERS_STORAGE_DRIVER"
	EnvPostgresDSN   = "ORDERS_POSTGRES_DSN"
	EnvSQLitePath    = "ORDERS_SQLITE_PATH"
	EnvAutoMigrate   = "ORDERS_AUTO_MIGRATE"
	EnvKafkaBrokers  = "KAFKA_BROKERS"
	EnvEventsTopic   = "ORDERS_EVENTS_TOPIC"
	EnvOpsAddr       = "ORDERS_OPS_ADDR"
	EnvLogLevel      = "ORDERS_LOG_LEVEL"
)

// Config описывает настройки запуска.
type Config struct {
	StorageDriver StorageDriver
	PostgresDSN   string
	SQLitePath    string
	AutoMigrate   bool
	KafkaBrokers  []string
	EventsTopic   string
	OpsAddr       string
	LogLevel      log.Level
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		StorageDriver: StorageDriverMemory,
		SQLitePath:    "checkout.db",
		AutoMigrate:   true,
		EventsTopic:   kafka.TopicOrderEvents,
		OpsAddr:       ":9090",
		LogLevel:      log.InfoLevel,
	}
}

// LoadConfig накладывает переменные окружения на DefaultConfig.
// getenv обычно os.Getenv; в тестах: map lookup.
func LoadConfig(getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	if v := get(EnvStorageDriver); v != "" {
		cfg.StorageDriver = StorageDriver(strings.ToLower(v))
	}
	if v := get(EnvPostgresDSN); v != "" {
		cfg.PostgresDSN = v
	}
	if v := get(EnvSQLitePath); v != "" {
		cfg.SQLitePath = v
	}
	if v := get(EnvAutoMigrate); v != "" {
		autoMigrate, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s=%q: %w", EnvAutoMigrate, v, err)
		}
		cfg.AutoMigrate = autoMigrate
	}
	if v := get(EnvKafkaBrokers); v != "" {
		cfg.KafkaBrokers = splitList(v)
	}
	if v := get(EnvEventsTopic); v != "" {
		cfg.EventsTopic = v
	}
	if v := get(EnvOpsAddr); v != "" {
		cfg.OpsAddr = v
	}
	if v := get(EnvLogLevel); v != "" {
		level, err := log.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s=%q: %w", EnvLogLevel, v, err)
		}
		cfg.LogLevel = level
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate проверяет согласованность настроек хранилища.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%s is required for storage driver %q", EnvPostgresDSN, c.StorageDriver)
		}
	case StorageDriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%s is required for storage driver %q", EnvSQLitePath, c.StorageDriver)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q (use memory|postgres|sqlite)", c.StorageDriver)
	}
	return nil
}

// SetupLogger настраивает формат и уровень глобального логгера.
func SetupLogger(level log.Level) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(level)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
