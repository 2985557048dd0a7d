package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/card-gateway/pkg/logger"
	"github.com/pkg/errors"
)

const (
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

var config *Config

// Config holds every configuration value of the card gateway.
// Only this struct must be used to read configuration, no direct access
// to env or any other config source should be made.
type Config struct {
	AppEnv              string `env:"APP_ENV,default=dev"`
	AppName             string `env:"APP_NAME,default=card_gateway"`
	AppDebugMetricsAddr string `env:"APP_DEBUG_METRIC_ADDR"`
	AppDebugMetricsURI  string `env:"APP_DEBUG_METRIC_URI,default=/metrics"`

	HttpListenAddr            string        `env:"HTTP_LISTEN_ADDR,default=:8080"`
	HttpRequestTimeout        time.Duration `env:"HTTP_REQUEST_TIMEOUT,default=5s"`
	HttpServerReadBufferSize  int           `env:"HTTP_SERVER_READ_BUFFER_SIZE,default=16384"`
	HttpServerWriteBufferSize int           `env:"HTTP_SERVER_WRITE_BUFFER_SIZE,default=16384"`

	StorageDriver string `env:"STORAGE_DRIVER,default=redis"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`

	RedisAddr               string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisUsername           string `env:"REDIS_USER"`
	RedisPassword           string `env:"REDIS_PASS"`
	RedisDatabase           int    `env:"REDIS_DATABASE"`
	RedisUniversalKeyPrefix string `env:"REDIS_UNIVERSAL_KEY_PREFIX,default=aspire-"`

	PromNamespace string `env:"PROM_NAMESPACE,default=card_gateway"`

	LogLevel string `env:"LOG_LEVEL"`

	ApiLatencyEnabled bool    `env:"API_LATENCY_ENABLED,default=true"`
	ApiLatencyScale   float64 `env:"API_LATENCY_SCALE,default=1"`
	CardsSeedOnEmpty  bool    `env:"CARDS_SEED_ON_EMPTY,default=true"`

	WorkerCount      int `env:"STATE_WORKER_COUNT,default=4"`
	WorkerBufferSize int `env:"STATE_WORKER_BUFFER,default=64"`
}

func Load(path string) error {
	logger.Info("loading configs..", "path", path)
	c := &Config{}
	var err error
	if path != "" {
		logger.Info("trying to publish env from file", "path", path)
		err = godotenv.Load(path)
		if err != nil {
			return errors.New("failed to load configuration file " + path + " error: " + err.Error())
		}
	}

	_, err = env.UnmarshalFromEnviron(c)
	if err != nil {
		return errors.Wrap(err, "failed to map env variables to Configuration object")
	}

	if err = c.validate(); err != nil {
		return err
	}

	if c.LogLevel != "" {
		if err = logger.SetLevel(c.LogLevel); err != nil {
			logger.Warn("ignoring invalid log level", "level", c.LogLevel, "error", err)
		}
	}

	config = c
	return nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageDriverRedis, StorageDriverPostgres, StorageDriverMemory:
	default:
		return errors.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.ApiLatencyScale < 0 {
		return errors.Errorf("API_LATENCY_SCALE must not be negative, got %v", c.ApiLatencyScale)
	}
	if c.WorkerCount <= 0 {
		return errors.Errorf("STATE_WORKER_COUNT must be positive, got %d", c.WorkerCount)
	}
	return nil
}

func Get() *Config {
	if config == nil {
		logger.Panic("Config is not initialized")
	}
	return config
}

// Set replaces the active configuration. Intended for tests and tools that
// build a Config by hand instead of reading the environment.
func Set(c *Config) {
	config = c
}
