package storage

import (
	"fmt"

	"github.com/nimasrn/card-gateway/internal/config"
	"github.com/nimasrn/card-gateway/pkg/logger"
	"github.com/nimasrn/card-gateway/pkg/pg"
	"github.com/nimasrn/card-gateway/pkg/redis"
)

// Open builds the BlobStore selected by c.StorageDriver. The returned close
// function releases the underlying connection.
func Open(c *config.Config) (BlobStore, func() error, error) {
	switch c.StorageDriver {
	case config.StorageDriverRedis:
		adapter, err := redis.NewRedisAdapter("default", c.RedisUniversalKeyPrefix, &redis.Options{
			Addrs:      []string{c.RedisAddr},
			ClientName: c.AppName,
			DB:         c.RedisDatabase,
			Username:   c.RedisUsername,
			Password:   c.RedisPassword,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("storage ready", "driver", c.StorageDriver, "addr", c.RedisAddr)
		return NewRedisStore(adapter), adapter.Close, nil

	case config.StorageDriverPostgres:
		db, err := pg.CreateReadWrite(ReadConfig(c), WriteConfig(c), c.AppEnv == "dev")
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("storage ready", "driver", c.StorageDriver, "host", c.PostgresWriteHost)
		return NewPgStore(db), db.Close, nil

	case config.StorageDriverMemory:
		logger.Warn("storage is in-memory, data is lost on exit")
		return NewMemoryStore(), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
}

func ReadConfig(c *config.Config) pg.Config {
	return pg.Config{
		User:     c.PostgresReadUser,
		Host:     c.PostgresReadHost,
		Port:     c.PostgresReadPort,
		Password: c.PostgresReadPassword,
		Database: c.PostgresReadDatabase,
	}
}

func WriteConfig(c *config.Config) pg.Config {
	return pg.Config{
		User:     c.PostgresWriteUser,
		Host:     c.PostgresWriteHost,
		Port:     c.PostgresWritePort,
		Password: c.PostgresWritePassword,
		Database: c.PostgresWriteDatabase,
	}
}
