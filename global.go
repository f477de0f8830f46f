package courier

import (
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Optional backends stay nil when their settings are absent from the environment.
var (
	DB     *gorm.DB
	Logger zerolog.Logger = zerolog.Nop()
	Redis  *redis.Client
	NATS   *nats.Conn
)
