package main

import (
	"fmt"
	"range-server/errors"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	RootDir           string        `env:"ROOT_DIR,default=." validate:"required"`
	Host              string        `env:"HOST"`
	Port              int           `env:"PORT,default=8080" validate:"min=0,max=65535"`
	LogLevel          string        `env:"LOG_LEVEL,default=INFO"`
	Interface         string        `env:"INTERFACE,default=http" validate:"oneof=http fcgi cgi"`
	Protocol          string        `env:"PROTOCOL,default=HTTP/1.1" validate:"oneof=HTTP/1.1 HTTP/1.0"`
	ChunkSizeKB       int           `env:"CHUNK_SIZE_KB,default=8" validate:"min=1,max=1024"`
	Inline            bool          `env:"INLINE,default=false"`
	RandomBoundary    bool          `env:"RANDOM_BOUNDARY,default=false"`
	ExpiresAfter      time.Duration `env:"EXPIRES_AFTER,default=480h" validate:"min=0"`
	RateLimitBytes    int           `env:"RATE_LIMIT_BYTES,default=0" validate:"min=0"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,default=30s" validate:"min=0"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=1s" validate:"min=0"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s" validate:"min=0"`
	TFTPAddr          string        `env:"TFTP_ADDR"`
}

// loadConfig decodes the environment then validates the result.
func loadConfig() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errors.ErrConfiguration, err)
	}
	if err := validator.New().Struct(config); err != nil {
		return Config{}, fmt.Errorf("%w: %w", errors.ErrConfiguration, err)
	}
	return config, nil
}

func (c Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
