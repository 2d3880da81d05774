package raxis

import (
	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const (
	DefaultNamespace     = "raxis-world"
	DefaultLogLevel      = "info"
	DefaultFrameRate     = 60
	DefaultStatsdAddress = ""
)

// WorldConfig holds the configuration for a World instance. Every field can
// be set via environment variables; the zero-value fallbacks above apply when
// a variable is unset.
type WorldConfig struct {
	// RaxisNamespace is a unique identifier for the world, used to scope
	// storage keys and metric tags.
	RaxisNamespace string `config:"RAXIS_NAMESPACE"`

	// RaxisLogLevel is a zerolog level name.
	RaxisLogLevel string `config:"RAXIS_LOG_LEVEL"`

	// RaxisFrameRate is the number of frames per second the fixed clock
	// drives. Ignored when a tick channel is injected.
	RaxisFrameRate int `config:"RAXIS_FRAME_RATE"`

	// RedisAddress enables redis-backed component schema storage when set.
	RedisAddress  string `config:"REDIS_ADDRESS"`
	RedisPassword string `config:"REDIS_PASSWORD"`

	// StatsdAddress enables frame timing metrics when set.
	StatsdAddress string `config:"STATSD_ADDRESS"`
}

var defaultConfig = WorldConfig{
	RaxisNamespace: DefaultNamespace,
	RaxisLogLevel:  DefaultLogLevel,
	RaxisFrameRate: DefaultFrameRate,
	StatsdAddress:  DefaultStatsdAddress,
}

func loadWorldConfig() (*WorldConfig, error) {
	cfg := defaultConfig
	if err := config.FromEnv().To(&cfg); err != nil {
		return nil, eris.Wrap(err, "failed to load world config from env")
	}
	if err := cfg.validate(); err != nil {
		return nil, eris.Wrap(err, "failed to validate world config")
	}
	return &cfg, nil
}

func (cfg *WorldConfig) validate() error {
	if cfg.RaxisNamespace == "" {
		return eris.New("namespace cannot be empty")
	}
	if cfg.RaxisFrameRate <= 0 {
		return eris.New("frame rate must be positive")
	}
	if _, err := zerolog.ParseLevel(cfg.RaxisLogLevel); err != nil {
		return eris.Wrapf(err, "invalid log level %q", cfg.RaxisLogLevel)
	}
	return nil
}
