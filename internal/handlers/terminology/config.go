// internal/handlers/terminology/config.go
package terminology

import (
	"time"

	"fireaid/internal/common/config"
)

type Config struct {
	Timeout     time.Duration
	SearchLimit int
}

func LoadConfig(hc config.HandlerConfig) *Config {
	timeout := config.GetDuration(hc.Timeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Config{Timeout: timeout, SearchLimit: 25}
}
