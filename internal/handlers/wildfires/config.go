// internal/handlers/wildfires/config.go
package wildfires

import (
	"time"

	"fireaid/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(hc config.HandlerConfig) *Config {
	timeout := config.GetDuration(hc.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Config{
		Timeout: timeout,
	}
}
