// internal/workers/review/request-screenshot/config.go
package requestscreenshot

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
