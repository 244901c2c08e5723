// internal/workers/intake/collect-phase-two/config.go
package collectphasetwo

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
