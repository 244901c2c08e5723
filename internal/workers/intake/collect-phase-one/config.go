// internal/workers/intake/collect-phase-one/config.go
package collectphaseone

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
