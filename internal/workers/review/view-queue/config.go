// internal/workers/review/view-queue/config.go
package viewqueue

import "time"

type Config struct {
	MaxEntries int
	Timeout    time.Duration
}

func LoadConfig() *Config {
	return &Config{
		MaxEntries: 25,
		Timeout:    10 * time.Second,
	}
}
