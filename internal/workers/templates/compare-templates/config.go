// internal/workers/templates/compare-templates/config.go
package comparetemplates

import "time"

type Config struct {
	Timeout     time.Duration
	InputSchema string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
