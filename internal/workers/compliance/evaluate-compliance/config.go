// internal/workers/compliance/evaluate-compliance/config.go
package evaluatecompliance

import "time"

type Config struct {
	Timeout     time.Duration
	InputSchema string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
