// internal/workers/templates/find-best-template/config.go
package findbesttemplate

import "time"

type Config struct {
	Timeout time.Duration
	// InputSchema replaces the built-in job variable schema when set.
	InputSchema string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
