// internal/workers/templates/record-template-selection/config.go
package recordtemplateselection

import "time"

type Config struct {
	Timeout     time.Duration
	InputSchema string
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
