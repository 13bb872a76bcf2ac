// internal/workers/templates/find-matching-templates/config.go
package findmatchingtemplates

import "time"

type Config struct {
	Timeout time.Duration
	// MaxResults caps the list when the job does not ask for a limit.
	// Zero returns every match.
	MaxResults  int
	InputSchema string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:    10 * time.Second,
		MaxResults: 20,
	}
}
