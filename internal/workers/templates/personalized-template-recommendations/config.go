// internal/workers/templates/personalized-template-recommendations/config.go
package personalizedrecommendations

import "time"

type Config struct {
	Timeout    time.Duration
	MaxResults int
	// RecordImpressions logs every returned template as a shown event.
	RecordImpressions bool
	InputSchema       string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           10 * time.Second,
		MaxResults:        10,
		RecordImpressions: true,
	}
}
