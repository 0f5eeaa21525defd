package config

import (
	"time"

	"github.com/Laisky/errors/v2"

	"github.com/gopak/dcs-cli/internal/dcs"
	"github.com/gopak/dcs-cli/internal/flow"
)

const defaultMaxPages = 20

// Config is the merged view of the built-in defaults and the user's files.
// Pointer fields distinguish "not set" from a zero value while merging.
type Config struct {
	StreamURL   string   `yaml:"stream_url" json:"stream_url,omitempty"`
	ResultsURL  string   `yaml:"results_url" json:"results_url,omitempty"`
	MaxPages    *int     `yaml:"max_pages" json:"max_pages,omitempty"`
	RateLimit   *float64 `yaml:"rate_limit" json:"rate_limit,omitempty"`
	HTTPTimeout string   `yaml:"http_timeout" json:"http_timeout,omitempty"`
	UserAgent   string   `yaml:"user_agent" json:"user_agent,omitempty"`
	Exclude     []string `yaml:"exclude" json:"exclude,omitempty"`
	Color       *bool    `yaml:"color" json:"color,omitempty"`
	LogFile     string   `yaml:"log_file" json:"log_file,omitempty"`
}

func (c Config) Pages() int {
	if c.MaxPages == nil {
		return defaultMaxPages
	}
	return *c.MaxPages
}

func (c Config) Rate() float64 {
	if c.RateLimit == nil {
		return flow.DefaultRequestsPerSecond
	}
	return *c.RateLimit
}

func (c Config) ColorEnabled() bool {
	return c.Color == nil || *c.Color
}

func (c Config) Timeout() (time.Duration, error) {
	if c.HTTPTimeout == "" {
		return dcs.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 0, errors.Wrapf(err, "http_timeout %q", c.HTTPTimeout)
	}
	return d, nil
}
