package config

import (
	"crypto/tls"
	"time"
)

// RestyConfig is the resolved HTTP client configuration handed to resty.
type RestyConfig struct {
	Debug            bool
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	Timeout          time.Duration
	TLSClientConfig  *tls.Config
	Proxy            string
}

// DefaultRestyConfig returns the HTTP client settings used when the config
// file does not override them.
func DefaultRestyConfig() RestyConfig {
	return RestyConfig{
		Debug:            false,
		RetryCount:       5,
		RetryWaitTime:    1 * time.Second,
		RetryMaxWaitTime: 2 * time.Second,
		Timeout:          10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}
}
