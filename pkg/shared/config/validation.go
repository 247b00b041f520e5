package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ValidateConfig checks if the global configuration has valid values.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := validateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	return nil
}

func validateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig.RetryCount < 0 || httpConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", httpConfig.RetryCount)
	}

	durations := map[string]time.Duration{
		"retry_wait_time":     httpConfig.RetryWaitTime,
		"retry_max_wait_time": httpConfig.RetryMaxWaitTime,
		"timeout":             httpConfig.Timeout,
	}
	for name, duration := range durations {
		if err := validateDuration(duration, name, 100*time.Second); err != nil {
			return err
		}
	}

	return validateProxy(&httpConfig.Proxy)
}

func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

func validateProxy(proxy *Proxy) error {
	// Unset proxy settings are fine; validate only when both parts are given.
	if proxy.Host == "" || proxy.Port == 0 {
		return nil
	}

	if !strings.Contains(proxy.Host, "://") {
		proxy.Host = "http://" + proxy.Host
	}
	proxy.Host = strings.TrimRight(proxy.Host, "/")

	if _, err := url.Parse(proxy.Host); err != nil {
		return fmt.Errorf("invalid proxy host URL: %w", err)
	}
	if proxy.Port < 1 || proxy.Port > 65535 {
		return fmt.Errorf("proxy port must be between 1 and 65535, got %d", proxy.Port)
	}
	return nil
}
