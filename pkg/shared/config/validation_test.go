package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{
			name:    "nil config",
			cfg:     nil,
			wantErr: "configuration object is nil",
		},
		{
			name: "defaults are valid",
			cfg:  &Config{},
		},
		{
			name: "retry count too high",
			cfg: &Config{
				HTTPClient: HTTPClient{RetryCount: 21},
			},
			wantErr: "retry_count",
		},
		{
			name: "negative retry count",
			cfg: &Config{
				HTTPClient: HTTPClient{RetryCount: -1},
			},
			wantErr: "retry_count",
		},
		{
			name: "timeout too long",
			cfg: &Config{
				HTTPClient: HTTPClient{Timeout: 101 * time.Second},
			},
			wantErr: "duration is too long",
		},
		{
			name: "negative wait time",
			cfg: &Config{
				HTTPClient: HTTPClient{RetryWaitTime: -time.Second},
			},
			wantErr: "cannot be negative",
		},
		{
			name: "valid proxy",
			cfg: &Config{
				HTTPClient: HTTPClient{
					Proxy: Proxy{Host: "proxy.local", Port: 3128},
				},
			},
		},
		{
			name: "proxy port out of range",
			cfg: &Config{
				HTTPClient: HTTPClient{
					Proxy: Proxy{Host: "proxy.local", Port: 70000},
				},
			},
			wantErr: "proxy port",
		},
		{
			name: "proxy host without port is ignored",
			cfg: &Config{
				HTTPClient: HTTPClient{
					Proxy: Proxy{Host: "proxy.local"},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateProxySchemeDefaulting(t *testing.T) {
	proxy := Proxy{Host: "proxy.local", Port: 3128}
	assert.NoError(t, validateProxy(&proxy))
	assert.Equal(t, "http://proxy.local", proxy.Host)

	proxy = Proxy{Host: "https://proxy.local/", Port: 3128}
	assert.NoError(t, validateProxy(&proxy))
	assert.Equal(t, "https://proxy.local", proxy.Host)
}
