package httpclient

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/rl-gate/rl-gate/pkg/shared/config"
)

// HclogAdapter adapts an hclog.Logger to the resty log.Logger interface.
type HclogAdapter struct {
	logger hclog.Logger
}

// NewHclogAdapter creates a new adapter that forwards messages to an hclog.Logger.
func NewHclogAdapter(logger hclog.Logger) resty.Logger {
	return &HclogAdapter{logger: logger}
}

// Errorf logs a message at error level.
func (a *HclogAdapter) Errorf(format string, v ...interface{}) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

// Warnf logs a message at warning level.
func (a *HclogAdapter) Warnf(format string, v ...interface{}) {
	a.logger.Warn(fmt.Sprintf(format, v...))
}

// Debugf logs a message at debug level.
func (a *HclogAdapter) Debugf(format string, v ...interface{}) {
	a.logger.Debug(fmt.Sprintf(format, v...))
}

// InitializeRestyClient initializes a resty client from the application
// config, falling back to defaults for unset values.
func InitializeRestyClient(logger hclog.Logger, cfg *config.Config) *resty.Client {
	client := resty.New()
	if logger != nil {
		client.SetLogger(NewHclogAdapter(logger))
	}

	restyConfig := applyHTTPClientConfig(cfg)
	client.
		SetDebug(restyConfig.Debug).
		SetRetryCount(restyConfig.RetryCount).
		SetRetryWaitTime(restyConfig.RetryWaitTime).
		SetRetryMaxWaitTime(restyConfig.RetryMaxWaitTime).
		SetTimeout(restyConfig.Timeout).
		SetTLSClientConfig(restyConfig.TLSClientConfig)

	if restyConfig.Proxy != "" {
		client.SetProxy(restyConfig.Proxy)
	}

	return client
}

func applyHTTPClientConfig(cfg *config.Config) config.RestyConfig {
	restyConfig := config.DefaultRestyConfig()
	if cfg == nil {
		return restyConfig
	}

	httpConfig := cfg.HTTPClient
	restyConfig.Debug = httpConfig.Debug
	if httpConfig.RetryCount != 0 {
		restyConfig.RetryCount = httpConfig.RetryCount
	}
	if httpConfig.RetryWaitTime != 0 {
		restyConfig.RetryWaitTime = httpConfig.RetryWaitTime
	}
	if httpConfig.RetryMaxWaitTime != 0 {
		restyConfig.RetryMaxWaitTime = httpConfig.RetryMaxWaitTime
	}
	if httpConfig.Timeout != 0 {
		restyConfig.Timeout = httpConfig.Timeout
	}
	if httpConfig.TLSVerify != nil {
		restyConfig.TLSClientConfig.InsecureSkipVerify = !*httpConfig.TLSVerify
	}
	if httpConfig.Proxy.Host != "" && httpConfig.Proxy.Port != 0 {
		restyConfig.Proxy = fmt.Sprintf("%s:%d", httpConfig.Proxy.Host, httpConfig.Proxy.Port)
	}

	return restyConfig
}
