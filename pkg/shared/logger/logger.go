package logger

import (
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/rl-gate/rl-gate/pkg/shared/config"
)

// NewLogger builds the named hclog logger. The level comes from the YAML
// config when set; the RLGATE_LOG_LEVEL environment variable has second
// priority, and anything unrecognized falls back to info.
func NewLogger(cfg *config.Config, name string) hclog.Logger {
	var logLevel hclog.Level

	if cfg != nil && cfg.Logger.Level != "" {
		logLevel = getLogLevel(strings.ToUpper(cfg.Logger.Level))
	} else {
		logLevelEnv := os.Getenv("RLGATE_LOG_LEVEL")
		logLevel = getLogLevel(strings.ToUpper(logLevelEnv))
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:        name,
		DisableTime: true,
		Output:      os.Stdout,
		Level:       logLevel,
	})
}

func getLogLevel(levelStr string) hclog.Level {
	switch levelStr {
	case "TRACE":
		return hclog.Trace
	case "DEBUG":
		return hclog.Debug
	case "INFO":
		return hclog.Info
	case "WARN":
		return hclog.Warn
	case "ERROR":
		return hclog.Error
	default:
		return hclog.Info
	}
}
