package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config is the application-level YAML configuration. Every field is
// optional; a missing config file yields a Config of defaults.
type Config struct {
	Logger     Logger     `yaml:"logger"`
	HTTPClient HTTPClient `yaml:"http_client"`
	Tracker    Tracker    `yaml:"tracker"`
}

type Logger struct {
	Level string `yaml:"level"`
}

type HTTPClient struct {
	Debug            bool          `yaml:"debug"`
	RetryCount       int           `yaml:"retry_count"`
	RetryWaitTime    time.Duration `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration `yaml:"retry_max_wait_time"`
	Timeout          time.Duration `yaml:"timeout"`
	TLSVerify        *bool         `yaml:"tls_verify"`
	Proxy            Proxy         `yaml:"proxy"`
}

type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Tracker holds issue-tracker defaults that flags and environment variables
// can override per run.
type Tracker struct {
	Namespace  string   `yaml:"namespace"`
	Repository string   `yaml:"repository"`
	Labels     []string `yaml:"labels"`
}

// LoadConfig reads the YAML config at configPath. An empty path, or a path
// that does not exist, yields the default configuration: the tool is expected
// to run in CI without a config file.
func LoadConfig(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	if err := loadYAML(configPath, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadYAML(configPath string, data interface{}) error {
	if err := validateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return fmt.Errorf("decode config %q: %w", configPath, err)
	}
	return nil
}

func validateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}
