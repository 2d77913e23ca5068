// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
)

// Config represents the application configuration
type Config struct {
	APIName          string `env:"TUNELY_API_APP_NAME" default:"Tunely API"`
	APIVersion       string `env:"TUNELY_API_APP_VERSION" default:"1.0.0"`
	ServerPort       string `env:"TUNELY_API_SERVER_PORT" default:"3000"`
	ServerLogLevel   string `env:"TUNELY_API_SERVER_LOG_LEVEL" default:"info"`
	PostgresDsn      string `env:"TUNELY_API_PG_DSN"`
	PostgresLogLevel string `env:"TUNELY_API_PG_LOG_LEVEL" default:"warn"`
	RedisHost        string `env:"TUNELY_API_REDIS_HOST" default:"localhost"`
	RedisPort        string `env:"TUNELY_API_REDIS_PORT" default:"6379"`
	RedisPassword    string `env:"TUNELY_API_REDIS_PASSWORD" default:""`
	DartAPIKey       string `env:"TUNELY_API_DART_API_KEY"`
	DartBaseURL      string `env:"TUNELY_API_DART_BASE_URL" default:"https://opendart.fss.or.kr/api"`
	NaverBaseURL     string `env:"TUNELY_API_NAVER_BASE_URL" default:"https://finance.naver.com"`
}

var SingleLine string = "--------------------------------------------------"

var (
	instance *Config
	once     sync.Once
	loadErr  error
)

// Get returns the application configuration
func Get() (*Config, error) {
	once.Do(func() {
		instance, loadErr = loadConfig()
	})
	return instance, loadErr
}

// loadConfig loads configuration from environment variables
func loadConfig() (*Config, error) {
	cfg := &Config{}
	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromEnv populates the config from environment variables, falling back
// to the `default` tag where one is present
func (c *Config) loadFromEnv() error {
	t := reflect.TypeOf(*c)
	v := reflect.ValueOf(c).Elem()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		envTag := field.Tag.Get("env")
		if envTag == "" {
			return fmt.Errorf("missing env tag for field %s", field.Name)
		}

		value := os.Getenv(envTag)
		if value == "" {
			defaultValue, hasDefault := field.Tag.Lookup("default")
			if !hasDefault {
				return fmt.Errorf("env variable %s is required but not set", envTag)
			}
			value = defaultValue
		}

		v.Field(i).SetString(value)
	}

	return nil
}

// String returns the configuration as a string with sensitive values masked
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n" + SingleLine + "\n")
	sb.WriteString("Configuration:\n")
	sb.WriteString(SingleLine + "\n")

	t := reflect.TypeOf(*c)
	v := reflect.ValueOf(*c)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		value := maskSensitiveField(field.Name, v.Field(i).String())
		sb.WriteString(fmt.Sprintf("  %s:  %s\n", field.Name, value))
	}

	sb.WriteString(SingleLine + "\n")
	return sb.String()
}

func maskSensitiveField(fieldName, value string) string {
	sensitiveFields := []string{"key", "dsn", "secret", "password"}

	fieldNameLower := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFields {
		if strings.Contains(fieldNameLower, sensitive) {
			return maskValue(value)
		}
	}
	return value
}

func maskValue(value string) string {
	if len(value) <= 3 {
		return strings.Repeat("*", 7)
	}
	return value[:3] + strings.Repeat("*", 7)
}
