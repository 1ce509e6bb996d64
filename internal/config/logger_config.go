package config

import (
	"errors"
	"fmt"
)

type LogLevel string

const (
	LevelInfo    LogLevel = "INFO"
	LevelDebug   LogLevel = "DEBUG"
	LevelWarning LogLevel = "WARNING"
	LevelError   LogLevel = "ERROR"
	LevelFatal   LogLevel = "FATAL"
)

type LoggerConfig struct {
	LogLevel     LogLevel `mapstructure:"log_level"`
	AppName      string   `mapstructure:"app_name"`
	LokiURL      string   `mapstructure:"loki_url"`
	LokiUser     string   `mapstructure:"loki_user"`
	LokiPassword string   `mapstructure:"loki_password"`
	OutputFile   string   `mapstructure:"output_file"`
}

func (config LoggerConfig) validate() error {
	var errs []error

	switch config.LogLevel {
	case LevelInfo, LevelDebug, LevelWarning, LevelError, LevelFatal:
	case "":
		errs = append(errs, fmt.Errorf("missing variable: log_level"))
	default:
		errs = append(errs, fmt.Errorf("unknown log_level: %s", config.LogLevel))
	}
	if config.OutputFile == "" {
		errs = append(errs, fmt.Errorf("missing variable: output_file"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config LoggerConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"logger.loki_url":      "LOKI_URL",
		"logger.loki_user":     "LOKI_USER",
		"logger.loki_password": "LOKI_PASSWORD",
		"logger.app_name":      "APP_NAME",
		"logger.log_level":     "LOG_LEVEL",
	})
}
