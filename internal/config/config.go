package config

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	DB       DBConfig       `mapstructure:"db"`
	HH       HHConfig       `mapstructure:"hh"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Issue    IssueConfig    `mapstructure:"issue"`
	Queue    QueueConfig    `mapstructure:"queue"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Server   ServerConfig   `mapstructure:"server"`
}

type section interface {
	validate() error
	bindEnvironmentVariables() error
}

var defaultConfigFile = "./configs/config.yaml"

func Get() *Config {

	configFile := defaultConfigFile
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		configFile = value
	}

	config, err := loadConfig(configFile)
	if err != nil {
		log.Fatal(err)
	}

	return config
}

func loadConfig(file string) (*Config, error) {

	viper.SetConfigFile(file)
	viper.AutomaticEnv()

	setDefaults()

	if err := bindEnvironmentVariables(); err != nil {
		return nil, err
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", file, err)
	}

	config := Config{}
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("logger.log_level", string(LevelInfo))
	viper.SetDefault("logger.output_file", "errors.log")
	viper.SetDefault("logger.app_name", "hh-hire")
	viper.SetDefault("db.tokens_connection_string", "hh_tokens.db")
	viper.SetDefault("hh.base_url", "https://api.hh.ru")
	viper.SetDefault("hh.oauth_url", "https://hh.ru/oauth")
	viper.SetDefault("hh.user_agent", "hh-hire/1.0")
	viper.SetDefault("hh.max_requests_per_second", 5)
	viper.SetDefault("hh.token_retry_delay", "200ms")
	viper.SetDefault("issue.project", "hire")
	viper.SetDefault("server.address", ":8080")
}

func (config Config) sections() map[string]section {
	return map[string]section{
		"LoggerConfig":   config.Logger,
		"DBConfig":       config.DB,
		"HHConfig":       config.HH,
		"SyncConfig":     config.Sync,
		"IssueConfig":    config.Issue,
		"QueueConfig":    config.Queue,
		"TelegramConfig": config.Telegram,
		"ServerConfig":   config.Server,
	}
}

func bindEnvironmentVariables() error {
	var errs []error

	for name, s := range (Config{}).sections() {
		if err := s.bindEnvironmentVariables(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	for name, s := range config.sections() {
		if err := s.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func bindAll(bindings map[string]string) error {
	var errs []error
	for key, env := range bindings {
		if err := viper.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
