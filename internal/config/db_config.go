package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type DBConfig struct {
	ConnectionString string `mapstructure:"connection_string"`
	// hh tokens live in their own database file
	TokensConnectionString string `mapstructure:"tokens_connection_string"`
}

func (config DBConfig) validate() error {
	if config.ConnectionString == "" {
		return fmt.Errorf("missing variable: db connection string")
	}
	if config.TokensConnectionString == "" {
		return fmt.Errorf("missing variable: db tokens connection string")
	}
	if config.TokensConnectionString == config.ConnectionString {
		return fmt.Errorf("db tokens connection string must point to a separate database")
	}
	return nil
}

func (config DBConfig) bindEnvironmentVariables() error {
	if err := viper.BindEnv("db.connection_string", "DB_CONNECTION_STRING"); err != nil {
		return err
	}
	return viper.BindEnv("db.tokens_connection_string", "DB_TOKENS_CONNECTION_STRING")
}
