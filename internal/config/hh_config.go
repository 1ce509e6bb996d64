package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type HHConfig struct {
	BaseURL              string        `mapstructure:"base_url" validate:"required,url"`
	OAuthURL             string        `mapstructure:"oauth_url" validate:"required,url"`
	EmployerID           string        `mapstructure:"employer_id" validate:"required"`
	ClientID             string        `mapstructure:"client_id"`
	ClientSecret         string        `mapstructure:"client_secret"`
	AccessToken          string        `mapstructure:"access_token"`
	RefreshToken         string        `mapstructure:"refresh_token"`
	UserAgent            string        `mapstructure:"user_agent" validate:"required"`
	MaxRequestsPerSecond float32       `mapstructure:"max_requests_per_second" validate:"gt=0"`
	TokenRetryDelay      time.Duration `mapstructure:"token_retry_delay"`
}

func (config HHConfig) validate() error {
	err := validator.New().Struct(config)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var fields []string
	for _, fieldErr := range validationErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
	}
	return fmt.Errorf("invalid variables: %s", strings.Join(fields, ", "))
}

func (config HHConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"hh.employer_id":   "HH_EMPLOYER_ID",
		"hh.client_id":     "HH_CLIENT_ID",
		"hh.client_secret": "HH_CLIENT_SECRET",
		"hh.access_token":  "HH_ACCESS_TOKEN",
		"hh.refresh_token": "HH_REFRESH_TOKEN",
		"hh.user_agent":    "HH_USER_AGENT",
	})
}
