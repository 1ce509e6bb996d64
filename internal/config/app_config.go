package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
)

type SyncConfig struct {
	// cron expressions, empty disables the scheduled run
	ActiveSchedule   string `mapstructure:"active_schedule"`
	ArchivedSchedule string `mapstructure:"archived_schedule"`
}

func (config SyncConfig) validate() error {
	var errs []error
	for name, spec := range map[string]string{
		"active_schedule":   config.ActiveSchedule,
		"archived_schedule": config.ArchivedSchedule,
	} {
		if spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (config SyncConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"sync.active_schedule":   "SYNC_ACTIVE_SCHEDULE",
		"sync.archived_schedule": "SYNC_ARCHIVED_SCHEDULE",
	})
}

type IssueConfig struct {
	Project  string `mapstructure:"project"`
	AuthorID int    `mapstructure:"author_id"`
}

func (config IssueConfig) validate() error {
	var errs []error
	if config.Project == "" {
		errs = append(errs, fmt.Errorf("missing variable: project"))
	}
	if config.AuthorID <= 0 {
		errs = append(errs, fmt.Errorf("missing variable: author_id"))
	}
	return errors.Join(errs...)
}

func (config IssueConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"issue.project":   "ISSUE_PROJECT",
		"issue.author_id": "ISSUE_AUTHOR_ID",
	})
}

type QueueConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func (config QueueConfig) validate() error {
	return nil
}

func (config QueueConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{"queue.enabled": "QUEUE_ENABLED"})
}

// TelegramConfig is optional, operator notifications are off without a token.
type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

func (config TelegramConfig) Enabled() bool {
	return config.Token != ""
}

func (config TelegramConfig) validate() error {
	if config.Token != "" && config.ChatID == 0 {
		return fmt.Errorf("missing variable: chat_id")
	}
	return nil
}

func (config TelegramConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{
		"telegram.token":   "TG_TOKEN",
		"telegram.chat_id": "TG_CHAT_ID",
	})
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

func (config ServerConfig) validate() error {
	if config.Address == "" {
		return fmt.Errorf("missing variable: address")
	}
	return nil
}

func (config ServerConfig) bindEnvironmentVariables() error {
	return bindAll(map[string]string{"server.address": "SERVER_ADDRESS"})
}
