package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/maxaizer/hh-hire/internal/entities"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type txKey struct{}

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(withBusyTimeout(connectionString)), &gorm.Config{
		Logger: logger.New(log.StandardLogger(), logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

// NewTokensDbContext opens the database holding hh oauth tokens. It is a separate
// file so a reissued pair is committed on its own and never waits for the lock
// of a synchronization transaction.
func NewTokensDbContext(connectionString string) (*DbContext, error) {
	c, err := NewDbContext(connectionString)
	if err != nil {
		return nil, err
	}
	if err = c.DB.AutoMigrate(entities.OAuthToken{}); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to migrate OAuthToken entity: %w", err)
	}
	return c, nil
}

// withBusyTimeout makes concurrent writers wait for the lock instead of failing with SQLITE_BUSY.
func withBusyTimeout(connectionString string) string {
	if strings.Contains(connectionString, "_pragma=busy_timeout") {
		return connectionString
	}
	separator := "?"
	if strings.Contains(connectionString, "?") {
		separator = "&"
	}
	return connectionString + separator + "_pragma=busy_timeout(5000)"
}

func (c *DbContext) Migrate() error {
	models := []struct {
		name  string
		model any
	}{
		{"Vacancy", entities.Vacancy{}},
		{"Applicant", entities.Applicant{}},
		{"Response", entities.Response{}},
		{"Issue", entities.Issue{}},
		{"Journal", entities.Journal{}},
	}

	for _, m := range models {
		if err := c.DB.AutoMigrate(m.model); err != nil {
			return fmt.Errorf("failed to migrate %s entity: %w", m.name, err)
		}
	}

	return nil
}

// Transaction runs fn inside one database transaction. Repositories called with
// the context passed to fn take part in it. Nested calls join the outer transaction.
func (c *DbContext) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	err := c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if isBusy(err) {
		return fmt.Errorf("%w: %w", entities.ErrStoreBusy, err)
	}
	return err
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}

func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}
