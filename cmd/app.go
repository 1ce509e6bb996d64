package main

import (
	"context"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/hh-hire/internal/clients/hh"
	"github.com/maxaizer/hh-hire/internal/config"
	"github.com/maxaizer/hh-hire/internal/jobs"
	"github.com/maxaizer/hh-hire/internal/logger"
	"github.com/maxaizer/hh-hire/internal/metrics"
	"github.com/maxaizer/hh-hire/internal/repositories"
	"github.com/maxaizer/hh-hire/internal/services"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type app struct {
	cfg          *config.Config
	db           *repositories.DbContext
	tokensDB     *repositories.DbContext
	bus          EventBus.Bus
	queue        *jobs.Queued
	synchronizer *services.HHSynchronizer
	refusals     *services.RefusalSender
}

// newApp wires everything a command needs. With inline set, refusals run in
// the caller even when the queue is enabled.
func newApp(ctx context.Context, inline bool) (*app, error) {
	cfg := config.Get()

	logger.Setup(ctx, cfg.Logger)
	metrics.Register()

	db, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		return nil, errors.Wrap(err, "can't create db context")
	}
	if err = db.Migrate(); err != nil {
		return nil, errors.Wrap(err, "can't migrate db context")
	}

	tokensDB, err := repositories.NewTokensDbContext(cfg.DB.TokensConnectionString)
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "can't create tokens db context")
	}

	a := &app{cfg: cfg, db: db, tokensDB: tokensDB, bus: EventBus.New()}

	tokens := hh.NewOAuthTokens(repositories.NewCachedTokens(repositories.NewTokensRepository(tokensDB.DB)),
		cfg.HH.OAuthURL, cfg.HH.ClientID, cfg.HH.ClientSecret)
	if err = tokens.Seed(ctx, cfg.HH.AccessToken, cfg.HH.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "can't store hh tokens")
	}

	hhClient := hh.NewClient(tokens, cfg.HH.EmployerID, cfg.HH.UserAgent)
	hhClient.SetBaseURL(cfg.HH.BaseURL)
	hhClient.SetRateLimit(cfg.HH.MaxRequestsPerSecond)
	hhClient.SetTokenRetryDelay(cfg.HH.TokenRetryDelay)

	issues := repositories.NewIssuesRepository(db.DB)
	responses := repositories.NewResponsesRepository(db.DB)

	builder, err := services.NewIssueBuilder(issues, cfg.Issue.Project, cfg.Issue.AuthorID)
	if err != nil {
		return nil, err
	}

	a.synchronizer, err = services.NewHHSynchronizer(hhClient, db, services.SyncRepositories{
		Vacancies:  repositories.NewVacanciesRepository(db.DB),
		Applicants: repositories.NewApplicantsRepository(db.DB),
		Responses:  responses,
	}, builder, a.bus)
	if err != nil {
		return nil, err
	}

	var dispatcher jobs.Dispatcher = jobs.NewInline()
	if cfg.Queue.Enabled && !inline {
		if a.queue, err = jobs.NewQueued(a.bus); err != nil {
			return nil, err
		}
		dispatcher = a.queue
		log.Info("refusals are processed in background")
	}

	a.refusals, err = services.NewRefusalSender(hhClient, db, services.RefusalRepositories{
		Issues:    issues,
		Responses: responses,
		Journals:  repositories.NewJournalsRepository(db.DB),
	}, dispatcher, a.bus)
	if err != nil {
		return nil, err
	}

	return a, nil
}

// close waits for queued jobs and releases the database and the log file.
func (a *app) close() {
	if a.queue != nil {
		a.queue.Wait()
	}
	if err := a.db.Close(); err != nil {
		log.Errorf("failed to close database: %v", err)
	}
	if err := a.tokensDB.Close(); err != nil {
		log.Errorf("failed to close tokens database: %v", err)
	}
	logger.Cleanup()
}
