package main

import (
	"context"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/maxaizer/hh-hire/internal/bot"
	"github.com/maxaizer/hh-hire/internal/clients/hh"
	"github.com/maxaizer/hh-hire/internal/repositories"
	"github.com/maxaizer/hh-hire/internal/server"
	"github.com/maxaizer/hh-hire/internal/services"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run scheduled synchronization, http triggers and telegram notifications",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var syncCmd = &cobra.Command{
	Use:       "sync <active|archived>",
	Short:     "Run one synchronization pass",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(hh.ActiveVacancies), string(hh.ArchivedVacancies)},
	RunE:      runSync,
}

var refuseCmd = &cobra.Command{
	Use:   "refuse <issue-id>",
	Short: "Send the refusal for an issue and record the outcome",
	Args:  cobra.ExactArgs(1),
	RunE:  runRefuse,
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Remove imported vacancies, responses, applicants and their issues",
	Args:  cobra.NoArgs,
	RunE:  runRollback,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	scheduler, err := services.NewSyncScheduler(ctx, a.synchronizer, map[hh.VacancyScope]string{
		hh.ActiveVacancies:   a.cfg.Sync.ActiveSchedule,
		hh.ArchivedVacancies: a.cfg.Sync.ArchivedSchedule,
	})
	if err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	if a.cfg.Telegram.Enabled() {
		tgbot, err := bot.NewBot(a.cfg.Telegram.Token, a.cfg.Telegram.ChatID, a.bus, bot.Triggers{
			Refusals: a.refusals,
			Syncs:    scheduler,
		})
		if err != nil {
			return errors.Wrap(err, "can't create bot")
		}
		go tgbot.Run(ctx)
		defer tgbot.Stop()
	}

	srv, err := server.New(a.cfg.Server.Address, a.refusals, scheduler)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		log.Info("Shutting down services...")
	case err = <-errCh:
		if err != nil {
			return errors.Wrap(err, "http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("failed to stop http server: %v", err)
	}
	log.Info("Services stopped.")
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	scope, err := hh.ParseVacancyScope(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	return a.synchronizer.Execute(cmd.Context(), scope)
}

func runRefuse(cmd *cobra.Command, args []string) error {
	issueID, err := strconv.Atoi(args[0])
	if err != nil {
		return errors.Wrapf(err, "invalid issue id %q", args[0])
	}

	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	return a.refusals.SendRefusal(cmd.Context(), issueID)
}

func runRollback(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer a.close()

	return repositories.NewPurger(a.db).Rollback(cmd.Context())
}
