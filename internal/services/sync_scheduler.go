package services

import (
	"context"
	"sync"

	"github.com/maxaizer/hh-hire/internal/clients/hh"
	"github.com/maxaizer/hh-hire/internal/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type synchronizer interface {
	Execute(ctx context.Context, scope hh.VacancyScope) error
}

// SyncScheduler runs synchronization on cron schedules. Runs never overlap:
// a tick is skipped while the previous run of the same scope is in progress,
// and runs of different scopes wait for each other.
type SyncScheduler struct {
	synchronizer synchronizer
	cron         *cron.Cron
	mu           sync.Mutex
	triggered    sync.WaitGroup
	ctx          context.Context
}

func NewSyncScheduler(ctx context.Context, synchronizer synchronizer, schedules map[hh.VacancyScope]string) (*SyncScheduler, error) {

	if synchronizer == nil {
		return nil, errors.New("synchronizer is nil")
	}

	s := &SyncScheduler{
		synchronizer: synchronizer,
		cron:         cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:          ctx,
	}

	for scope, spec := range schedules {
		if spec == "" {
			log.Infof("%s synchronization is not scheduled", scope)
			continue
		}
		scope := scope
		if _, err := s.cron.AddFunc(spec, func() { s.Run(scope) }); err != nil {
			return nil, errors.Wrapf(err, "invalid schedule for %s synchronization", scope)
		}
		log.Infof("%s synchronization scheduled at '%s'", scope, spec)
	}

	return s, nil
}

func (s *SyncScheduler) Start() {
	s.cron.Start()
}

// Stop stops the schedule and waits for running synchronizations to finish,
// including the ones started by Trigger.
func (s *SyncScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.triggered.Wait()
}

// Trigger starts an unscheduled synchronization in the background. It returns
// false without starting anything while another synchronization is running.
func (s *SyncScheduler) Trigger(scope hh.VacancyScope) bool {
	if !s.mu.TryLock() {
		log.Infof("%s synchronization requested while another one is running, skipping", scope)
		return false
	}

	s.triggered.Add(1)
	go func() {
		defer s.triggered.Done()
		defer s.mu.Unlock()
		s.execute(scope)
	}()
	return true
}

func (s *SyncScheduler) Run(scope hh.VacancyScope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.execute(scope)
}

func (s *SyncScheduler) execute(scope hh.VacancyScope) {
	if err := s.synchronizer.Execute(s.ctx, scope); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeJob).
			Errorf("%s synchronization failed: %v", scope, err)
	}
}
