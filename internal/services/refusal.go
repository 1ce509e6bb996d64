package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/hh-hire/internal/clients/hh"
	"github.com/maxaizer/hh-hire/internal/entities"
	"github.com/maxaizer/hh-hire/internal/events"
	"github.com/maxaizer/hh-hire/internal/jobs"
	"github.com/maxaizer/hh-hire/internal/logger"
	"github.com/maxaizer/hh-hire/internal/metrics"
	"github.com/maxaizer/hh-hire/internal/retry"
	log "github.com/sirupsen/logrus"
)

const (
	RefusalSentNote   = "Отказ отправлен."
	RefusalFailedNote = "Отказ не отправлен, произошла ошибка."

	maxJournalAttempts = 3
	// a synchronization holds the write lock for a whole vacancy, so a busy store gets a longer budget
	maxBusyAttempts = 5
)

type refusalAPI interface {
	GetRefusalTemplate(ctx context.Context, templateURL string) (hh.RefusalTemplate, error)
	DiscardByEmployer(ctx context.Context, responseID, message string) error
}

type issueRepository interface {
	GetByID(ctx context.Context, id int) (*entities.Issue, error)
	Update(ctx context.Context, issue *entities.Issue) error
	Touch(ctx context.Context, issue *entities.Issue) error
}

type responseFinder interface {
	GetByHhID(ctx context.Context, hhID string) (*entities.Response, error)
}

type journalRepository interface {
	Create(ctx context.Context, journal *entities.Journal) error
}

type RefusalRepositories struct {
	Issues    issueRepository
	Responses responseFinder
	Journals  journalRepository
}

// RefusalSender declines a candidate on hh.ru and records the outcome on the issue.
type RefusalSender struct {
	api                refusalAPI
	store              transactor
	repositories       RefusalRepositories
	dispatcher         jobs.Dispatcher
	bus                EventBus.Bus
	conflictRetryDelay time.Duration
	busyRetryDelay     time.Duration
}

func NewRefusalSender(api refusalAPI, store transactor, repositories RefusalRepositories,
	dispatcher jobs.Dispatcher, bus EventBus.Bus) (*RefusalSender, error) {

	if api == nil {
		return nil, errors.New("hh api is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if repositories.Issues == nil || repositories.Responses == nil || repositories.Journals == nil {
		return nil, errors.New("refusal repositories are not complete")
	}
	if dispatcher == nil {
		dispatcher = jobs.NewInline()
	}

	return &RefusalSender{
		api:                api,
		store:              store,
		repositories:       repositories,
		dispatcher:         dispatcher,
		bus:                bus,
		conflictRetryDelay: 50 * time.Millisecond,
		busyRetryDelay:     time.Second,
	}, nil
}

func (s *RefusalSender) SetConflictRetryDelay(delay time.Duration) {
	s.conflictRetryDelay = delay
}

func (s *RefusalSender) SetBusyRetryDelay(delay time.Duration) {
	s.busyRetryDelay = delay
}

// SendRefusal dispatches the refusal for the issue. It does nothing when the
// issue, its response or the response's refusal url is missing.
func (s *RefusalSender) SendRefusal(ctx context.Context, issueID int) error {
	issue, response, err := s.load(ctx, issueID)
	if err != nil {
		return err
	}
	if issue == nil || response == nil {
		log.Debugf("nothing to refuse for issue %d", issueID)
		return nil
	}

	return s.dispatcher.Dispatch(ctx, fmt.Sprintf("refusal:%d", issueID), func(ctx context.Context) error {
		return s.Perform(ctx, issueID)
	})
}

// Perform delivers the refusal and journals the result. Only store errors are returned.
func (s *RefusalSender) Perform(ctx context.Context, issueID int) error {
	issue, response, err := s.load(ctx, issueID)
	if err != nil {
		return err
	}
	if issue == nil || response == nil {
		log.Warnf("issue %d has nothing to refuse anymore", issueID)
		return nil
	}

	deliveryErr := s.deliver(ctx, response)
	if deliveryErr != nil {
		var requestErr *hh.RequestError
		errType := logger.ErrorTypeHhApi
		if !errors.As(deliveryErr, &requestErr) {
			errType = logger.ErrorTypeJob
		}
		log.WithFields(log.Fields{
			logger.ErrorTypeField: errType,
			"issue_id":            issue.ID,
			"hh_response_id":      response.HhID,
		}).Errorf("failed to send refusal: %v", deliveryErr)
	}

	sent := deliveryErr == nil
	if err = s.writeJournal(ctx, issue, sent); err != nil {
		return err
	}

	result := "sent"
	if !sent {
		result = "failed"
	}
	metrics.RefusalsCounter.WithLabelValues(result).Inc()

	s.publish(issue.ID, deliveryErr)
	return nil
}

func (s *RefusalSender) load(ctx context.Context, issueID int) (*entities.Issue, *entities.Response, error) {
	issue, err := s.repositories.Issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load issue %d: %w", issueID, err)
	}
	if issue == nil || issue.HhResponseID == "" {
		return nil, nil, nil
	}

	response, err := s.repositories.Responses.GetByHhID(ctx, issue.HhResponseID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load response %s: %w", issue.HhResponseID, err)
	}
	if response == nil || !response.HasRefusalURL() {
		return nil, nil, nil
	}

	return issue, response, nil
}

func (s *RefusalSender) deliver(ctx context.Context, response *entities.Response) error {
	template, err := s.api.GetRefusalTemplate(ctx, *response.RefusalURL)
	if err != nil {
		return err
	}
	return s.api.DiscardByEmployer(ctx, response.HhID, template.Mail.Text)
}

func (s *RefusalSender) writeJournal(ctx context.Context, issue *entities.Issue, sent bool) error {
	current := issue

	err := retry.Do(ctx, retry.Options{
		MaxAttempts: maxJournalAttempts,
		Delay:       s.conflictRetryDelay,
		Retryable: func(err error) bool {
			return errors.Is(err, entities.ErrStaleObject)
		},
		OnRetry: func(ctx context.Context, attempt int, _ error) error {
			metrics.JournalConflictsCounter.Inc()
			log.Warnf("issue %d was changed concurrently, reloading (attempt %d)", issue.ID, attempt)

			reloaded, err := s.repositories.Issues.GetByID(ctx, issue.ID)
			if err != nil {
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
					Errorf("failed to reload issue %d: %v", issue.ID, err)
				return err
			}
			if reloaded == nil {
				return fmt.Errorf("issue %d disappeared", issue.ID)
			}
			current = reloaded
			return nil
		},
	}, func(ctx context.Context) error {
		return s.recordWhenStoreFree(ctx, current, sent)
	})

	if errors.Is(err, entities.ErrStaleObject) {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeConflict).
			Errorf("gave up recording refusal for issue %d after %d attempts", issue.ID, maxJournalAttempts)
	}
	return err
}

// recordWhenStoreFree retries the outcome write while another writer holds the
// database. The refusal is already delivered at this point, so it must not be lost.
func (s *RefusalSender) recordWhenStoreFree(ctx context.Context, issue *entities.Issue, sent bool) error {
	err := retry.Do(ctx, retry.Options{
		MaxAttempts: maxBusyAttempts,
		Delay:       s.busyRetryDelay,
		Retryable: func(err error) bool {
			return errors.Is(err, entities.ErrStoreBusy)
		},
		OnRetry: func(_ context.Context, attempt int, _ error) error {
			log.Warnf("database is busy, retrying outcome of issue %d (attempt %d)", issue.ID, attempt)
			return nil
		},
	}, func(ctx context.Context) error {
		// a rolled back attempt must not keep the version it bumped
		attempt := *issue
		return s.store.Transaction(ctx, func(ctx context.Context) error {
			return s.recordOutcome(ctx, &attempt, sent)
		})
	})

	if errors.Is(err, entities.ErrStoreBusy) {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("gave up recording refusal for issue %d, database stayed busy", issue.ID)
	}
	return err
}

func (s *RefusalSender) recordOutcome(ctx context.Context, issue *entities.Issue, sent bool) error {
	note := RefusalFailedNote
	if sent {
		note = RefusalSentNote
		issue.Status = entities.IssueStatusRefusalSent
		if err := s.repositories.Issues.Update(ctx, issue); err != nil {
			return err
		}
	} else if err := s.repositories.Issues.Touch(ctx, issue); err != nil {
		return err
	}

	return s.repositories.Journals.Create(ctx, &entities.Journal{
		IssueID: issue.ID,
		UserID:  issue.AuthorID,
		Notes:   note,
	})
}

func (s *RefusalSender) publish(issueID int, deliveryErr error) {
	if s.bus == nil {
		return
	}
	event := events.RefusalProcessed{IssueID: issueID, Sent: deliveryErr == nil}
	if deliveryErr != nil {
		event.Error = strings.TrimSpace(deliveryErr.Error())
	}
	s.bus.Publish(events.RefusalProcessedTopic, event)
}
