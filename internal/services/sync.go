package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/hh-hire/internal/clients/hh"
	"github.com/maxaizer/hh-hire/internal/entities"
	"github.com/maxaizer/hh-hire/internal/events"
	"github.com/maxaizer/hh-hire/internal/logger"
	"github.com/maxaizer/hh-hire/internal/metrics"
	pkgerrors "github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type syncAPI interface {
	GetVacancies(ctx context.Context, scope hh.VacancyScope) ([]hh.Vacancy, error)
	GetVacancyResponses(ctx context.Context, vacancyID string) ([]hh.Negotiation, error)
	GetResume(ctx context.Context, resumeURL string) (hh.Resume, error)
	GetCoverLetter(ctx context.Context, messagesURL string) (string, error)
}

type transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type vacancyRepository interface {
	Save(ctx context.Context, hhID string, info []byte) error
}

type applicantRepository interface {
	Save(ctx context.Context, hhID string, resume []byte) error
}

type responseRepository interface {
	Exists(ctx context.Context, hhID string) (bool, error)
	Create(ctx context.Context, response *entities.Response) error
}

type issueBuilder interface {
	Build(ctx context.Context, payload IssuePayload) (*entities.Issue, error)
}

type SyncRepositories struct {
	Vacancies  vacancyRepository
	Applicants applicantRepository
	Responses  responseRepository
}

// HHSynchronizer mirrors employer vacancies and their responses from hh.ru and
// opens an issue for every response seen for the first time.
type HHSynchronizer struct {
	api          syncAPI
	store        transactor
	repositories SyncRepositories
	builder      issueBuilder
	bus          EventBus.Bus
}

func NewHHSynchronizer(api syncAPI, store transactor, repositories SyncRepositories,
	builder issueBuilder, bus EventBus.Bus) (*HHSynchronizer, error) {

	if api == nil {
		return nil, errors.New("hh api is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if repositories.Vacancies == nil || repositories.Applicants == nil || repositories.Responses == nil {
		return nil, errors.New("sync repositories are not complete")
	}
	if builder == nil {
		return nil, errors.New("issue builder is nil")
	}

	return &HHSynchronizer{api: api, store: store, repositories: repositories, builder: builder, bus: bus}, nil
}

// Execute runs one pass over the vacancies of the given scope. Every vacancy is
// stored in its own transaction: an hh or data error rolls back only that vacancy
// and the pass goes on. If the vacancy list itself can't be fetched the pass stops.
func (s *HHSynchronizer) Execute(ctx context.Context, scope hh.VacancyScope) error {
	start := time.Now()
	defer func() {
		metrics.SyncDuration.WithLabelValues(string(scope)).Observe(time.Since(start).Seconds())
	}()

	log.Infof("running %s vacancies synchronization", scope)

	vacancies, err := s.api.GetVacancies(ctx, scope)
	if err != nil {
		var requestErr *hh.RequestError
		if errors.As(err, &requestErr) {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeHhApi).
				Errorf("failed to get %s vacancies: %v", scope, err)
			return nil
		}
		return fmt.Errorf("failed to get %s vacancies: %w", scope, err)
	}

	var synced, failed, imported int
	for _, vacancy := range vacancies {
		var created []events.IssueCreated

		err = s.store.Transaction(ctx, func(ctx context.Context) error {
			var txErr error
			created, txErr = s.syncVacancy(ctx, vacancy)
			return txErr
		})

		if err == nil {
			synced++
			imported += len(created)
			metrics.SyncedVacanciesCounter.WithLabelValues("synced").Inc()
			metrics.ImportedResponsesCounter.Add(float64(len(created)))
			s.publishCreated(created)
			continue
		}

		if !isVacancyLevelError(err) {
			return fmt.Errorf("failed to sync vacancy %s: %w", vacancy.ID, err)
		}

		failed++
		metrics.SyncedVacanciesCounter.WithLabelValues("failed").Inc()
		log.WithFields(log.Fields{
			logger.ErrorTypeField: errorType(err),
			"vacancy_id":          vacancy.ID,
		}).Errorf("failed to sync vacancy %s: %v", vacancy.ID, err)
	}

	log.Infof("%s synchronization ended after %v: %d vacancies synced, %d failed, %d new responses",
		scope, time.Since(start), synced, failed, imported)
	return nil
}

func (s *HHSynchronizer) syncVacancy(ctx context.Context, vacancy hh.Vacancy) ([]events.IssueCreated, error) {

	if err := s.repositories.Vacancies.Save(ctx, vacancy.ID, vacancy.Raw); err != nil {
		return nil, fmt.Errorf("failed to save vacancy: %w", err)
	}

	responses, err := s.api.GetVacancyResponses(ctx, vacancy.ID)
	if err != nil {
		return nil, err
	}

	var created []events.IssueCreated
	for _, response := range responses {

		exists, err := s.repositories.Responses.Exists(ctx, response.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check response %s: %w", response.ID, err)
		}
		if exists {
			continue
		}

		event, err := s.importResponse(ctx, vacancy, response)
		if err != nil {
			return nil, err
		}
		created = append(created, event)
	}

	return created, nil
}

func (s *HHSynchronizer) importResponse(ctx context.Context, vacancy hh.Vacancy, response hh.Negotiation) (events.IssueCreated, error) {

	record := &entities.Response{HhID: response.ID}
	if refusalURL := response.RefusalURL(); refusalURL != "" {
		record.RefusalURL = &refusalURL
	}
	if err := s.repositories.Responses.Create(ctx, record); err != nil {
		return events.IssueCreated{}, fmt.Errorf("failed to save response %s: %w", response.ID, err)
	}

	if !response.HasResume() {
		return events.IssueCreated{}, pkgerrors.Wrapf(entities.ErrIntegrity, "resume missing in response %s", response.ID)
	}

	resume, err := s.api.GetResume(ctx, response.Resume.Url)
	if err != nil {
		return events.IssueCreated{}, err
	}
	if err = s.repositories.Applicants.Save(ctx, resume.ID, resume.Raw); err != nil {
		return events.IssueCreated{}, fmt.Errorf("failed to save applicant %s: %w", resume.ID, err)
	}

	var coverLetter string
	if response.MessagesURL != "" {
		if coverLetter, err = s.api.GetCoverLetter(ctx, response.MessagesURL); err != nil {
			return events.IssueCreated{}, err
		}
	}

	payload := NewIssuePayload(vacancy, resume, response.ID, coverLetter)
	issue, err := s.builder.Build(ctx, payload)
	if err != nil {
		return events.IssueCreated{}, fmt.Errorf("failed to build issue for response %s: %w", response.ID, err)
	}

	return events.IssueCreated{
		IssueID:       issue.ID,
		Subject:       issue.Subject,
		VacancyName:   payload.VacancyName,
		ApplicantName: payload.ApplicantName(),
		ResumeURL:     payload.ResumeURL,
	}, nil
}

func (s *HHSynchronizer) publishCreated(created []events.IssueCreated) {
	if s.bus == nil {
		return
	}
	for _, event := range created {
		s.bus.Publish(events.IssueCreatedTopic, event)
	}
}

func isVacancyLevelError(err error) bool {
	var requestErr *hh.RequestError
	return errors.As(err, &requestErr) || errors.Is(err, entities.ErrIntegrity)
}

func errorType(err error) string {
	if errors.Is(err, entities.ErrIntegrity) {
		return logger.ErrorTypeIntegrity
	}
	return logger.ErrorTypeHhApi
}
