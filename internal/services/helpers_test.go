package services

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/maxaizer/hh-hire/internal/clients/hh"
	"github.com/maxaizer/hh-hire/internal/entities"
	"github.com/maxaizer/hh-hire/internal/repositories"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testStore struct {
	db         *repositories.DbContext
	vacancies  *repositories.Vacancies
	applicants *repositories.Applicants
	responses  *repositories.Responses
	issues     *repositories.Issues
	journals   *repositories.Journals
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	return openTestStore(t, filepath.Join(t.TempDir(), "test.db"))
}

func openTestStore(t *testing.T, connectionString string) *testStore {
	t.Helper()

	db, err := repositories.NewDbContext(connectionString)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })

	return &testStore{
		db:         db,
		vacancies:  repositories.NewVacanciesRepository(db.DB),
		applicants: repositories.NewApplicantsRepository(db.DB),
		responses:  repositories.NewResponsesRepository(db.DB),
		issues:     repositories.NewIssuesRepository(db.DB),
		journals:   repositories.NewJournalsRepository(db.DB),
	}
}

func (s *testStore) syncRepositories() SyncRepositories {
	return SyncRepositories{Vacancies: s.vacancies, Applicants: s.applicants, Responses: s.responses}
}

func (s *testStore) refusalRepositories() RefusalRepositories {
	return RefusalRepositories{Issues: s.issues, Responses: s.responses, Journals: s.journals}
}

type mockHHApi struct {
	mock.Mock
}

func (m *mockHHApi) GetVacancies(ctx context.Context, scope hh.VacancyScope) ([]hh.Vacancy, error) {
	args := m.Called(ctx, scope)
	vacancies, _ := args.Get(0).([]hh.Vacancy)
	return vacancies, args.Error(1)
}

func (m *mockHHApi) GetVacancyResponses(ctx context.Context, vacancyID string) ([]hh.Negotiation, error) {
	args := m.Called(ctx, vacancyID)
	negotiations, _ := args.Get(0).([]hh.Negotiation)
	return negotiations, args.Error(1)
}

func (m *mockHHApi) GetResume(ctx context.Context, resumeURL string) (hh.Resume, error) {
	args := m.Called(ctx, resumeURL)
	return args.Get(0).(hh.Resume), args.Error(1)
}

func (m *mockHHApi) GetCoverLetter(ctx context.Context, messagesURL string) (string, error) {
	args := m.Called(ctx, messagesURL)
	return args.String(0), args.Error(1)
}

func (m *mockHHApi) GetRefusalTemplate(ctx context.Context, templateURL string) (hh.RefusalTemplate, error) {
	args := m.Called(ctx, templateURL)
	return args.Get(0).(hh.RefusalTemplate), args.Error(1)
}

func (m *mockHHApi) DiscardByEmployer(ctx context.Context, responseID, message string) error {
	return m.Called(ctx, responseID, message).Error(0)
}

func testVacancy(id string) hh.Vacancy {
	return hh.Vacancy{
		ID:   id,
		Name: "Golang developer " + id,
		Area: &hh.Area{ID: "1", Name: "Москва"},
		Url:  "https://hh.ru/vacancy/" + id,
		Raw:  json.RawMessage(`{"id":"` + id + `"}`),
	}
}

func testNegotiation(id string) hh.Negotiation {
	return hh.Negotiation{
		ID:          id,
		MessagesURL: "https://api.hh.ru/negotiations/" + id + "/messages",
		Resume:      &hh.NegotiationResume{ID: "resume-" + id, Url: "https://api.hh.ru/resumes/resume-" + id},
		Actions: []hh.NegotiationAction{{
			ID:   "discard",
			Name: "Отказ",
			Templates: []hh.MessageTemplate{{
				ID:   "discard_after_interview",
				Name: "Шаблон быстрого отказа на отклик",
				Url:  "https://api.hh.ru/message_templates/discard?topic_id=" + id,
			}},
		}},
	}
}

func testResume(id string) hh.Resume {
	return hh.Resume{
		ID:        id,
		FirstName: "Иван",
		LastName:  "Петров",
		Url:       "https://hh.ru/resume/" + id,
		Raw:       json.RawMessage(`{"id":"` + id + `"}`),
	}
}

func newTestIssue(t *testing.T, store *testStore, hhResponseID string, refusalURL *string) *entities.Issue {
	t.Helper()
	ctx := context.Background()

	if hhResponseID != "" {
		require.NoError(t, store.responses.Create(ctx, &entities.Response{HhID: hhResponseID, RefusalURL: refusalURL}))
	}

	issue := &entities.Issue{
		Project:      "hire",
		Subject:      "Golang developer: Петров Иван",
		Status:       entities.IssueStatusOpen,
		AuthorID:     7,
		HhResponseID: hhResponseID,
	}
	require.NoError(t, store.issues.Create(ctx, issue))
	return issue
}
