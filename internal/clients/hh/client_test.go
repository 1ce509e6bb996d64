package hh

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const tokenExpiredBody = `{"errors":[{"type":"oauth","value":"token_expired"}],"request_id":"1"}`

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}

type fakeTokens struct {
	token      string
	reissues   int
	reissueErr error
}

func (f *fakeTokens) Token(context.Context) (string, error) {
	return f.token, nil
}

func (f *fakeTokens) Reissue(context.Context) error {
	f.reissues++
	return f.reissueErr
}

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	file, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(file)
}

func requestTo(method, url string) any {
	return mock.MatchedBy(func(req *http.Request) bool {
		return req.Method == method && req.URL.String() == url
	})
}

func newTestClient(httpClient HTTPClient, tokens TokenProvider) *Client {
	client := NewClient(tokens, "42", "hh-hire/1.0 (hire@example.com)")
	client.SetHTTPClient(httpClient)
	return client
}

func Test_HHClient_GetVacancies_ShouldFetchAllPages(t *testing.T) {
	httpClient := &mockHTTPClient{}
	httpClient.On("Do", requestTo(http.MethodGet, "https://api.hh.ru/employers/42/vacancies/active?page=0&per_page=50")).
		Return(newResponse(http.StatusOK, fixture(t, "vacancies_page0.json")), nil).Once()
	httpClient.On("Do", requestTo(http.MethodGet, "https://api.hh.ru/employers/42/vacancies/active?page=1&per_page=50")).
		Return(newResponse(http.StatusOK, fixture(t, "vacancies_page1.json")), nil).Once()

	client := newTestClient(httpClient, &fakeTokens{token: "token-1"})

	vacancies, err := client.GetVacancies(context.Background(), ActiveVacancies)
	require.NoError(t, err)
	httpClient.AssertExpectations(t)

	require.Len(t, vacancies, 3)
	assert.Equal(t, "93353083", vacancies[0].ID)
	assert.Equal(t, "Golang developer", vacancies[0].Name)
	assert.Equal(t, "Москва", vacancies[0].City())
	assert.Equal(t, "https://hh.ru/vacancy/93353083", vacancies[0].Url)
	assert.Contains(t, string(vacancies[0].Raw), `"archived": false`)
	assert.Equal(t, "", vacancies[2].City())
}

func Test_HHClient_ShouldSendAuthHeaders(t *testing.T) {
	httpClient := &mockHTTPClient{}
	httpClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Header.Get("Authorization") == "Bearer token-1" &&
			req.Header.Get("HH-User-Agent") == "hh-hire/1.0 (hire@example.com)"
	})).Return(newResponse(http.StatusOK, `{"items":[]}`), nil).Once()

	client := newTestClient(httpClient, &fakeTokens{token: "token-1"})

	letter, err := client.GetCoverLetter(context.Background(), "https://api.hh.ru/negotiations/1/messages")

	require.NoError(t, err)
	assert.Equal(t, "", letter)
	httpClient.AssertExpectations(t)
}

func Test_HHClient_GetVacancyResponses_ShouldDecodeNegotiations(t *testing.T) {
	httpClient := &mockHTTPClient{}
	httpClient.On("Do", requestTo(http.MethodGet, "https://api.hh.ru/negotiations/response?page=0&per_page=50&vacancy_id=93353083")).
		Return(newResponse(http.StatusOK, fixture(t, "negotiations.json")), nil).Once()

	client := newTestClient(httpClient, &fakeTokens{token: "token-1"})

	negotiations, err := client.GetVacancyResponses(context.Background(), "93353083")
	require.NoError(t, err)
	require.Len(t, negotiations, 2)

	first := negotiations[0]
	assert.Equal(t, "1822433437", first.ID)
	assert.True(t, first.HasResume())
	assert.Equal(t, "https://api.hh.ru/resumes/0123456789abcdef?topic_id=1822433437", first.Resume.Url)
	assert.Equal(t, "https://api.hh.ru/message_templates/discard_to_other_vacancy?topic_id=1822433437", first.RefusalURL())

	second := negotiations[1]
	assert.False(t, second.HasResume())
	assert.Equal(t, "", second.RefusalURL())
}

func Test_HHClient_GetResume_ShouldKeepRawPayload(t *testing.T) {
	resumeURL := "https://api.hh.ru/resumes/0123456789abcdef?topic_id=1822433437"

	httpClient := &mockHTTPClient{}
	httpClient.On("Do", requestTo(http.MethodGet, resumeURL)).
		Return(newResponse(http.StatusOK, fixture(t, "resume.json")), nil).Once()

	client := newTestClient(httpClient, &fakeTokens{token: "token-1"})

	resume, err := client.GetResume(context.Background(), resumeURL)
	require.NoError(t, err)

	assert.Equal(t, "0123456789abcdef", resume.ID)
	assert.Equal(t, "Петров Иван", resume.FullName())
	assert.Equal(t, "Казань", resume.City())
	assert.Equal(t, "ivan.petrov@example.com", resume.Email())
	assert.Equal(t, "https://img.hh.ru/photo/medium.jpeg", resume.PhotoURL())
	require.NotNil(t, resume.SalaryAmount())
	assert.Equal(t, 250000, *resume.SalaryAmount())
	require.Len(t, resume.Experience, 1)
	assert.Nil(t, resume.Experience[0].End)
	assert.Contains(t, string(resume.Raw), `"skills": "Go, PostgreSQL, Kafka"`)
}

func Test_HHClient_Get_WhenTokenExpired_ShouldReissueAndRepeat(t *testing.T) {
	url := "https://api.hh.ru/negotiations/1/messages"

	httpClient := &mockHTTPClient{}
	httpClient.On("Do", requestTo(http.MethodGet, url)).
		Return(newResponse(http.StatusForbidden, tokenExpiredBody), nil).Once()
	httpClient.On("Do", requestTo(http.MethodGet, url)).
		Return(newResponse(http.StatusOK, `{"items":[{"id":"1","text":"Здравствуйте!"}]}`), nil).Once()

	tokens := &fakeTokens{token: "token-1"}
	client := newTestClient(httpClient, tokens)

	letter, err := client.GetCoverLetter(context.Background(), url)

	require.NoError(t, err)
	assert.Equal(t, "Здравствуйте!", letter)
	assert.Equal(t, 1, tokens.reissues)
	httpClient.AssertNumberOfCalls(t, "Do", 2)
}

func Test_HHClient_Get_WhenTokenKeepsExpiring_ShouldGiveUp(t *testing.T) {
	url := "https://api.hh.ru/message_templates/discard?topic_id=1"

	httpClient := &mockHTTPClient{}
	for i := 0; i < maxGetAttempts; i++ {
		httpClient.On("Do", requestTo(http.MethodGet, url)).
			Return(newResponse(http.StatusForbidden, tokenExpiredBody), nil).Once()
	}

	tokens := &fakeTokens{token: "token-1"}
	client := newTestClient(httpClient, tokens)

	_, err := client.GetRefusalTemplate(context.Background(), url)

	var requestErr *RequestError
	require.ErrorAs(t, err, &requestErr)
	assert.True(t, requestErr.TokenExpired())
	assert.Equal(t, maxGetAttempts-1, tokens.reissues)
	httpClient.AssertNumberOfCalls(t, "Do", maxGetAttempts)
}

func Test_HHClient_Get_WhenReissueFails_ShouldStop(t *testing.T) {
	url := "https://api.hh.ru/message_templates/discard?topic_id=1"

	httpClient := &mockHTTPClient{}
	httpClient.On("Do", requestTo(http.MethodGet, url)).
		Return(newResponse(http.StatusForbidden, tokenExpiredBody), nil).Once()

	tokens := &fakeTokens{token: "token-1", reissueErr: errors.New("refresh token revoked")}
	client := newTestClient(httpClient, tokens)

	_, err := client.GetRefusalTemplate(context.Background(), url)

	var requestErr *RequestError
	require.ErrorAs(t, err, &requestErr)
	assert.Equal(t, 1, tokens.reissues)
	httpClient.AssertNumberOfCalls(t, "Do", 1)
}

func Test_HHClient_Get_WhenOtherError_ShouldNotRetry(t *testing.T) {
	url := "https://api.hh.ru/resumes/missing"

	httpClient := &mockHTTPClient{}
	httpClient.On("Do", requestTo(http.MethodGet, url)).
		Return(newResponse(http.StatusNotFound, `{"errors":[{"type":"not_found"}]}`), nil).Once()

	tokens := &fakeTokens{token: "token-1"}
	client := newTestClient(httpClient, tokens)

	_, err := client.GetResume(context.Background(), url)

	var requestErr *RequestError
	require.ErrorAs(t, err, &requestErr)
	assert.Equal(t, http.StatusNotFound, requestErr.StatusCode)
	assert.Equal(t, 0, tokens.reissues)
}

func Test_HHClient_DiscardByEmployer_ShouldNotRetry(t *testing.T) {
	httpClient := &mockHTTPClient{}
	httpClient.On("Do", requestTo(http.MethodPost, "https://api.hh.ru/negotiations/discard_by_employer/1822433437?message=Sorry")).
		Return(newResponse(http.StatusForbidden, tokenExpiredBody), nil).Once()

	tokens := &fakeTokens{token: "token-1"}
	client := newTestClient(httpClient, tokens)

	err := client.DiscardByEmployer(context.Background(), "1822433437", "Sorry")

	var requestErr *RequestError
	require.ErrorAs(t, err, &requestErr)
	assert.Equal(t, 0, tokens.reissues)
	httpClient.AssertNumberOfCalls(t, "Do", 1)
}

func Test_HHClient_DiscardByEmployer_ShouldSucceed(t *testing.T) {
	httpClient := &mockHTTPClient{}
	httpClient.On("Do", requestTo(http.MethodPost, "https://hh.example/negotiations/discard_by_employer/7?message=%D0%98%D0%B7%D0%B2%D0%B8%D0%BD%D0%B8%D1%82%D0%B5")).
		Return(newResponse(http.StatusNoContent, ""), nil).Once()

	client := newTestClient(httpClient, &fakeTokens{token: "token-1"})
	client.SetBaseURL("https://hh.example")

	assert.NoError(t, client.DiscardByEmployer(context.Background(), "7", "Извините"))
	httpClient.AssertExpectations(t)
}

func Test_RequestError_Error(t *testing.T) {
	err := &RequestError{StatusCode: http.StatusForbidden, Errors: []APIError{{Type: "oauth", Value: "token_expired"}}}

	assert.Equal(t, "hh request failed with status 403: oauth: token_expired", err.Error())
	assert.True(t, err.TokenExpired())
	assert.False(t, (&RequestError{StatusCode: http.StatusBadRequest}).TokenExpired())
}

func Test_Negotiation_RefusalURL(t *testing.T) {
	quickRefusal := MessageTemplate{Name: "Шаблон быстрого отказа на отклик", Url: "https://api.hh.ru/message_templates/discard"}

	tests := []struct {
		name     string
		actions  []NegotiationAction
		expected string
	}{
		{"no actions", nil, ""},
		{"no refusal action", []NegotiationAction{{Name: "Приглашение", Templates: []MessageTemplate{quickRefusal}}}, ""},
		{"no quick template", []NegotiationAction{{Name: "Отказ", Templates: []MessageTemplate{{Name: "Отказ после интервью", Url: "x"}}}}, ""},
		{"refusal action without templates", []NegotiationAction{{Name: "Отказ"}}, ""},
		{"quick template", []NegotiationAction{{Name: "Отказ", Templates: []MessageTemplate{quickRefusal}}}, quickRefusal.Url},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Negotiation{Actions: tt.actions}.RefusalURL())
		})
	}
}

func Test_ParseVacancyScope(t *testing.T) {
	scope, err := ParseVacancyScope("archived")
	require.NoError(t, err)
	assert.Equal(t, ArchivedVacancies, scope)

	_, err = ParseVacancyScope("hidden")
	assert.Error(t, err)
}
