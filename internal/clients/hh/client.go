package hh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/maxaizer/hh-hire/internal/logger"
	"github.com/maxaizer/hh-hire/internal/metrics"
	"github.com/maxaizer/hh-hire/internal/retry"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.hh.ru"

	maxGetAttempts = 3
	pageSize       = 50
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenProvider supplies the bearer token and can reissue it once hh.ru reports it expired.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
	Reissue(ctx context.Context) error
}

type Client struct {
	httpClient      HTTPClient
	tokens          TokenProvider
	rateLimiter     *rate.Limiter
	baseURL         string
	employerID      string
	userAgent       string
	tokenRetryDelay time.Duration
}

func NewClient(tokens TokenProvider, employerID, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		baseURL:    DefaultBaseURL,
		employerID: employerID,
		userAgent:  userAgent,
	}
}

func (c *Client) SetHTTPClient(client HTTPClient) {
	c.httpClient = client
}

func (c *Client) SetRateLimit(maxRequestsPerSecond float32) {
	c.rateLimiter = rate.NewLimiter(rate.Limit(maxRequestsPerSecond), 1)
}

func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

func (c *Client) SetTokenRetryDelay(delay time.Duration) {
	c.tokenRetryDelay = delay
}

// Get fetches url and decodes the JSON body into out. An expired token is
// reissued and the request repeated, at most maxGetAttempts times in total.
func (c *Client) Get(ctx context.Context, rawURL string, out any) error {
	return retry.Do(ctx, retry.Options{
		MaxAttempts: maxGetAttempts,
		Delay:       c.tokenRetryDelay,
		Retryable:   isTokenExpired,
		OnRetry: func(ctx context.Context, attempt int, _ error) error {
			log.Infof("tokens expired, trying to reissue (attempt %d)...", attempt)
			if err := c.tokens.Reissue(ctx); err != nil {
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeHhApi).Errorf("failed to reissue tokens: %v", err)
				return err
			}
			return nil
		},
	}, func(ctx context.Context) error {
		body, err := c.sendRequest(ctx, http.MethodGet, rawURL)
		if err != nil {
			return err
		}
		if out == nil {
			return nil
		}
		if err = json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("error decoding JSON response: %w", err)
		}
		return nil
	})
}

// Post sends an empty-bodied POST and returns the raw response body. It is never retried.
func (c *Client) Post(ctx context.Context, rawURL string) ([]byte, error) {
	return c.sendRequest(ctx, http.MethodPost, rawURL)
}

func (c *Client) GetVacancies(ctx context.Context, scope VacancyScope) ([]Vacancy, error) {
	apiURL := fmt.Sprintf("%s/employers/%s/vacancies/%s", c.baseURL, url.PathEscape(c.employerID), scope)

	items, err := c.getAllPages(ctx, apiURL, url.Values{})
	if err != nil {
		return nil, err
	}
	return decodeRawItems(items, func(v *Vacancy, raw json.RawMessage) { v.Raw = raw })
}

func (c *Client) GetVacancyResponses(ctx context.Context, vacancyID string) ([]Negotiation, error) {
	params := url.Values{}
	params.Set("vacancy_id", vacancyID)

	items, err := c.getAllPages(ctx, c.baseURL+"/negotiations/response", params)
	if err != nil {
		return nil, err
	}
	return decodeRawItems(items, func(*Negotiation, json.RawMessage) {})
}

func (c *Client) GetResume(ctx context.Context, resumeURL string) (Resume, error) {
	var raw json.RawMessage
	if err := c.Get(ctx, resumeURL, &raw); err != nil {
		return Resume{}, err
	}

	var resume Resume
	if err := json.Unmarshal(raw, &resume); err != nil {
		return Resume{}, fmt.Errorf("error decoding resume: %w", err)
	}
	resume.Raw = raw
	return resume, nil
}

// GetCoverLetter returns the text of the first message in the negotiation thread.
func (c *Client) GetCoverLetter(ctx context.Context, messagesURL string) (string, error) {
	var messages messagesResponse
	if err := c.Get(ctx, messagesURL, &messages); err != nil {
		return "", err
	}
	if len(messages.Items) == 0 {
		return "", nil
	}
	return messages.Items[0].Text, nil
}

func (c *Client) GetRefusalTemplate(ctx context.Context, templateURL string) (RefusalTemplate, error) {
	var template RefusalTemplate
	err := c.Get(ctx, templateURL, &template)
	return template, err
}

func (c *Client) DiscardByEmployer(ctx context.Context, responseID, message string) error {
	params := url.Values{}
	params.Set("message", message)

	apiURL := fmt.Sprintf("%s/negotiations/discard_by_employer/%s?%s", c.baseURL, url.PathEscape(responseID), params.Encode())
	_, err := c.Post(ctx, apiURL)
	return err
}

type pagedResponse struct {
	Items []json.RawMessage `json:"items"`
	Pages int               `json:"pages"`
}

func (c *Client) getAllPages(ctx context.Context, apiURL string, params url.Values) ([]json.RawMessage, error) {
	var items []json.RawMessage

	for page := 0; ; page++ {
		params.Set("page", strconv.Itoa(page))
		params.Set("per_page", strconv.Itoa(pageSize))

		var response pagedResponse
		if err := c.Get(ctx, apiURL+"?"+params.Encode(), &response); err != nil {
			return nil, err
		}
		items = append(items, response.Items...)

		if page+1 >= response.Pages {
			break
		}
	}

	return items, nil
}

func (c *Client) sendRequest(ctx context.Context, method string, rawURL string) ([]byte, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("HH-User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.HhRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	return c.handleResponse(resp)
}

func (c *Client) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorsBody errorsResponse
		_ = json.Unmarshal(body, &errorsBody)
		return nil, &RequestError{StatusCode: resp.StatusCode, Errors: errorsBody.Errors}
	}

	return body, nil
}

func isTokenExpired(err error) bool {
	var requestErr *RequestError
	return errors.As(err, &requestErr) && requestErr.TokenExpired()
}
