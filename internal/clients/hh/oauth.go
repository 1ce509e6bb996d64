package hh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/maxaizer/hh-hire/internal/entities"
	"github.com/maxaizer/hh-hire/internal/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultOAuthURL = "https://hh.ru/oauth"

	tokenID = "hh"
	// a token refreshed this recently was most likely reissued by a concurrent caller
	reissueCooldown = 10 * time.Second
)

var ErrNoToken = errors.New("no hh oauth token stored")

type tokenStore interface {
	Load(ctx context.Context, id string) (*entities.OAuthToken, error)
	Save(ctx context.Context, token entities.OAuthToken) error
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// OAuthTokens keeps the employer token pair in the store and refreshes it with the refresh_token grant.
type OAuthTokens struct {
	httpClient   HTTPClient
	store        tokenStore
	tokenURL     string
	clientID     string
	clientSecret string
	mu           sync.Mutex
}

func NewOAuthTokens(store tokenStore, oauthURL, clientID, clientSecret string) *OAuthTokens {
	return &OAuthTokens{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		store:        store,
		tokenURL:     strings.TrimRight(oauthURL, "/") + "/token",
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

func (o *OAuthTokens) SetHTTPClient(client HTTPClient) {
	o.httpClient = client
}

// Seed stores the configured token pair unless a pair is already stored.
func (o *OAuthTokens) Seed(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	current, err := o.store.Load(ctx, tokenID)
	if err != nil {
		return err
	}
	if current != nil {
		return nil
	}

	return o.store.Save(ctx, entities.OAuthToken{
		ID:           tokenID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func (o *OAuthTokens) Token(ctx context.Context) (string, error) {
	token, err := o.store.Load(ctx, tokenID)
	if err != nil {
		return "", err
	}
	if token == nil || token.AccessToken == "" {
		return "", ErrNoToken
	}
	return token.AccessToken, nil
}

func (o *OAuthTokens) Reissue(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	current, err := o.store.Load(ctx, tokenID)
	if err != nil {
		return err
	}
	if current == nil || current.RefreshToken == "" {
		return ErrNoToken
	}
	if !current.ReissuedAt.IsZero() && time.Since(current.ReissuedAt) < reissueCooldown {
		log.Info("tokens were reissued moments ago, skipping")
		return nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", current.RefreshToken)
	if o.clientID != "" {
		form.Set("client_id", o.clientID)
		form.Set("client_secret", o.clientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorsBody errorsResponse
		_ = json.Unmarshal(body, &errorsBody)
		return &RequestError{StatusCode: resp.StatusCode, Errors: errorsBody.Errors}
	}

	var issued tokenResponse
	if err = json.Unmarshal(body, &issued); err != nil {
		return fmt.Errorf("error decoding JSON response: %w", err)
	}

	err = o.store.Save(ctx, entities.OAuthToken{
		ID:           tokenID,
		AccessToken:  issued.AccessToken,
		RefreshToken: issued.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(issued.ExpiresIn) * time.Second),
		ReissuedAt:   time.Now(),
	})
	if err != nil {
		return errors.Wrap(err, "failed to save reissued tokens")
	}

	metrics.TokenReissuesCounter.Inc()
	log.Info("tokens reissued")
	return nil
}
