package repositories

import (
	"context"
	"time"

	"github.com/maxaizer/hh-hire/internal/entities"
	gocache "github.com/patrickmn/go-cache"
)

type tokenRepository interface {
	Load(ctx context.Context, id string) (*entities.OAuthToken, error)
	Save(ctx context.Context, token entities.OAuthToken) error
}

// CachedTokens keeps the token pair in memory so every hh request doesn't hit the database.
type CachedTokens struct {
	repo  tokenRepository
	cache *gocache.Cache
}

func NewCachedTokens(repo tokenRepository) *CachedTokens {
	return &CachedTokens{repo: repo, cache: gocache.New(time.Minute, 5*time.Minute)}
}

func (c *CachedTokens) Load(ctx context.Context, id string) (*entities.OAuthToken, error) {
	if value, found := c.cache.Get(id); found {
		token := value.(entities.OAuthToken)
		return &token, nil
	}

	token, err := c.repo.Load(ctx, id)
	if err != nil || token == nil {
		return token, err
	}

	c.cache.Set(id, *token, gocache.DefaultExpiration)
	return token, nil
}

func (c *CachedTokens) Save(ctx context.Context, token entities.OAuthToken) error {
	c.cache.Delete(token.ID)
	if err := c.repo.Save(ctx, token); err != nil {
		return err
	}
	c.cache.Set(token.ID, token, gocache.DefaultExpiration)
	return nil
}
