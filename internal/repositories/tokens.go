package repositories

import (
	"context"

	"github.com/maxaizer/hh-hire/internal/entities"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Tokens works outside any transaction carried by the context: a token pair
// is shared by every caller and must outlive their units of work.
type Tokens struct {
	db *gorm.DB
}

func NewTokensRepository(db *gorm.DB) *Tokens {
	return &Tokens{db: db}
}

func (repo *Tokens) Save(ctx context.Context, token entities.OAuthToken) error {
	return repo.db.WithContext(ctx).Save(&token).Error
}

func (repo *Tokens) Load(ctx context.Context, id string) (*entities.OAuthToken, error) {
	token := &entities.OAuthToken{}
	err := repo.db.WithContext(ctx).First(token, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return token, nil
}
